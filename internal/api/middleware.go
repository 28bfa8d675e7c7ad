package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const sessionCookie = "rental_session"

// authRequired gates the API behind the dashboard login cookie. When no
// APP_USERNAME is configured the gate is disabled, which keeps local
// development friction-free.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AppUsername == "" {
			c.Next()
			return
		}
		val, err := c.Cookie(sessionCookie)
		if err != nil || val != "authenticated" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Niet ingelogd"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldig verzoek"})
		return
	}
	if s.cfg.AppUsername == "" {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if req.Username != s.cfg.AppUsername || req.Password != s.cfg.AppPassword {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ongeldige inloggegevens"})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "authenticated", 60*60*24*7, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleLogout(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
