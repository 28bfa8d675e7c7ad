package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-rental-agent/internal/models"
	"go-rental-agent/internal/scraper/pararius"
	"go-rental-agent/internal/session"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "rental-agent"})
}

// --- interactive login session ---

func (s *Server) handleConnectStart(c *gin.Context) {
	view, err := s.sessions.Start()
	if err != nil {
		log.Printf("❌ Could not start login session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Browsersessie kon niet worden gestart"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleConnectClose(c *gin.Context) {
	s.sessions.Close()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleConnectScreenshot(c *gin.Context) {
	view, err := s.sessions.View()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":        true,
		"screenshot":    view.Screenshot,
		"loginDetected": view.LoginDetected,
		"url":           view.URL,
	})
}

func (s *Server) handleConnectAction(c *gin.Context) {
	var action session.Action
	if err := c.ShouldBindJSON(&action); err != nil || action.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ongeldige actie"})
		return
	}

	view, err := s.sessions.PerformAction(action)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Geen actieve sessie"})
			return
		}
		log.Printf("❌ Session action failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Actie mislukt"})
		return
	}

	if !view.LoginDetected {
		c.JSON(http.StatusOK, view)
		return
	}

	// Login completed: capture the authenticated browser state, seal it and
	// persist before tearing the session down.
	saved := s.saveAuthState()
	c.JSON(http.StatusOK, gin.H{
		"screenshot":    view.Screenshot,
		"loginDetected": true,
		"url":           view.URL,
		"saved":         saved,
	})
}

func (s *Server) saveAuthState() bool {
	email := s.sessions.CapturedEmail()
	state, err := s.sessions.CaptureAuthState()
	if err != nil {
		log.Printf("❌ Could not capture auth state: %v", err)
		return false
	}
	blob, err := state.Marshal()
	if err != nil {
		log.Printf("❌ Could not serialize auth state: %v", err)
		return false
	}
	envelope, err := s.vault.Encrypt(blob)
	if err != nil {
		log.Printf("❌ Could not encrypt auth state: %v", err)
		return false
	}
	s.store.SaveCredential(envelope, email, time.Now())
	s.sessions.Close()
	log.Printf("✅ Pararius connected (%d cookies, email %q)", len(state.Cookies), email)
	return true
}

func (s *Server) handleCredentialStatus(c *gin.Context) {
	cred := s.store.Credential()
	c.JSON(http.StatusOK, gin.H{
		"status":      cred.Status,
		"connectedAt": cred.ConnectedAt,
		"email":       cred.Email,
	})
}

func (s *Server) handleCredentialDisconnect(c *gin.Context) {
	s.store.DisconnectCredential()
	s.sessions.Close()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- apply pipeline ---

func (s *Server) handleApply(c *gin.Context) {
	var req struct {
		PropertyID string `json:"propertyId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "propertyId is verplicht"})
		return
	}

	result, err := s.pipeline.Submit(c.Request.Context(), req.PropertyID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleApplyScreenshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.viewer.View())
}

// --- job ledger ---

func (s *Server) handleListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"jobs":  s.store.Jobs(),
		"stats": s.store.JobStats(),
	})
}

func (s *Server) handleDeleteJobs(c *gin.Context) {
	var req struct {
		ID string `json:"id"`
	}
	// Body is optional: no id means clear all finished jobs.
	_ = c.ShouldBindJSON(&req)

	if req.ID != "" {
		s.store.RemoveJob(req.ID)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	removed := s.store.ClearTerminalJobs()
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

// --- listings ---

func (s *Server) handleListProperties(c *gin.Context) {
	props := s.store.Properties()
	if state := c.Query("state"); state != "" {
		filtered := make([]models.Property, 0, len(props))
		for _, p := range props {
			if string(p.State) == state {
				filtered = append(filtered, p)
			}
		}
		props = filtered
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "total": len(props)})
}

func (s *Server) handleScrape(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is verplicht"})
		return
	}
	searchURL, err := pararius.NormalizeSearchURL(req.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("🔍 %s scrape requested: %s", s.scraper.Name(), searchURL)

	browserCtx, err := s.browser.NewInteractiveContext()
	if err != nil {
		log.Printf("❌ Could not start scrape context: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Browser kon niet starten"})
		return
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Browser kon niet starten"})
		return
	}

	props, err := s.scraper.Scrape(c.Request.Context(), page, searchURL)
	if err != nil {
		log.Printf("❌ Scrape failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Scrapen mislukt"})
		return
	}

	added := 0
	var newIDs []string
	for _, p := range props {
		if s.cache.IsSeen(p.ID) {
			continue
		}
		if s.store.AddProperty(p) {
			added++
			newIDs = append(newIDs, p.ID)
		}
	}
	s.cache.Add(newIDs)

	c.JSON(http.StatusOK, gin.H{"scraped": len(props), "added": added})
}
