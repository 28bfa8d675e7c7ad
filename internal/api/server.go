package api

import (
	"github.com/gin-gonic/gin"

	"go-rental-agent/internal/apply"
	"go-rental-agent/internal/browser"
	"go-rental-agent/internal/config"
	"go-rental-agent/internal/dedup"
	"go-rental-agent/internal/scraper"
	"go-rental-agent/internal/scraper/pararius"
	"go-rental-agent/internal/session"
	"go-rental-agent/internal/store"
	"go-rental-agent/internal/vault"
)

// Server wires the automation core behind the dashboard API.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	vault    *vault.Vault
	sessions *session.Manager
	pipeline *apply.Pipeline
	viewer   *apply.Viewer
	browser  *browser.Manager
	scraper  scraper.Scraper
	cache    *dedup.ListingCache
}

func NewServer(
	cfg *config.Config,
	st *store.Store,
	v *vault.Vault,
	sessions *session.Manager,
	pipeline *apply.Pipeline,
	viewer *apply.Viewer,
	b *browser.Manager,
	cache *dedup.ListingCache,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		vault:    v,
		sessions: sessions,
		pipeline: pipeline,
		viewer:   viewer,
		browser:  b,
		scraper:  pararius.New(),
		cache:    cache,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.handleHealth)
	r.POST("/api/login", s.handleLogin)

	api := r.Group("/api", s.authRequired())
	{
		api.POST("/logout", s.handleLogout)

		// interactive login session
		api.POST("/connect", s.handleConnectStart)
		api.DELETE("/connect", s.handleConnectClose)
		api.POST("/connect/action", s.handleConnectAction)
		api.GET("/connect/screenshot", s.handleConnectScreenshot)
		api.GET("/connect/status", s.handleCredentialStatus)
		api.POST("/connect/disconnect", s.handleCredentialDisconnect)

		// apply pipeline
		api.POST("/apply", s.handleApply)
		api.GET("/apply/screenshot", s.handleApplyScreenshot)

		// job ledger
		api.GET("/jobs", s.handleListJobs)
		api.DELETE("/jobs", s.handleDeleteJobs)

		// listings
		api.GET("/properties", s.handleListProperties)
		api.POST("/scrape", s.handleScrape)
	}

	return r
}
