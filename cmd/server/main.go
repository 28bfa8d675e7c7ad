package main

import (
	"log"
	"net/url"
	"strings"

	"go-rental-agent/internal/api"
	"go-rental-agent/internal/apply"
	"go-rental-agent/internal/browser"
	"go-rental-agent/internal/config"
	"go-rental-agent/internal/dedup"
	"go-rental-agent/internal/letter"
	"go-rental-agent/internal/notify"
	"go-rental-agent/internal/resolver"
	"go-rental-agent/internal/session"
	"go-rental-agent/internal/store"
	"go-rental-agent/internal/vault"
)

func main() {
	cfg := config.Load()

	st := store.New(cfg.DataDir)

	v, err := vault.New(cfg.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to initialize vault: %v", err)
	}

	browserMgr, err := browser.NewManager(cfg.Headless)
	if err != nil {
		log.Fatalf("Failed to start browser: %v", err)
	}
	defer browserMgr.Close()

	sessions := session.NewManager(browserMgr, cfg.LoginURL, siteDomain(cfg.SiteBaseURL))

	var letters letter.Client
	if cfg.GroqAPIKey != "" {
		letters = letter.NewGroqClient(cfg.GroqAPIKey)
		log.Println("✅ AI letter generation enabled")
	} else {
		log.Println("⚠️ GROQ_API_KEY not set, using template letters")
	}

	var notifier apply.Notifier
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram notifier disabled: %v", err)
		} else {
			notifier = tg
			log.Println("✅ Telegram notifications enabled")
		}
	}

	viewer := apply.NewViewer()
	pipeline := apply.NewPipeline(st, v, browserMgr, resolver.New(cfg.SiteBaseURL), letters, viewer, notifier)
	cache := dedup.NewListingCache(cfg.CacheDir)

	server := api.NewServer(cfg, st, v, sessions, pipeline, viewer, browserMgr, cache)

	log.Printf("Server listening on port %s", cfg.Port)
	if err := server.Router().Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func siteDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return strings.TrimPrefix(baseURL, "www.")
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
