// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port        string `yaml:"port" env:"PORT"`
	AppUsername string `yaml:"app_username" env:"APP_USERNAME"`
	AppPassword string `yaml:"app_password" env:"APP_PASSWORD"`

	// Vault key material
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET"`

	// AI letter generation (optional)
	GroqAPIKey string `yaml:"groq_api_key" env:"GROQ_API_KEY"`

	// Telegram notifications (optional)
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	// Target rental site
	SiteBaseURL string `yaml:"site_base_url"`
	LoginURL    string `yaml:"login_url"`

	// Browser
	Headless bool `yaml:"headless"`

	// Paths
	DataDir  string `yaml:"data_dir"`
	CacheDir string `yaml:"cache_dir"`
}

func Load() *Config {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{Headless: true}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	//Override with env vars
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if user := os.Getenv("APP_USERNAME"); user != "" {
		cfg.AppUsername = user
	}
	if pass := os.Getenv("APP_PASSWORD"); pass != "" {
		cfg.AppPassword = pass
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = secret
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.GroqAPIKey = key
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}

	//Set default values if not set
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SiteBaseURL == "" {
		cfg.SiteBaseURL = "https://www.pararius.com"
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = cfg.SiteBaseURL + "/login"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = ".cache"
	}

	//Validate required fields
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is required")
	}

	return cfg
}
