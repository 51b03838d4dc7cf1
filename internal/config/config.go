package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultStartingCredits is granted once to every new user. Installations
// that ran a promo with a 10.0 grant override it via STARTING_CREDITS.
const DefaultStartingCredits = 3.0

type Config struct {
	DatabaseURL     string
	TelegramToken   string
	AdminIDs        map[int64]struct{}
	StartingCredits float64
	DataDir         string
	JWTSecret       string
	HTTPAddr        string
	LogLevel        string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional in production; env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		AdminIDs:        make(map[int64]struct{}),
		StartingCredits: DefaultStartingCredits,
		DataDir:         os.Getenv("IMPORTER_DATA_DIR"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = "0.0.0.0:8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	for _, raw := range strings.Split(os.Getenv("ADMIN_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_IDS entry %q: %w", raw, err)
		}
		cfg.AdminIDs[id] = struct{}{}
	}

	if raw := os.Getenv("STARTING_CREDITS"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid STARTING_CREDITS %q", raw)
		}
		cfg.StartingCredits = v
	}

	return cfg, nil
}
