package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process settings read from the environment.
type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	RedisURL       string
	Port           string
	SeedPath       string
	SeedOnStart    bool
	ReportCacheTTL time.Duration
	LogLevel       string
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads the configuration. DATABASE_URL is required.
func Load() (Config, error) {
	cfg := Config{
		DatabaseDriver: Get("DATABASE_DRIVER", "pgx"),
		DatabaseURL:    Get("DATABASE_URL", ""),
		RedisURL:       Get("REDIS_URL", ""),
		Port:           Get("PORT", "8080"),
		SeedPath:       Get("SEED_PATH", "data/seeds/marketplace.yaml"),
		LogLevel:       Get("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("load config: DATABASE_URL is required")
	}

	switch cfg.DatabaseDriver {
	case "pgx", "sqlite":
	default:
		return Config{}, fmt.Errorf("load config: DATABASE_DRIVER must be pgx or sqlite, got %q", cfg.DatabaseDriver)
	}

	seed, err := strconv.ParseBool(Get("SEED_ON_START", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: SEED_ON_START: %w", err)
	}
	cfg.SeedOnStart = seed

	ttl, err := time.ParseDuration(Get("REPORT_CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("load config: REPORT_CACHE_TTL: %w", err)
	}
	if ttl < 0 {
		return Config{}, errors.New("load config: REPORT_CACHE_TTL must not be negative")
	}
	cfg.ReportCacheTTL = ttl

	return cfg, nil
}
