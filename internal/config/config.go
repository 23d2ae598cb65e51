package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN            string
	Environment      string
	HTTPAddr         string
	MigrationsPath   string
	AllowedOrigins   []string
	FreeSlotOnCancel bool
	SessionPurgeDays int
}

func Load() (*Config, error) {
	// Best effort: a missing .env file just means plain env vars.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded configuration from .env file")
	}

	cfg := &Config{
		DBDSN:            os.Getenv("DB_DSN"),
		Environment:      os.Getenv("ENV"),
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
		MigrationsPath:   os.Getenv("MIGRATIONS_PATH"),
		FreeSlotOnCancel: envBool("FREE_SLOT_ON_CANCEL", true),
		SessionPurgeDays: envInt("SESSION_PURGE_DAYS", 90),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Invalid bool for %s: %q, using default", key, raw)
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Invalid int for %s: %q, using default", key, raw)
		return fallback
	}
	return value
}
