package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything read from the environment at startup. A missing
// .env file is fine; deployed environments set real variables.
type Config struct {
	Port int

	CountdownDuration time.Duration
	GameOverGrace     time.Duration
	MaxSessionAge     time.Duration
	SweepInterval     time.Duration

	// DatabaseURL enables the finished-game archive when set.
	DatabaseURL string

	// KeepAliveURL is pinged periodically so free-tier hosts don't idle the
	// process out. Empty disables the pinger.
	KeepAliveURL      string
	KeepAliveInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config.Load] no .env file, using environment")
	}

	cfg := &Config{
		Port:              envInt("PORT", 8080),
		CountdownDuration: envDuration("COUNTDOWN_DURATION", 3*time.Second),
		GameOverGrace:     envDuration("GAME_OVER_GRACE", 30*time.Second),
		MaxSessionAge:     envDuration("MAX_SESSION_AGE", 30*time.Minute),
		SweepInterval:     envDuration("SWEEP_INTERVAL", 5*time.Minute),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		KeepAliveURL:      os.Getenv("KEEPALIVE_URL"),
		KeepAliveInterval: envDuration("KEEPALIVE_INTERVAL", 10*time.Minute),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[config.envInt] bad %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("[config.envDuration] bad %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}
