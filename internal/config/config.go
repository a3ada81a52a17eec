// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates all settings for the messaging API server.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string
	RedisAddr   string

	NATSURL     string
	NATSEnabled bool

	// PresenceWindow is how long a user counts as online after their last
	// authenticated request.
	PresenceWindow time.Duration

	// SessionTTL is the lifetime of auth tokens in Redis.
	SessionTTL time.Duration

	// RequireFriendship gates conversation creation on an accepted
	// friendship between the two participants.
	RequireFriendship bool
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:         getEnv("APP_ENV", "dev"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		NATSURL:     getEnv("NATS_URL", ""),
	}
	cfg.NATSEnabled = cfg.NATSURL != ""

	window, err := parseDurationEnv("PRESENCE_WINDOW", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cfg.PresenceWindow = window

	sessionTTL, err := parseDurationEnv("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionTTL = sessionTTL

	requireFriendship, err := parseBoolEnv("REQUIRE_FRIENDSHIP", false)
	if err != nil {
		return Config{}, err
	}
	cfg.RequireFriendship = requireFriendship

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
