package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	ServerPort         int
	DatabasePath       string
	JWTSecret          string
	TokenTTL           time.Duration // Zero means issued tokens never expire
	AppEnv             string
	CORSOrigins        []string
	LogLevel           string
	EventRetention     time.Duration
	EventPruneSchedule string
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("TOKEN_TTL must not be negative")
	}

	retention, err := time.ParseDuration(getEnv("EVENT_RETENTION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_RETENTION: %w", err)
	}

	return &Config{
		ServerPort:         port,
		DatabasePath:       DatabasePath(),
		JWTSecret:          secret,
		TokenTTL:           ttl,
		AppEnv:             getEnv("APP_ENV", "development"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		EventRetention:     retention,
		EventPruneSchedule: getEnv("EVENT_PRUNE_SCHEDULE", "0 3 * * *"),
	}, nil
}

// DatabasePath returns the SQLite file location. Commands that only touch
// the database use it without requiring the rest of the configuration.
func DatabasePath() string {
	return getEnv("DATABASE_PATH", "./blog.db")
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
