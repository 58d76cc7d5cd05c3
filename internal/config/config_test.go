package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "./blog.db", cfg.DatabasePath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, 720*time.Hour, cfg.EventRetention)
	assert.Equal(t, "0 3 * * *", cfg.EventPruneSchedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "0")
	t.Setenv("APP_ENV", "production")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Zero(t, cfg.TokenTTL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("PORT", "eighty")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("negative ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("TOKEN_TTL", "-1h")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad retention", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("EVENT_RETENTION", "forever")
		_, err := Load()
		assert.Error(t, err)
	})
}
