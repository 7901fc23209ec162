package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("CACHE_TTL_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.PasswordResetExpiry)
	assert.Equal(t, "local", cfg.MediaBackend)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PASSWORD_RESET_EXP_MINUTES", "5")
	t.Setenv("NOTIFICATIONS_PROCESSOR", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 5*time.Minute, cfg.PasswordResetExpiry)
	assert.False(t, cfg.NotificationsProcessor)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE", "memory")
	t.Setenv("MEDIA_BACKEND", "s3")
	_, err = Load()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "1", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:1/d?sslmode=disable", cfg.PostgresDSN())
}

func TestGetEnvAsIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}
