package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CURRICULUM_WORKERS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 2, cfg.Curriculum.Workers)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTLifetime)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("JWT_LIFETIME", "2h")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CURRICULUM_DEBUG", "true")
	t.Setenv("CURRICULUM_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.JWTLifetime)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Curriculum.Debug)
	assert.Equal(t, 5*time.Second, cfg.Curriculum.Timeout)
}

func TestLoadConfigRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	_, err := LoadConfig()
	assert.Error(t, err)
}
