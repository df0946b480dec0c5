package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DB_DRIVER", "SESSION_TTL", "SESSION_STORE", "CACHE_TTL", "NOTIFICATION_RETENTION_DAYS", "IS_PROD"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Zero(t, cfg.RetentionDays)
	assert.False(t, cfg.IsProd)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("NOTIFICATION_RETENTION_DAYS", "14")
	t.Setenv("IS_PROD", "true")

	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 14, cfg.RetentionDays)
	assert.True(t, cfg.IsProd)
}
