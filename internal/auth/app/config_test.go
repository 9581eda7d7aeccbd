package app

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:                 "dev",
		Port:                8080,
		ShutdownGracePeriod: 10 * time.Second,
		DatabaseFile:        "auth.db",
		AccessTTL:           15 * time.Minute,
		RefreshTTL:          720 * time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	t.Run("port out of range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("access must be shorter than refresh", func(t *testing.T) {
		cfg := validConfig()
		cfg.AccessTTL = cfg.RefreshTTL
		assert.Error(t, cfg.Validate())

		cfg.AccessTTL = cfg.RefreshTTL + time.Hour
		assert.Error(t, cfg.Validate())
	})

	t.Run("ttls must be positive", func(t *testing.T) {
		cfg := validConfig()
		cfg.AccessTTL = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("database file required", func(t *testing.T) {
		cfg := validConfig()
		cfg.DatabaseFile = ""
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	// Scrub any ambient overrides so defaults are what gets parsed. Setenv
	// first so t.Cleanup restores the original values.
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT", "SHUTDOWN_GRACE_PERIOD",
		"AUTH_DATABASE_FILE", "AUTH_ACCESS_TTL", "AUTH_REFRESH_TTL",
		"AUTH_SECURE_COOKIES", "AUTH_SESSION_SWEEP_INTERVAL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 720*time.Hour, cfg.RefreshTTL)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, time.Hour, cfg.SessionSweepInterval)
}
