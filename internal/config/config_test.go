package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Equal(t, 10*time.Second, cfg.Import.Timeout)
	assert.Equal(t, "instagram.com", cfg.Import.SocialHost)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Contains(t, cfg.Database.URL, "recipebox")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "8080")
	t.Setenv("APP_IMPORT_SOCIAL_HOST", "tiktok.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "tiktok.com", cfg.Import.SocialHost)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}
