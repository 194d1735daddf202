package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, 50*time.Minute, cfg.SessionDuration())
	assert.Equal(t, time.Second, cfg.RequestInterval())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, filepath.Join(cfg.DataDir, "therapy.db"), cfg.DBPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DB_PATH", "/tmp/override.db")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")
	t.Setenv("SESSION_DURATION_MINUTES", "30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Minute, cfg.SessionDuration())
	assert.Equal(t, "debug", cfg.LogLevel)
}
