package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Notifications.PollInterval)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
	assert.NotEmpty(t, cfg.State.Dir)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("API_URL", "https://api.campuscash.dev")
	t.Setenv("API_TIMEOUT", "2s")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("STATE_DIR", "/tmp/campuscash-state")
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("METRICS_ADDR", ":9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.campuscash.dev", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "/tmp/campuscash-state", cfg.State.Dir)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9999", cfg.Metrics.Addr)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("", time.Second))
	assert.Equal(t, time.Second, parseDuration("nonsense", time.Second))
	assert.Equal(t, 3*time.Minute, parseDuration("3m", time.Second))
}
