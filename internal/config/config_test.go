package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RSSAGG_PROXY", "RSSAGG_LANG", "RSSAGG_POLL_INTERVAL", "RSSAGG_DISABLE_CACHE", "RSSAGG_LOG_LEVEL"} {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://allorigins.hexlet.app", cfg.Fetch.Proxy)
	assert.True(t, cfg.Fetch.DisableCache)
	assert.Equal(t, 20*time.Second, cfg.Poll.Interval)
	assert.Equal(t, "ru", cfg.UI.Language)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
fetch:
  proxy: ""
  timeout: 5s
poll:
  interval: 1m
ui:
  language: en
seed_feeds:
  - https://lorem-rss.hexlet.app/feed
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Fetch.Proxy, "empty proxy selects direct mode")
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, time.Minute, cfg.Poll.Interval)
	assert.Equal(t, "en", cfg.UI.Language)
	assert.Equal(t, []string{"https://lorem-rss.hexlet.app/feed"}, cfg.SeedFeeds)

	// Untouched keys keep defaults.
	assert.True(t, cfg.Fetch.DisableCache)
	assert.Equal(t, 5, cfg.Poll.MaxConcurrent)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("poll: [unclosed"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RSSAGG_PROXY", "https://proxy.example")
	t.Setenv("RSSAGG_LANG", "en")
	t.Setenv("RSSAGG_POLL_INTERVAL", "45s")
	t.Setenv("RSSAGG_DISABLE_CACHE", "false")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.example", cfg.Fetch.Proxy)
	assert.Equal(t, "en", cfg.UI.Language)
	assert.Equal(t, 45*time.Second, cfg.Poll.Interval)
	assert.False(t, cfg.Fetch.DisableCache)
}

func TestEnvOverrideBadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("RSSAGG_POLL_INTERVAL", "soon")

	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }},
		{"negative timeout", func(c *Config) { c.Fetch.Timeout = -time.Second }},
		{"no concurrency", func(c *Config) { c.Poll.MaxConcurrent = 0 }},
		{"negative rate", func(c *Config) { c.Fetch.Rate = -1 }},
		{"negative retries", func(c *Config) { c.Fetch.Retries = -1 }},
		{"unknown language", func(c *Config) { c.UI.Language = "de" }},
		{"unknown level", func(c *Config) { c.Log.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.SeedFeeds = []string{"https://example.com/rss"}
	cfg.Poll.Interval = 90 * time.Second

	require.NoError(t, cfg.Save(path))
	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLogDir(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(Dir(), "logs"), cfg.LogDir())
	cfg.Log.Dir = "/tmp/x"
	assert.Equal(t, "/tmp/x", cfg.LogDir())
}
