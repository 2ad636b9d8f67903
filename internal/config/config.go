package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abelbrown/rssagg/internal/i18n"
	"github.com/abelbrown/rssagg/internal/logging"
)

// Config is the application configuration
type Config struct {
	// Fetching
	Fetch FetchConfig `yaml:"fetch"`

	// Background polling
	Poll PollConfig `yaml:"poll"`

	// UI preferences
	UI UIConfig `yaml:"ui"`

	// Logging
	Log LogConfig `yaml:"log"`

	// Feeds submitted automatically at startup
	SeedFeeds []string `yaml:"seed_feeds,omitempty"`
}

// FetchConfig controls how feeds are retrieved
type FetchConfig struct {
	Proxy        string        `yaml:"proxy"` // empty fetches feeds directly
	DisableCache bool          `yaml:"disable_cache"`
	Timeout      time.Duration `yaml:"timeout"`
	Rate         float64       `yaml:"rate"` // requests per second, 0 = unlimited
	Retries      int           `yaml:"retries"`
	UserAgent    string        `yaml:"user_agent"`
}

// PollConfig controls the re-poll timer
type PollConfig struct {
	Interval      time.Duration `yaml:"interval"`
	MaxConcurrent int           `yaml:"max_concurrent"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Language string `yaml:"language"` // "ru" or "en"
}

// LogConfig holds log file settings
type LogConfig struct {
	Level      string `yaml:"level"`
	Dir        string `yaml:"dir"` // empty means ~/.rssagg/logs
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Events     bool   `yaml:"events"` // write the JSONL event stream
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			Proxy:        "https://allorigins.hexlet.app",
			DisableCache: true,
			Timeout:      15 * time.Second,
			Rate:         5,
			Retries:      2,
			UserAgent:    "rssagg/1.0",
		},
		Poll: PollConfig{
			Interval:      20 * time.Second,
			MaxConcurrent: 5,
		},
		UI: UIConfig{
			Language: "ru",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  16,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Events:     true,
		},
	}
}

// Dir returns the application directory (~/.rssagg)
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rssagg")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads config from the default path, or returns defaults.
// Environment overrides are applied either way.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults; keys
// absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Debug("no config file, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from RSSAGG_* environment variables
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("RSSAGG_PROXY"); ok {
		c.Fetch.Proxy = strings.TrimSpace(v)
	}
	if v := os.Getenv("RSSAGG_LANG"); v != "" {
		c.UI.Language = v
	}
	if v := os.Getenv("RSSAGG_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RSSAGG_POLL_INTERVAL: %w", err)
		}
		c.Poll.Interval = d
	}
	if v := os.Getenv("RSSAGG_DISABLE_CACHE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RSSAGG_DISABLE_CACHE: %w", err)
		}
		c.Fetch.DisableCache = b
	}
	if v := os.Getenv("RSSAGG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if c.Poll.MaxConcurrent <= 0 {
		return fmt.Errorf("poll.max_concurrent must be positive, got %d", c.Poll.MaxConcurrent)
	}
	if c.Fetch.Retries < 0 {
		return fmt.Errorf("fetch.retries must not be negative, got %d", c.Fetch.Retries)
	}
	if c.Fetch.Rate < 0 {
		return fmt.Errorf("fetch.rate must not be negative, got %g", c.Fetch.Rate)
	}
	if _, err := i18n.ParseLanguage(c.UI.Language); err != nil {
		return fmt.Errorf("ui.language: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// LogDir returns the configured log directory or the default one
func (c *Config) LogDir() string {
	if c.Log.Dir != "" {
		return c.Log.Dir
	}
	return filepath.Join(Dir(), "logs")
}
