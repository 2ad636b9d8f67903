package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/abelbrown/rssagg/internal/config"
	"github.com/abelbrown/rssagg/internal/coord"
	"github.com/abelbrown/rssagg/internal/fetch"
	"github.com/abelbrown/rssagg/internal/i18n"
	"github.com/abelbrown/rssagg/internal/otel"
)

// loadConfig reads the config file and applies flag overrides on top.
// Precedence: defaults < file < environment < flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	if c.IsSet("proxy") {
		cfg.Fetch.Proxy = c.String("proxy")
	}
	if c.Bool("direct") {
		cfg.Fetch.Proxy = ""
	}
	if c.IsSet("lang") {
		cfg.UI.Language = c.String("lang")
	}
	if c.IsSet("interval") {
		cfg.Poll.Interval = c.Duration("interval")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	cfg.SeedFeeds = lo.Uniq(append(cfg.SeedFeeds, c.StringSlice("seed")...))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) (*fetch.Fetcher, error) {
	return fetch.NewFetcher(fetch.Options{
		ProxyURL:      cfg.Fetch.Proxy,
		DisableCache:  cfg.Fetch.DisableCache,
		Timeout:       cfg.Fetch.Timeout,
		RatePerSecond: cfg.Fetch.Rate,
		UserAgent:     cfg.Fetch.UserAgent,
		Retries:       cfg.Fetch.Retries,
	})
}

func pollOptions(cfg *config.Config) coord.Options {
	return coord.Options{
		Interval:      cfg.Poll.Interval,
		FetchTimeout:  cfg.Fetch.Timeout,
		MaxConcurrent: cfg.Poll.MaxConcurrent,
	}
}

// uiLanguage returns the configured language. Validate has already
// rejected unsupported names.
func uiLanguage(cfg *config.Config) language.Tag {
	tag, err := i18n.ParseLanguage(cfg.UI.Language)
	if err != nil {
		return language.Russian
	}
	return tag
}

// openEvents returns the JSONL event logger for this run and the file
// behind it. With events disabled the logger discards everything.
func openEvents(cfg *config.Config) (*otel.Logger, io.Closer) {
	if !cfg.Log.Events {
		return otel.NewNullLogger(), io.NopCloser(nil)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir(), "events.jsonl"),
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
	}
	return otel.NewLogger(file), file
}
