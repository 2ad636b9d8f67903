package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/abelbrown/rssagg/internal/coord"
	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/i18n"
	"github.com/abelbrown/rssagg/internal/logging"
	"github.com/abelbrown/rssagg/internal/otel"
	"github.com/abelbrown/rssagg/internal/store"
	"github.com/abelbrown/rssagg/internal/ui"
)

// runTUI starts the interactive reader and blocks until the user quits.
func runTUI(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if otel.TraceEnabled() {
		level = "debug"
	}
	if err := logging.Init(logging.Options{
		Dir:        cfg.LogDir(),
		Level:      level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Close()

	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events, eventsFile := openEvents(cfg)
	events.SetRingBuffer(ring)
	defer eventsFile.Close()
	defer events.Close()
	events.Info(otel.KindStartup, "main", "rssagg started")

	st, err := store.Open()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	// The poller only delivers after it is armed, which happens on the
	// update loop of a running program.
	var program *tea.Program
	poller := coord.NewPoller(fetcher, st, ui.PollDeliver(func(msg tea.Msg) {
		program.Send(msg)
	}), events, pollOptions(cfg))

	session := feed.NewSession(st, poller, events)
	app := ui.NewApp(ui.AppConfig{
		Session:    session,
		Fetch:      ui.FetchFunc(fetcher, cfg.Fetch.Timeout, events),
		Poller:     poller,
		Translator: i18n.New(uiLanguage(cfg)),
		Seeds:      cfg.SeedFeeds,
		Obs:        ui.ObsConfig{Logger: events, Ring: ring},
		Debug:      otel.TraceEnabled(),
	})

	logging.Info("starting reader",
		"proxy", cfg.Fetch.Proxy,
		"interval", cfg.Poll.Interval,
		"lang", cfg.UI.Language,
		"seeds", len(cfg.SeedFeeds),
	)

	program = tea.NewProgram(app, tea.WithAltScreen())
	_, runErr := program.Run()

	// Graceful shutdown
	poller.Stop()
	events.Info(otel.KindShutdown, "main", "rssagg stopped")
	if runErr != nil {
		logging.Error("program exited with error", "err", runErr)
		return fmt.Errorf("run reader: %w", runErr)
	}
	return nil
}
