package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"github.com/abelbrown/rssagg/internal/coord"
	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/logging"
	"github.com/abelbrown/rssagg/internal/store"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Poll feeds without the UI and print new posts as JSON lines",
		ArgsUsage: "URL...",
		Description: `Loads every URL (plus configured seed feeds), prints their posts and
		keeps polling. Each new post is written to stdout as one JSON object.
		Diagnostics go to stderr.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Exit after the initial load instead of polling",
			},
		},
		Action: runWatch,
	}
}

// postLine is one line of watch output.
type postLine struct {
	Feed        string `json:"feed"`
	Link        string `json:"link"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// watchMsg is a fetch outcome queued for the session goroutine.
type watchMsg struct {
	coord.Result
	poll bool
}

// runWatch drives a Session from a single goroutine: submissions, their
// completions and poll results are all funnelled through inbox.
func runWatch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := logging.InitWriter(os.Stderr, cfg.Log.Level); err != nil {
		return err
	}

	urls := lo.Uniq(append(cfg.SeedFeeds, c.Args().Slice()...))
	if len(urls) == 0 {
		return cli.Exit("watch: at least one feed URL is required", 2)
	}

	st, err := store.Open()
	if err != nil {
		return err
	}
	defer st.Close()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	inbox := make(chan watchMsg, 64)
	send := func(m watchMsg) {
		select {
		case inbox <- m:
		case <-ctx.Done():
		}
	}

	poller := coord.NewPoller(fetcher, st, func(r coord.Result) {
		send(watchMsg{Result: r, poll: true})
	}, nil, pollOptions(cfg))
	defer func() {
		// Unblock deliveries before waiting for the running tick.
		stop()
		poller.Stop()
	}()

	session := feed.NewSession(st, poller, nil)
	enc := json.NewEncoder(c.App.Writer)

	pending := 0
	for _, raw := range urls {
		url, verdict := session.Begin(raw)
		if verdict != feed.VerdictAccepted {
			logging.Warn("skipping feed", "url", raw, "reason", verdict)
			continue
		}
		pending++
		go func() {
			fctx, cancel := context.WithTimeout(ctx, cfg.Fetch.Timeout)
			defer cancel()
			doc, err := fetcher.Fetch(fctx, url)
			send(watchMsg{Result: coord.Result{URL: url, Doc: doc, Err: err}})
		}()
	}
	if pending == 0 {
		return cli.Exit("watch: no valid feed URL", 1)
	}

	for {
		select {
		case <-ctx.Done():
			feeds, seen, _, err := st.Counts()
			if err != nil {
				logging.Warn("store counts", "err", err)
			}
			logging.Info("watch stopped", "feeds", feeds, "posts", seen, "polls", poller.Ticks())
			return nil

		case m := <-inbox:
			var up feed.Update
			if m.poll {
				up = session.ApplyPoll(m.URL, m.Doc, m.Err)
			} else {
				pending--
				up = session.Complete(m.URL, m.Doc, m.Err)
				if up.Err != nil {
					logging.Warn("feed not added", "url", m.URL, "status", up.Status, "err", up.Err)
				} else {
					logging.Info("tracking feed", "url", m.URL, "posts", len(up.Posts))
				}
			}

			for _, p := range up.Posts {
				if err := enc.Encode(postLine{Feed: p.FeedURL, Link: p.Link, Title: p.Title, Description: p.Description}); err != nil {
					return err
				}
			}

			if !m.poll && pending == 0 {
				if session.Board().FeedCount() == 0 {
					return cli.Exit("watch: no feed could be loaded", 1)
				}
				if c.Bool("once") {
					return nil
				}
				// A failed submission disarms polling for every feed; the
				// remaining feeds keep being watched.
				poller.Arm()
			}
		}
	}
}
