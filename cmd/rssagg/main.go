// Command rssagg is a terminal RSS aggregator.
//
// Usage:
//
//	rssagg                  Interactive reader
//	rssagg watch URL...     Poll feeds headlessly, print new posts as JSON lines
//	rssagg check URL        Fetch a feed once and print a summary
//	rssagg events           JSONL event log viewer
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rssagg:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rssagg",
		Usage: "Read RSS feeds in the terminal",
		Description: `Add feeds by URL; new posts appear as they are published.

		Flags can generally be set via environment variables, e.g.:

		--proxy => RSSAGG_PROXY=https://allorigins.hexlet.app
		--lang => RSSAGG_LANG=en`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"RSSAGG_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "proxy",
				Usage:   "CORS proxy base URL",
				EnvVars: []string{"RSSAGG_PROXY"},
			},
			&cli.BoolFlag{
				Name:  "direct",
				Usage: "Fetch feeds directly instead of through the proxy",
			},
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Interface language (ru, en)",
				EnvVars: []string{"RSSAGG_LANG"},
			},
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "Delay between polls of tracked feeds",
				EnvVars: []string{"RSSAGG_POLL_INTERVAL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"RSSAGG_LOG_LEVEL"},
			},
			&cli.StringSliceFlag{
				Name:  "seed",
				Usage: "Feed URL to add at startup (repeatable)",
			},
		},
		Commands: []*cli.Command{
			watchCmd(),
			checkCmd(),
			eventsCmd(),
		},
		Action: runTUI,
	}
}
