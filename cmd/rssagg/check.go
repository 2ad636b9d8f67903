package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/urfave/cli/v2"

	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/i18n"
	"github.com/abelbrown/rssagg/internal/logging"
	"github.com/abelbrown/rssagg/internal/store"
)

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Fetch a feed once and print a summary",
		ArgsUsage: "URL",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 10,
				Usage: "Number of items to list",
			},
		},
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("check: exactly one URL expected", 2)
	}
	limit := c.Int("limit")
	if limit < 0 {
		return cli.Exit("check: --limit must not be negative", 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := logging.InitWriter(os.Stderr, cfg.Log.Level); err != nil {
		return err
	}
	tr := i18n.New(uiLanguage(cfg))
	w := c.App.Writer

	st, err := store.Open()
	if err != nil {
		return err
	}
	defer st.Close()

	url, verdict := feed.NewValidator(st).Check(c.Args().First())
	if verdict == feed.VerdictEmpty {
		return cli.Exit("check: empty URL", 2)
	}
	if verdict != feed.VerdictAccepted {
		printStatus(w, tr, feed.StatusFor(verdict.Err()))
		return cli.Exit("", 1)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Context, cfg.Fetch.Timeout)
	defer cancel()

	doc, err := fetcher.Fetch(ctx, url)
	printStatus(w, tr, feed.StatusFor(err))
	if err != nil {
		logging.Error("check failed", "url", url, "err", err)
		return cli.Exit("", 1)
	}

	fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprint(doc.Title))
	if doc.Description != "" {
		fmt.Fprintln(w, doc.Description)
	}
	fmt.Fprintf(w, "%s: %d\n\n", tr.T("posts"), len(doc.Items))

	rows := make([][]string, 0, limit)
	for i, item := range doc.Items {
		if i >= limit {
			break
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), truncate(item.Title, 60), item.Link})
	}
	if err := renderTable(w, []string{"#", "Title", "Link"}, rows); err != nil {
		return err
	}
	if more := len(doc.Items) - len(rows); more > 0 {
		fmt.Fprintf(w, "... %d more\n", more)
	}
	return nil
}

// printStatus writes the translated status message, green on success.
func printStatus(w io.Writer, tr *i18n.Translator, st feed.Status) {
	c := color.New(color.FgRed)
	if st == feed.StatusValid {
		c = color.New(color.FgGreen)
	}
	c.Fprintln(w, tr.T(st.MessageKey()))
}

// renderTable prints rows without borders, left aligned.
func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(header)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
