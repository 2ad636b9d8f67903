package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/abelbrown/rssagg/internal/otel"
)

func eventsCmd() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Show the JSONL event log written by the reader",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "tail", Aliases: []string{"n"}, Value: 50, Usage: "Number of recent events to show"},
			&cli.BoolFlag{Name: "follow", Aliases: []string{"f"}, Usage: "Keep printing new events"},
			&cli.StringFlag{Name: "kind", Usage: "Filter by kind prefix (e.g. poll, fetch.error)"},
			&cli.StringFlag{Name: "level", Usage: "Minimum level: debug, info, warn, error"},
			&cli.StringFlag{Name: "feed", Usage: "Filter by feed URL substring"},
			&cli.BoolFlag{Name: "json", Usage: "Print raw JSON lines"},
		},
		Action: runEvents,
	}
}

// eventFilter selects events for display.
type eventFilter struct {
	kind     string
	minLevel int
	feed     string
}

func (f eventFilter) match(ev otel.Event) bool {
	if f.kind != "" && !strings.HasPrefix(string(ev.Kind), f.kind) {
		return false
	}
	if levelRank(ev.Level) < f.minLevel {
		return false
	}
	if f.feed != "" && !strings.Contains(ev.Feed, f.feed) {
		return false
	}
	return true
}

// levelRank orders levels by severity; unknown levels rank as debug.
func levelRank(level otel.Level) int {
	switch level {
	case otel.LevelInfo:
		return 1
	case otel.LevelWarn:
		return 2
	case otel.LevelError:
		return 3
	}
	return 0
}

func runEvents(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	path := filepath.Join(cfg.LogDir(), "events.jsonl")

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cli.Exit(fmt.Sprintf("no event log at %s; run the reader first", path), 1)
		}
		return err
	}
	defer f.Close()

	filter := eventFilter{
		kind:     c.String("kind"),
		minLevel: levelRank(otel.Level(strings.ToLower(c.String("level")))),
		feed:     c.String("feed"),
	}
	raw := c.Bool("json")
	w := c.App.Writer

	for _, l := range readTail(f, c.Int("tail"), filter) {
		fmt.Fprintln(w, formatEvent(l.ev, l.raw, raw))
	}
	if !c.Bool("follow") {
		return nil
	}
	return follow(c.Context, f, filter, func(ev otel.Event, line []byte) {
		fmt.Fprintln(w, formatEvent(ev, line, raw))
	})
}

type eventLine struct {
	ev  otel.Event
	raw []byte
}

// readTail returns the last n events in r accepted by filter.
// Lines that are not valid events are skipped.
func readTail(r io.Reader, n int, filter eventFilter) []eventLine {
	if n <= 0 {
		return nil
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	out := make([]eventLine, 0, n)
	for scanner.Scan() {
		line := scanner.Bytes()
		var ev otel.Event
		if len(line) == 0 || json.Unmarshal(line, &ev) != nil || !filter.match(ev) {
			continue
		}
		raw := append([]byte(nil), line...)
		if len(out) == n {
			copy(out, out[1:])
			out = out[:n-1]
		}
		out = append(out, eventLine{ev: ev, raw: raw})
	}
	return out
}

// follow polls r for appended lines until ctx is done.
func follow(ctx context.Context, r io.Reader, filter eventFilter, emit func(otel.Event, []byte)) error {
	reader := bufio.NewReader(r)
	var partial []byte
	for {
		line, err := reader.ReadBytes('\n')
		partial = append(partial, line...)
		if errors.Is(err, io.EOF) {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}
		if err != nil {
			return err
		}

		line = []byte(strings.TrimRight(string(partial), "\r\n"))
		partial = partial[:0]
		var ev otel.Event
		if len(line) == 0 || json.Unmarshal(line, &ev) != nil || !filter.match(ev) {
			continue
		}
		emit(ev, line)
	}
}

func formatEvent(ev otel.Event, line []byte, raw bool) string {
	if raw {
		return string(line)
	}
	lvl := strings.ToUpper(string(ev.Level))
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-16s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}

	if ev.Feed != "" {
		parts = append(parts, ev.Feed)
	}
	if ev.Status != "" {
		parts = append(parts, "status="+ev.Status)
	}
	if ev.Msg != "" {
		parts = append(parts, ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%.*fms)", durPrecision(ev.DurMs), ev.DurMs))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

func durPrecision(ms float64) int {
	switch {
	case ms >= 100:
		return 0
	case ms >= 1:
		return 1
	}
	return 2
}
