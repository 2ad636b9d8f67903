package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/rssagg/internal/coord"
	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/otel"
)

// Fetcher retrieves one feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Document, error)
}

// FetchFunc returns the command factory used for interactive submissions.
// Each command fetches url with its own timeout and reports FeedFetched.
func FetchFunc(f Fetcher, timeout time.Duration, events *otel.Logger) func(url string) tea.Cmd {
	return func(url string) tea.Cmd {
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			start := time.Now()
			events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "ui", Feed: url})
			doc, err := f.Fetch(ctx, url)
			if err != nil {
				events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFetchError, Comp: "ui", Feed: url, Dur: time.Since(start), Err: err.Error()})
			} else if doc != nil {
				events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "ui", Feed: url, Dur: time.Since(start), Count: len(doc.Items)})
			}
			return FeedFetched{URL: url, Doc: doc, Err: err}
		}
	}
}

// PollDeliver forwards poller results into the program as PollResult
// messages. send is usually (*tea.Program).Send.
func PollDeliver(send func(tea.Msg)) func(coord.Result) {
	return func(r coord.Result) {
		send(PollResult{URL: r.URL, Doc: r.Doc, Err: r.Err})
	}
}
