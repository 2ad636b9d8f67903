// Package ui provides the Bubble Tea TUI for the reader.
package ui

import "github.com/abelbrown/rssagg/internal/feed"

// SubmitURL asks the app to validate and load a feed, as if typed into the
// form. Used for seed feeds at startup.
type SubmitURL struct {
	URL string
}

// FeedFetched is sent when the fetch of an interactive submission finishes.
type FeedFetched struct {
	URL string
	Doc *feed.Document
	Err error
}

// PollResult is sent by the poller for every feed it re-fetched.
type PollResult struct {
	URL string
	Doc *feed.Document
	Err error
}
