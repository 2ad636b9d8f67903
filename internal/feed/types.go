// Package feed holds the reader's domain model and the state machine that
// turns submissions and poll results into an append-only feed board.
//
// Nothing in this package performs I/O. Fetching lives in internal/fetch,
// storage in internal/store and scheduling in internal/coord; a Session wires
// them together and must only be driven from a single goroutine.
package feed

// Feed is a tracked syndication source.
// Title and Description are captured on the first successful load and never
// refreshed afterwards.
type Feed struct {
	URL         string
	Title       string
	Description string
}

// Post is a rendered entry of a feed, identified globally by Link.
type Post struct {
	FeedURL     string
	Link        string
	Title       string
	Description string
	Read        bool // cosmetic only, set when the detail view is opened
}

// Item is one entry as extracted from a fetched document.
type Item struct {
	Title       string
	Link        string
	Description string
}

// Document is a successfully parsed feed.
// Items keep the order in which they appear in the upstream document.
type Document struct {
	URL         string
	Title       string
	Description string
	Items       []Item
}

// Feed returns the feed-summary part of the document.
func (d *Document) Feed() Feed {
	return Feed{URL: d.URL, Title: d.Title, Description: d.Description}
}
