package feed

import "fmt"

// Seen records post links that have already been rendered.
type Seen interface {
	// MarkSeen returns true only the first time link is offered.
	MarkSeen(link string) (bool, error)
}

// Board is the rendered projection: a feeds list and a posts list, both
// append-only in order of first encounter.
type Board struct {
	feeds   []Feed
	feedIdx map[string]int
	posts   []Post
	postIdx map[string]int
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{
		feedIdx: make(map[string]int),
		postIdx: make(map[string]int),
	}
}

// Apply merges a fetched document into the board.
// A feed-summary entry is appended the first time doc.URL is seen. Each item
// is offered to seen; only newly seen links produce a post entry, so
// re-applying an unchanged document changes nothing.
// On a store error the posts appended so far are kept and returned.
func (b *Board) Apply(doc *Document, seen Seen) (feedAdded bool, added []Post, err error) {
	if _, ok := b.feedIdx[doc.URL]; !ok {
		b.feedIdx[doc.URL] = len(b.feeds)
		b.feeds = append(b.feeds, doc.Feed())
		feedAdded = true
	}

	for _, item := range doc.Items {
		if item.Link == "" {
			continue
		}
		fresh, serr := seen.MarkSeen(item.Link)
		if serr != nil {
			return feedAdded, added, fmt.Errorf("mark %s seen: %w", item.Link, serr)
		}
		if !fresh {
			continue
		}
		post := Post{
			FeedURL:     doc.URL,
			Link:        item.Link,
			Title:       item.Title,
			Description: item.Description,
		}
		b.postIdx[post.Link] = len(b.posts)
		b.posts = append(b.posts, post)
		added = append(added, post)
	}
	return feedAdded, added, nil
}

// MarkRead flags a rendered post as read. Returns false for unknown links.
func (b *Board) MarkRead(link string) bool {
	i, ok := b.postIdx[link]
	if !ok {
		return false
	}
	b.posts[i].Read = true
	return true
}

// Feeds returns a copy of the feed entries.
func (b *Board) Feeds() []Feed {
	out := make([]Feed, len(b.feeds))
	copy(out, b.feeds)
	return out
}

// Posts returns a copy of the post entries.
func (b *Board) Posts() []Post {
	out := make([]Post, len(b.posts))
	copy(out, b.posts)
	return out
}

// Post returns the i-th post entry.
func (b *Board) Post(i int) (Post, bool) {
	if i < 0 || i >= len(b.posts) {
		return Post{}, false
	}
	return b.posts[i], true
}

// FeedCount returns the number of feed entries.
func (b *Board) FeedCount() int { return len(b.feeds) }

// PostCount returns the number of post entries.
func (b *Board) PostCount() int { return len(b.posts) }
