// Package store keeps the tracked feeds and the set of seen post links.
//
// The data lives in a private in-memory SQLite database: it is gone when the
// process exits. UNIQUE constraints give idempotent registration and
// first-seen detection for free.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/logging"
)

// Store handles the session's feed state. Concrete type, not an interface.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
// The poller reads URLs from its own goroutine while the UI writes.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates an empty in-memory store.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every new connection to ":memory:" is a fresh database; pin to one
	// connection and never let it expire.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feeds (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		added_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS seen_posts (
		link TEXT PRIMARY KEY,
		read INTEGER NOT NULL DEFAULT 0,
		seen_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database; all state is discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// RegisterFeed inserts f if its URL is not tracked yet.
// Returns true when a row was inserted. An existing feed is never
// overwritten, so title and description stay as first loaded.
func (s *Store) RegisterFeed(f feed.Feed) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO feeds (url, title, description, added_at) VALUES (?, ?, ?, ?)`,
		f.URL, f.Title, f.Description, time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("insert feed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// HasFeed reports whether url is tracked. A query failure is logged and
// reported as not tracked.
func (s *Store) HasFeed(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM feeds WHERE url = ?`, url).Scan(&n); err != nil {
		logging.Error("store: has feed", "url", url, "err", err)
		return false
	}
	return n > 0
}

// MarkSeen records link and returns true if it had not been seen before.
func (s *Store) MarkSeen(link string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO seen_posts (link, seen_at) VALUES (?, ?)`,
		link, time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("insert seen post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// MarkRead flags a seen link as read. Unknown links are ignored.
func (s *Store) MarkRead(link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`UPDATE seen_posts SET read = 1 WHERE link = ?`, link); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// Feeds returns tracked feeds in registration order.
func (s *Store) Feeds() ([]feed.Feed, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT url, title, description FROM feeds ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	var out []feed.Feed
	for rows.Next() {
		var f feed.Feed
		if err := rows.Scan(&f.URL, &f.Title, &f.Description); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// URLs returns tracked feed URLs in registration order.
func (s *Store) URLs() ([]string, error) {
	feeds, err := s.Feeds()
	if err != nil {
		return nil, err
	}
	return lo.Map(feeds, func(f feed.Feed, _ int) string { return f.URL }), nil
}

// Counts returns the number of tracked feeds, seen posts and read posts.
func (s *Store) Counts() (feeds, seen, read int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err = s.db.QueryRow(`
		SELECT
			(SELECT COUNT(1) FROM feeds),
			(SELECT COUNT(1) FROM seen_posts),
			(SELECT COUNT(1) FROM seen_posts WHERE read = 1)
	`).Scan(&feeds, &seen, &read)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count: %w", err)
	}
	return feeds, seen, read, nil
}
