package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTracker is an in-memory Tracker.
type memTracker struct {
	*memSeen
	feeds []Feed
	read  map[string]bool
}

func newMemTracker() *memTracker {
	return &memTracker{memSeen: newMemSeen(), read: make(map[string]bool)}
}

func (m *memTracker) HasFeed(url string) bool {
	for _, f := range m.feeds {
		if f.URL == url {
			return true
		}
	}
	return false
}

func (m *memTracker) RegisterFeed(f Feed) (bool, error) {
	if m.HasFeed(f.URL) {
		return false, nil
	}
	m.feeds = append(m.feeds, f)
	return true, nil
}

func (m *memTracker) MarkRead(link string) error {
	m.read[link] = true
	return nil
}

// switchRecorder is a Scheduler that remembers its last state.
type switchRecorder struct {
	armed   bool
	arms    int
	disarms int
}

func (s *switchRecorder) Arm() {
	s.armed = true
	s.arms++
}

func (s *switchRecorder) Disarm() {
	s.armed = false
	s.disarms++
}

func newTestSession() (*Session, *memTracker, *switchRecorder) {
	tr := newMemTracker()
	sw := &switchRecorder{}
	return NewSession(tr, sw, nil), tr, sw
}

func loremDoc(items int) *Document {
	doc := &Document{Title: "Lorem RSS", Description: "Lorem ipsum feed"}
	for i := 0; i < items; i++ {
		doc.Items = append(doc.Items, Item{
			Title: fmt.Sprintf("Lorem ipsum %d", i),
			Link:  fmt.Sprintf("http://example.com/test/%d", i),
		})
	}
	return doc
}

// submit runs one interactive submission with a canned fetch result.
func submit(s *Session, raw string, doc *Document, err error) (Verdict, Update) {
	url, verdict := s.Begin(raw)
	if verdict != VerdictAccepted {
		return verdict, Update{URL: url, Status: s.Status()}
	}
	return verdict, s.Complete(url, doc, err)
}

func TestSessionInitialState(t *testing.T) {
	s, _, sw := newTestSession()
	assert.Equal(t, StatusNone, s.Status())
	assert.Equal(t, 0, s.Board().FeedCount())
	assert.False(t, sw.armed)
}

func TestSessionFirstLoadAndPoll(t *testing.T) {
	s, tr, sw := newTestSession()
	const url = "https://lorem-rss.hexlet.app/feed"

	verdict, up := submit(s, url, loremDoc(2), nil)
	require.Equal(t, VerdictAccepted, verdict)
	require.NoError(t, up.Err)
	assert.True(t, up.FeedAdded)
	assert.Len(t, up.Posts, 2)
	assert.Equal(t, StatusValid, s.Status())
	assert.True(t, sw.armed)
	assert.True(t, tr.HasFeed(url))

	// Next tick returns the same two items plus one new one.
	doc := loremDoc(2)
	doc.Items = append([]Item{{Title: "Fresh", Link: "http://example.com/test/new"}}, doc.Items...)
	up = s.ApplyPoll(url, doc, nil)
	require.NoError(t, up.Err)
	assert.False(t, up.FeedAdded)
	require.Len(t, up.Posts, 1)
	assert.Equal(t, "http://example.com/test/new", up.Posts[0].Link)
	assert.Equal(t, 1, s.Board().FeedCount())
	assert.Equal(t, 3, s.Board().PostCount())
	assert.Equal(t, StatusValid, s.Status())
}

func TestSessionDuplicateSubmission(t *testing.T) {
	s, tr, sw := newTestSession()
	const url = "https://example.com/rss"

	_, up := submit(s, url, loremDoc(1), nil)
	require.NoError(t, up.Err)

	verdict, up := submit(s, url, loremDoc(1), nil)
	assert.Equal(t, VerdictAlreadyTracked, verdict)
	assert.Equal(t, StatusAlreadyExists, up.Status)
	assert.Len(t, tr.feeds, 1)
	assert.Equal(t, 1, s.Board().FeedCount())
	assert.False(t, sw.armed, "failure disarms polling")
}

func TestSessionInvalidURL(t *testing.T) {
	s, tr, sw := newTestSession()

	verdict, _ := submit(s, "hello", nil, nil)
	assert.Equal(t, VerdictInvalidURL, verdict)
	assert.Equal(t, StatusInvalidLink, s.Status())
	assert.Empty(t, tr.feeds)
	assert.Equal(t, 1, sw.disarms)
}

func TestSessionEmptySubmissionIgnored(t *testing.T) {
	s, _, sw := newTestSession()

	verdict, _ := submit(s, "  ", nil, nil)
	assert.Equal(t, VerdictEmpty, verdict)
	assert.Equal(t, StatusNone, s.Status())
	assert.Zero(t, sw.arms+sw.disarms)
}

func TestSessionFetchFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{name: "not a feed", err: fmt.Errorf("%w: html", ErrInvalidFeedFormat), want: StatusInvalidRSS},
		{name: "network", err: fmt.Errorf("%w: timeout", ErrFetchFailed), want: StatusNetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, tr, sw := newTestSession()
			_, up := submit(s, "https://example.com/ok", loremDoc(1), nil)
			require.NoError(t, up.Err)
			require.True(t, sw.armed)

			_, up = submit(s, "https://example.com/broken", nil, tt.err)
			assert.ErrorIs(t, up.Err, tt.err)
			assert.Equal(t, tt.want, s.Status())
			assert.False(t, sw.armed)
			assert.Len(t, tr.feeds, 1, "failed submission is not tracked")
			assert.Equal(t, 1, s.Board().PostCount())
		})
	}
}

func TestSessionCompleteRaceAlreadyTracked(t *testing.T) {
	s, tr, _ := newTestSession()
	const url = "https://example.com/rss"

	// Two submissions pass validation before either completes.
	_, v1 := s.Begin(url)
	_, v2 := s.Begin(url)
	require.Equal(t, VerdictAccepted, v1)
	require.Equal(t, VerdictAccepted, v2)

	up := s.Complete(url, loremDoc(1), nil)
	require.NoError(t, up.Err)
	up = s.Complete(url, loremDoc(1), nil)
	assert.ErrorIs(t, up.Err, ErrAlreadyTracked)
	assert.Equal(t, StatusAlreadyExists, s.Status())
	assert.Len(t, tr.feeds, 1)
}

func TestSessionPollFailureKeepsArmed(t *testing.T) {
	s, _, sw := newTestSession()
	const url = "https://example.com/rss"
	_, up := submit(s, url, loremDoc(2), nil)
	require.NoError(t, up.Err)

	up = s.ApplyPoll(url, nil, fmt.Errorf("%w: 502", ErrFetchFailed))
	assert.Error(t, up.Err)
	assert.Equal(t, StatusValid, s.Status())
	assert.True(t, sw.armed)
	assert.Equal(t, 1, sw.arms, "poll results never re-arm")
	assert.Equal(t, 2, s.Board().PostCount())
}

func TestSessionPollKeepsOriginalTitle(t *testing.T) {
	s, tr, _ := newTestSession()
	const url = "https://example.com/rss"
	_, up := submit(s, url, loremDoc(1), nil)
	require.NoError(t, up.Err)

	renamed := loremDoc(1)
	renamed.Title = "Renamed"
	s.ApplyPoll(url, renamed, nil)

	assert.Equal(t, "Lorem RSS", s.Board().Feeds()[0].Title)
	assert.Equal(t, "Lorem RSS", tr.feeds[0].Title)
}

func TestSessionMarkRead(t *testing.T) {
	s, tr, _ := newTestSession()
	_, up := submit(s, "https://example.com/rss", loremDoc(2), nil)
	require.NoError(t, up.Err)

	s.MarkRead("http://example.com/test/1")
	s.MarkRead("http://example.com/unknown")

	p, _ := s.Board().Post(1)
	assert.True(t, p.Read)
	assert.True(t, tr.read["http://example.com/test/1"])
	assert.False(t, tr.read["http://example.com/unknown"])
}
