package feed

import (
	"fmt"

	"github.com/abelbrown/rssagg/internal/logging"
	"github.com/abelbrown/rssagg/internal/otel"
)

// Tracker is the store behind a Session.
type Tracker interface {
	Lookup
	Seen
	RegisterFeed(f Feed) (bool, error)
	MarkRead(link string) error
}

// Scheduler is the poller as seen by the Session.
type Scheduler interface {
	Arm()
	Disarm()
}

// Update describes what an applied result changed.
type Update struct {
	URL       string
	FeedAdded bool
	Posts     []Post // newly appended post entries, in document order
	Status    Status // current status after the update
	Err       error  // fetch or store failure, if any
}

// Session is the application state of one reader run: tracked feeds, the
// board, the current status and the poller switch.
// It is not safe for concurrent use; drive it from one goroutine.
type Session struct {
	store     Tracker
	validator *Validator
	board     *Board
	sched     Scheduler
	status    Status
	events    *otel.Logger
}

// NewSession wires a session. events may be nil.
func NewSession(store Tracker, sched Scheduler, events *otel.Logger) *Session {
	return &Session{
		store:     store,
		validator: NewValidator(store),
		board:     NewBoard(),
		sched:     sched,
		events:    events,
	}
}

// Begin validates a submission. Rejections update the status (and disarm
// polling); an accepted URL must be fetched and handed to Complete.
// VerdictEmpty changes nothing.
func (s *Session) Begin(raw string) (string, Verdict) {
	url, verdict := s.validator.Check(raw)
	switch verdict {
	case VerdictEmpty:
		return "", verdict
	case VerdictAccepted:
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSubmitAccepted, Comp: "session", Feed: url})
	default:
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSubmitRejected, Comp: "session", Feed: url, Msg: verdict.String()})
		s.setStatus(StatusFor(verdict.Err()))
	}
	return url, verdict
}

// Complete applies the fetch result of an interactive submission.
// Success registers the feed, renders it and arms polling; any failure
// replaces the status and disarms polling for every feed.
func (s *Session) Complete(url string, doc *Document, err error) Update {
	if err == nil && doc == nil {
		err = fmt.Errorf("%w: empty result", ErrFetchFailed)
	}
	if err != nil {
		logging.Warn("submission failed", "feed", url, "err", err)
		s.setStatus(StatusFor(err))
		return Update{URL: url, Status: s.status, Err: err}
	}

	// Another submission of the same URL may have completed while this
	// one was in flight.
	if s.store.HasFeed(url) {
		s.setStatus(StatusAlreadyExists)
		return Update{URL: url, Status: s.status, Err: ErrAlreadyTracked}
	}

	doc.URL = url
	up := s.apply(doc)
	if up.Err != nil {
		s.setStatus(StatusNetworkError)
		up.Status = s.status
		return up
	}
	s.setStatus(StatusValid)
	up.Status = s.status
	return up
}

// ApplyPoll merges a background poll result. Failures are reported and
// otherwise ignored: the feed stays tracked and polling stays armed.
// The status slot belongs to interactive submissions and is left alone.
func (s *Session) ApplyPoll(url string, doc *Document, err error) Update {
	if err != nil {
		logging.Warn("poll failed", "feed", url, "err", err)
		return Update{URL: url, Status: s.status, Err: err}
	}
	if doc == nil {
		return Update{URL: url, Status: s.status}
	}
	doc.URL = url
	up := s.apply(doc)
	up.Status = s.status
	return up
}

func (s *Session) apply(doc *Document) Update {
	up := Update{URL: doc.URL}

	if _, err := s.store.RegisterFeed(doc.Feed()); err != nil {
		up.Err = fmt.Errorf("register %s: %w", doc.URL, err)
		return up
	}

	added, posts, err := s.board.Apply(doc, s.store)
	up.FeedAdded = added
	up.Posts = posts
	if err != nil {
		up.Err = err
	}

	if added {
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRenderFeed, Comp: "session", Feed: doc.URL, Msg: doc.Title})
	}
	if len(posts) > 0 {
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindRenderPosts, Comp: "session", Feed: doc.URL, Count: len(posts)})
		logging.Debug("posts rendered", "feed", doc.URL, "new", len(posts), "total", s.board.PostCount())
	}
	return up
}

// setStatus replaces the current status. Valid arms the poller, every
// failure disarms it.
func (s *Session) setStatus(st Status) {
	s.status = st
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindStatus, Comp: "session", Status: st.String()})

	switch {
	case st == StatusValid:
		s.sched.Arm()
	case st.IsFailure():
		s.sched.Disarm()
	}
}

// MarkRead flags a post as read on the board and in the store.
func (s *Session) MarkRead(link string) {
	if !s.board.MarkRead(link) {
		return
	}
	if err := s.store.MarkRead(link); err != nil {
		logging.Warn("mark read failed", "link", link, "err", err)
	}
	s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPostViewed, Comp: "session", Msg: link})
}

// Status returns the current status.
func (s *Session) Status() Status { return s.status }

// Board returns the rendered projection.
func (s *Session) Board() *Board { return s.board }
