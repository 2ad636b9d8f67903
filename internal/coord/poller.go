// Package coord schedules background re-polling of tracked feeds.
package coord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/logging"
	"github.com/abelbrown/rssagg/internal/otel"
)

// DefaultInterval is the time between the end of one tick and the next.
const DefaultInterval = 20 * time.Second

// defaultFetchTimeout bounds each individual fetch of a tick.
const defaultFetchTimeout = 30 * time.Second

// defaultMaxConcurrent limits parallel fetches within a tick.
const defaultMaxConcurrent = 5

// State is the poller's scheduling state.
type State int

const (
	StateIdle State = iota
	StateArmed
)

func (s State) String() string {
	if s == StateArmed {
		return "armed"
	}
	return "idle"
}

// fetcher interface for dependency injection (testing).
type fetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Document, error)
}

// lister supplies the tracked URLs at the start of each tick.
type lister interface {
	URLs() ([]string, error)
}

// Result is the outcome of fetching one feed during a tick.
type Result struct {
	URL string
	Doc *feed.Document
	Err error
}

// Options tunes a Poller. Zero values use the defaults.
type Options struct {
	Interval      time.Duration
	FetchTimeout  time.Duration
	MaxConcurrent int
}

// Poller re-fetches every tracked feed on a recurring timer.
//
// Arm and Disarm may be called from any goroutine. Each Arm starts a new
// generation; a tick only re-schedules itself while its generation is current,
// so a Disarm during a running tick lets the fetches finish and deliver but
// stops the chain.
type Poller struct {
	fetcher fetcher
	urls    lister
	deliver func(Result)
	events  *otel.Logger
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	gen     uint64
	timer   *time.Timer
	ticks   int
	stopped bool
	wg      sync.WaitGroup
}

// NewPoller creates an idle Poller. deliver receives every per-feed result
// and must not block for long; the UI passes program.Send.
func NewPoller(f fetcher, urls lister, deliver func(Result), events *otel.Logger, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		fetcher: f,
		urls:    urls,
		deliver: deliver,
		events:  events,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Arm moves Idle to Armed and schedules a tick after the interval.
// Arming an armed poller keeps the pending schedule.
func (p *Poller) Arm() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped || p.state == StateArmed {
		return
	}
	p.state = StateArmed
	p.gen++
	p.scheduleLocked(p.gen)

	p.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollArmed, Comp: "poller", Dur: p.opts.Interval})
	logging.Debug("poller armed", "interval", p.opts.Interval)
}

// Disarm moves Armed to Idle and cancels the pending tick.
func (p *Poller) Disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateIdle {
		return
	}
	p.state = StateIdle
	p.gen++
	p.stopTimerLocked()

	p.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPollDisarmed, Comp: "poller"})
	logging.Debug("poller disarmed")
}

// scheduleLocked arms the timer for generation gen. Caller holds p.mu.
func (p *Poller) scheduleLocked(gen uint64) {
	p.wg.Add(1)
	p.timer = time.AfterFunc(p.opts.Interval, func() {
		defer p.wg.Done()
		p.tick(gen)
	})
}

// stopTimerLocked cancels the pending tick, if any. Caller holds p.mu.
func (p *Poller) stopTimerLocked() {
	if p.timer != nil && p.timer.Stop() {
		// The callback will never run; release its slot.
		p.wg.Done()
	}
	p.timer = nil
}

func (p *Poller) tick(gen uint64) {
	p.mu.Lock()
	if p.stopped || p.gen != gen || p.state != StateArmed {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	p.ticks++
	n := p.ticks
	p.mu.Unlock()

	start := time.Now()
	urls, err := p.urls.URLs()
	if err != nil {
		logging.Error("poller: list feeds", "err", err)
		p.events.Error(otel.KindError, "poller", fmt.Errorf("list feeds: %w", err))
	}
	p.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindPollTick, Comp: "poller", Count: len(urls), Extra: map[string]any{"tick": n}})

	failed := p.fetchAll(urls)

	p.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindPollDone,
		Comp:  "poller",
		Dur:   time.Since(start),
		Count: len(urls),
		Extra: map[string]any{"tick": n, "failed": failed},
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	// Nothing tracked means nothing to poll.
	if len(urls) == 0 && err == nil && p.gen == gen {
		p.state = StateIdle
		p.gen++
		logging.Debug("poller idle: no tracked feeds")
		return
	}
	if !p.stopped && p.gen == gen && p.state == StateArmed {
		p.scheduleLocked(gen)
	}
}

// fetchAll fetches urls in parallel, delivering each result as it completes.
// Returns the number of failed fetches.
func (p *Poller) fetchAll(urls []string) int {
	var g errgroup.Group
	g.SetLimit(p.opts.MaxConcurrent)

	var mu sync.Mutex
	failed := 0

	for _, u := range urls {
		g.Go(func() error {
			if p.ctx.Err() != nil {
				return nil
			}
			if !p.fetchOne(u) {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil // never fail the group - errors reported per-feed
		})
	}
	_ = g.Wait()
	return failed
}

func (p *Poller) fetchOne(url string) bool {
	ctx, cancel := context.WithTimeout(p.ctx, p.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	p.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStart, Comp: "poller", Feed: url})
	doc, err := p.fetcher.Fetch(ctx, url)
	if err == nil && doc == nil {
		err = fmt.Errorf("%w: empty result", feed.ErrFetchFailed)
	}
	if err != nil {
		logging.Warn("poll fetch failed", "feed", url, "err", err)
		p.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindFetchError, Comp: "poller", Feed: url, Dur: time.Since(start), Err: err.Error()})
	} else {
		p.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFetchComplete, Comp: "poller", Feed: url, Dur: time.Since(start), Count: len(doc.Items)})
	}

	if p.deliver != nil {
		p.deliver(Result{URL: url, Doc: doc, Err: err})
	}
	return err == nil
}

// State returns the current scheduling state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Ticks returns how many ticks have started.
func (p *Poller) Ticks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticks
}

// Stop disarms the poller, cancels in-flight fetches and waits for a running
// tick to return. The poller cannot be re-armed afterwards.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.state = StateIdle
	p.gen++
	p.stopTimerLocked()
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
