package otel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counts(events []Event) []int {
	out := make([]int, len(events))
	for i, e := range events {
		out[i] = e.Count
	}
	return out
}

func TestLastOldestFirst(t *testing.T) {
	r := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		r.Push(Event{Kind: KindFetchStart, Count: i})
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, counts(r.Last(8)))
	assert.Equal(t, []int{2, 3, 4}, counts(r.Last(3)))
}

func TestWrapAroundEvictsOldest(t *testing.T) {
	r := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		r.Push(Event{Kind: KindFetchStart, Count: i})
	}

	assert.Equal(t, []int{2, 3, 4, 5}, counts(r.Last(10)))
	assert.Equal(t, []int{4, 5}, counts(r.Last(2)))
	assert.Equal(t, 4, r.Len())
}

func TestLastEmptyAndNonPositive(t *testing.T) {
	r := NewRingBuffer(8)
	assert.Nil(t, r.Last(3))

	r.Push(Event{Kind: KindStartup})
	assert.Nil(t, r.Last(0))
	assert.Nil(t, r.Last(-1))
}

func TestTotalsSurviveWraparound(t *testing.T) {
	r := NewRingBuffer(2)
	for i := 0; i < 5; i++ {
		r.Push(Event{Kind: KindPollTick})
	}
	r.Push(Event{Kind: KindFetchError})

	totals := r.Totals()
	assert.Equal(t, 5, totals[KindPollTick])
	assert.Equal(t, 1, totals[KindFetchError])
	assert.Equal(t, 2, r.Len())

	// The returned map is a copy.
	totals[KindPollTick] = 0
	assert.Equal(t, 5, r.Totals()[KindPollTick])
}

func TestExtraIsCopied(t *testing.T) {
	r := NewRingBuffer(4)
	extra := map[string]any{"tick": 1}
	r.Push(Event{Kind: KindPollTick, Extra: extra})

	extra["tick"] = 2

	last := r.Last(1)
	require.Len(t, last, 1)
	assert.Equal(t, 1, last[0].Extra["tick"])
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 64, NewRingBuffer(64).Cap())
	assert.Equal(t, DefaultRingSize, NewRingBuffer(0).Cap())
	assert.Equal(t, DefaultRingSize, NewRingBuffer(-3).Cap())
}

func TestConcurrentPushAndRead(t *testing.T) {
	r := NewRingBuffer(256)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Push(Event{Kind: KindFetchStart})
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Last(10)
				_ = r.Totals()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, r.Totals()[KindFetchStart])
	assert.Equal(t, 256, r.Len())
}

func TestLoggerFeedsRingBuffer(t *testing.T) {
	r := NewRingBuffer(16)
	l := NewNullLogger()
	l.SetRingBuffer(r)

	l.Emit(Event{Kind: KindSubmitAccepted, Feed: "https://example.com/rss"})
	l.Emit(Event{Kind: KindStatus, Status: "valid"})
	l.Close()

	last := r.Last(2)
	require.Len(t, last, 2)
	assert.Equal(t, KindSubmitAccepted, last[0].Kind)
	assert.Equal(t, KindStatus, last[1].Kind)
	assert.NotEmpty(t, last[0].SessionID)
}
