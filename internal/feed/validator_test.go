package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type lookupSet map[string]bool

func (l lookupSet) HasFeed(url string) bool { return l[url] }

func TestValidatorCheck(t *testing.T) {
	v := NewValidator(lookupSet{"https://tracked.example/rss": true})

	tests := []struct {
		name    string
		raw     string
		wantURL string
		want    Verdict
	}{
		{name: "empty", raw: "", want: VerdictEmpty},
		{name: "whitespace only", raw: "   \t", want: VerdictEmpty},
		{name: "plain word", raw: "hello", wantURL: "hello", want: VerdictInvalidURL},
		{name: "missing scheme", raw: "example.com/rss", wantURL: "example.com/rss", want: VerdictInvalidURL},
		{name: "opaque", raw: "mailto:someone@example.com", wantURL: "mailto:someone@example.com", want: VerdictInvalidURL},
		{name: "accepted", raw: "https://lorem-rss.hexlet.app/feed", wantURL: "https://lorem-rss.hexlet.app/feed", want: VerdictAccepted},
		{name: "trimmed", raw: "  https://example.com/rss \n", wantURL: "https://example.com/rss", want: VerdictAccepted},
		{name: "tracked", raw: "https://tracked.example/rss", wantURL: "https://tracked.example/rss", want: VerdictAlreadyTracked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, got := v.Check(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantURL, url)
		})
	}
}

func TestValidatorIsPure(t *testing.T) {
	tracked := lookupSet{}
	v := NewValidator(tracked)

	_, first := v.Check("https://example.com/rss")
	_, second := v.Check("https://example.com/rss")
	assert.Equal(t, VerdictAccepted, first)
	assert.Equal(t, first, second, "checking twice must not register anything")
}

func TestVerdictErr(t *testing.T) {
	assert.ErrorIs(t, VerdictInvalidURL.Err(), ErrInvalidURL)
	assert.ErrorIs(t, VerdictAlreadyTracked.Err(), ErrAlreadyTracked)
	assert.NoError(t, VerdictAccepted.Err())
	assert.NoError(t, VerdictEmpty.Err())
}
