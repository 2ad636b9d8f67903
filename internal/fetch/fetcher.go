// Package fetch retrieves feed documents, optionally through an
// allorigins-style proxy, and parses them into feed.Document values.
//
// This is the only place in the reader that blocks on the network.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/time/rate"

	"github.com/abelbrown/rssagg/internal/feed"
	"github.com/abelbrown/rssagg/internal/logging"
)

// maxBodyBytes caps how much of a proxy or feed response is read.
const maxBodyBytes = 8 << 20

// Options configures a Fetcher.
type Options struct {
	// ProxyURL is the proxy base, e.g. https://allorigins.hexlet.app.
	// Empty means feeds are fetched directly.
	ProxyURL     string
	DisableCache bool
	Timeout      time.Duration
	// RatePerSecond limits outbound requests; <= 0 disables limiting.
	RatePerSecond float64
	UserAgent     string
	// Retries is how many times a transient failure (transport error,
	// HTTP 5xx or 429) is retried with exponential backoff. 0 disables it.
	Retries   int
	RetryWait time.Duration // first backoff interval, default 250ms
}

// Fetcher retrieves and parses feeds. Safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	proxy        *url.URL
	disableCache bool
	limiter      *rate.Limiter
	policy       *bluemonday.Policy
	userAgent    string
	retries      int
	retryWait    time.Duration
	maxBody      int64
}

var (
	errNoContents   = errors.New("malformed proxy response: no contents")
	errBodyTooLarge = errors.New("response body too large")
	errJSONFeed     = errors.New("JSON feeds are not supported")
)

// statusError is a non-2xx answer from the proxy or the upstream server.
type statusError struct {
	code     int
	upstream bool
}

func (e *statusError) Error() string {
	if e.upstream {
		return fmt.Sprintf("upstream HTTP error: %d", e.code)
	}
	return fmt.Sprintf("HTTP error: %d %s", e.code, http.StatusText(e.code))
}

// proxyEnvelope is the JSON body returned by the proxy's /get endpoint.
type proxyEnvelope struct {
	Contents *string `json:"contents"`
	Status   struct {
		URL      string `json:"url"`
		HTTPCode int    `json:"http_code"`
	} `json:"status"`
}

// NewFetcher creates a Fetcher. An unparsable ProxyURL is an error.
func NewFetcher(opts Options) (*Fetcher, error) {
	f := &Fetcher{
		client:       &http.Client{Timeout: opts.Timeout},
		disableCache: opts.DisableCache,
		limiter:      rate.NewLimiter(rate.Inf, 1),
		policy:       bluemonday.StrictPolicy(),
		userAgent:    opts.UserAgent,
		retries:      opts.Retries,
		retryWait:    opts.RetryWait,
		maxBody:      maxBodyBytes,
	}
	if f.retryWait <= 0 {
		f.retryWait = 250 * time.Millisecond
	}
	if f.userAgent == "" {
		f.userAgent = "rssagg/1.0"
	}
	if opts.RatePerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	if opts.ProxyURL != "" {
		u, err := url.Parse(strings.TrimRight(opts.ProxyURL, "/"))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid proxy url %q", opts.ProxyURL)
		}
		f.proxy = u
	}
	return f, nil
}

// Fetch retrieves target and parses it.
// Transport problems wrap feed.ErrFetchFailed; content without a
// recognizable feed root wraps feed.ErrInvalidFeedFormat.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*feed.Document, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %w", feed.ErrFetchFailed, ctx.Err())
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %w", feed.ErrFetchFailed, err)
	}

	raw, err := f.retrieveWithRetry(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", feed.ErrFetchFailed, err)
	}

	doc, err := f.parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", feed.ErrInvalidFeedFormat, err)
	}
	doc.URL = target
	return doc, nil
}

// RequestURL returns the URL actually requested for target.
func (f *Fetcher) RequestURL(target string) string {
	if f.proxy == nil {
		return target
	}
	u := *f.proxy
	u.Path = strings.TrimRight(u.Path, "/") + "/get"
	q := url.Values{}
	q.Set("url", target)
	if f.disableCache {
		q.Set("disableCache", "true")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// retrieveWithRetry retries transient failures of retrieve. Malformed proxy
// answers and client errors are returned at once.
func (f *Fetcher) retrieveWithRetry(ctx context.Context, target string) (string, error) {
	if f.retries <= 0 {
		return f.retrieve(ctx, target)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.retryWait
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 0 // bounded by retries and ctx

	var raw string
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var err error
		raw, err = f.retrieve(ctx, target)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !transient(err) {
			return backoff.Permanent(err)
		}
		if attempt <= f.retries {
			logging.Debug("retrying fetch", "url", target, "attempt", attempt, "err", err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(f.retries)), ctx))
	return raw, err
}

// transient reports whether err may go away on its own.
func transient(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	var ne net.Error
	return errors.As(err, &ne) || errors.Is(err, io.ErrUnexpectedEOF)
}

func (f *Fetcher) retrieve(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.RequestURL(target), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > f.maxBody {
		return "", fmt.Errorf("%w: over %d bytes", errBodyTooLarge, f.maxBody)
	}

	if f.proxy == nil {
		return string(body), nil
	}

	var env proxyEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("malformed proxy response: %w", err)
	}
	if env.Contents == nil {
		return "", errNoContents
	}
	if env.Status.HTTPCode >= 400 {
		return "", &statusError{code: env.Status.HTTPCode, upstream: true}
	}
	return *env.Contents, nil
}

// parse turns raw feed text into a document. gofeed decides what counts as
// a feed root (RSS or Atom); anything else, JSON Feed included, is rejected.
func (f *Fetcher) parse(raw string) (*feed.Document, error) {
	if gofeed.DetectFeedType(strings.NewReader(raw)) == gofeed.FeedTypeJSON {
		return nil, errJSONFeed
	}
	// gofeed parsers keep per-parse state, one per call.
	parsed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return nil, err
	}

	doc := &feed.Document{
		Title:       text(parsed.Title),
		Description: f.description(parsed.Description),
		Items:       make([]feed.Item, 0, len(parsed.Items)),
	}
	for _, it := range parsed.Items {
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}
		desc := f.description(it.Description)
		if desc == "" {
			desc = f.stripHTML(it.Content)
		}
		doc.Items = append(doc.Items, feed.Item{
			Title:       text(it.Title),
			Link:        link,
			Description: desc,
		})
	}
	return doc, nil
}

// text collapses runs of whitespace. gofeed has already decoded entities, so
// "&lt;vector&gt;" arrives here as "<vector>" and is kept as written.
func text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// description keeps plain text verbatim and strips markup only when s carries
// real HTML elements.
func (f *Fetcher) description(s string) string {
	if hasMarkup(s) {
		return f.stripHTML(s)
	}
	return text(s)
}

func (f *Fetcher) stripHTML(s string) string {
	if s == "" {
		return ""
	}
	return text(nethtml.UnescapeString(f.policy.Sanitize(s)))
}

// markupElements are the elements that mark a description as HTML. Angle
// brackets around anything else ("<T>", "<vector>") are treated as text.
var markupElements = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Blockquote: true,
	atom.Br: true, atom.Code: true, atom.Div: true, atom.Em: true,
	atom.Figure: true, atom.Figcaption: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Hr: true, atom.I: true, atom.Iframe: true, atom.Img: true,
	atom.Li: true, atom.Ol: true, atom.P: true, atom.Pre: true,
	atom.Small: true, atom.Span: true, atom.Strong: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.U: true,
	atom.Ul: true, atom.Video: true,
}

func hasMarkup(s string) bool {
	if !strings.ContainsRune(s, '<') {
		return false
	}
	z := nethtml.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return false
		case nethtml.StartTagToken, nethtml.EndTagToken, nethtml.SelfClosingTagToken:
			name, _ := z.TagName()
			if markupElements[atom.Lookup(name)] {
				return true
			}
		}
	}
}
