package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/sync/semaphore"

	"github.com/Lex1797/automation-scripts/pkg/types"
)

// Claimer records URLs as seen. TryClaim must be atomic with respect to
// concurrent callers: exactly one caller wins any given URL.
type Claimer interface {
	TryClaim(url string) bool
}

// Options controls HTTP fetching behaviour.
type Options struct {
	UserAgent     string
	MaxConcurrent int
	RequestDelay  time.Duration
	Timeout       time.Duration
	MaxBodyBytes  int64
}

// Fetcher performs one HTTP GET per call. It deduplicates by URL through
// the shared claimer, bounds simultaneous requests with a slot limiter,
// and pauses after each successful fetch for politeness.
type Fetcher struct {
	session      *Session
	slots        *semaphore.Weighted
	visited      Claimer
	userAgent    string
	delay        time.Duration
	maxBodyBytes int64
	logger       *slog.Logger
}

// New constructs a Fetcher sharing the given session and claimer.
func New(session *Session, visited Claimer, opts Options, logger *slog.Logger) (*Fetcher, error) {
	if session == nil {
		return nil, errors.New("fetcher requires a session")
	}
	if visited == nil {
		return nil, errors.New("fetcher requires a visited-set claimer")
	}
	if opts.MaxConcurrent < 1 {
		return nil, fmt.Errorf("max concurrent fetches must be >= 1 (got %d)", opts.MaxConcurrent)
	}
	if opts.RequestDelay < 0 {
		return nil, fmt.Errorf("request delay must be >= 0 (got %s)", opts.RequestDelay)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 6 * 1024 * 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		session:      session,
		slots:        semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		visited:      visited,
		userAgent:    opts.UserAgent,
		delay:        opts.RequestDelay,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       logger,
	}, nil
}

// Session exposes the underlying session, eg. so the robots agent can
// reuse the same connection pool.
func (f *Fetcher) Session() *Session {
	return f.session
}

// Fetch retrieves one URL. A URL already claimed comes back Skipped with
// no network call. A non-200 status, timeout, or transport error comes
// back Failed; the URL stays claimed and is never retried. The slot is
// released on every exit path.
func (f *Fetcher) Fetch(ctx context.Context, u *url.URL) types.FetchResult {
	if u == nil {
		return types.FetchResult{Outcome: types.OutcomeFailed, Err: errors.New("nil URL")}
	}
	target := u.String()

	if !f.visited.TryClaim(target) {
		return types.FetchResult{Outcome: types.OutcomeSkipped}
	}

	if err := f.slots.Acquire(ctx, 1); err != nil {
		return types.FetchResult{Outcome: types.OutcomeFailed, Err: fmt.Errorf("acquire fetch slot: %w", err)}
	}
	defer f.slots.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return types.FetchResult{Outcome: types.OutcomeFailed, Err: fmt.Errorf("build request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.session.Acquire().Do(req)
	if err != nil {
		return types.FetchResult{Outcome: types.OutcomeFailed, Err: fmt.Errorf("http fetch failed: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return types.FetchResult{
			Outcome:    types.OutcomeFailed,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return types.FetchResult{Outcome: types.OutcomeFailed, StatusCode: resp.StatusCode, Err: err}
	}

	f.sleep(ctx)

	return types.FetchResult{Outcome: types.OutcomeFetched, Body: body, StatusCode: resp.StatusCode}
}

// sleep applies the politeness delay while still holding the fetch slot,
// so the delay also throttles slot turnover.
func (f *Fetcher) sleep(ctx context.Context) {
	if f.delay <= 0 {
		return
	}
	timer := time.NewTimer(f.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	if resp == nil || resp.Body == nil {
		return nil, errors.New("empty response body")
	}

	reader := io.Reader(resp.Body)
	closers := []io.Closer{resp.Body}

	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	limited := io.LimitReader(reader, f.maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", f.maxBodyBytes)
	}
	return body, nil
}
