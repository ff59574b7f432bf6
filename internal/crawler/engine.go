// Package crawler drives a bounded, polite, same-domain traversal of a
// link graph: an explicit breadth-first frontier drained in concurrent
// batches, a visited set guaranteeing at-most-one fetch per URL, and a
// page budget measured against completed work.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Lex1797/automation-scripts/internal/config"
	"github.com/Lex1797/automation-scripts/internal/extract"
	"github.com/Lex1797/automation-scripts/internal/fetcher"
	"github.com/Lex1797/automation-scripts/internal/robots"
	"github.com/Lex1797/automation-scripts/pkg/types"
)

// Engine owns the crawl state. Per-URL failures never stop the crawl;
// only configuration and session-lifecycle problems reach the caller.
type Engine struct {
	cfg     config.ScrapeConfig
	seed    *url.URL
	scope   Scope
	session *fetcher.Session
	fetcher *fetcher.Fetcher
	robots  *robots.Agent
	limiter *HostLimiter

	visited  *VisitedSet
	frontier *Frontier

	mu      sync.Mutex
	records []types.PageRecord
	pages   int

	logger *slog.Logger
}

// New validates the configuration and wires up a crawl. No network
// activity happens here; the session opens lazily on the first fetch.
func New(cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	seed, err := url.Parse(cfg.Scrape.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	visited := NewVisitedSet()
	session := fetcher.NewSession(cfg.Scrape.RequestTimeout.Duration, cfg.Scrape.MaxConcurrent)

	f, err := fetcher.New(session, visited, fetcher.Options{
		UserAgent:     cfg.Scrape.UserAgent,
		MaxConcurrent: cfg.Scrape.MaxConcurrent,
		RequestDelay:  cfg.Scrape.RequestDelay.Duration,
		Timeout:       cfg.Scrape.RequestTimeout.Duration,
		MaxBodyBytes:  cfg.Scrape.MaxBodyBytes,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build fetcher: %w", err)
	}

	return &Engine{
		cfg:      cfg.Scrape,
		seed:     seed,
		scope:    NewScope(seed),
		session:  session,
		fetcher:  f,
		robots:   robots.NewAgent(cfg.Robots, session),
		limiter:  NewHostLimiter(cfg.Scrape.RateLimitPerHost.Requests, cfg.Scrape.RateLimitPerHost.Window.Duration),
		visited:  visited,
		frontier: NewFrontier(),
		logger:   logger,
	}, nil
}

// Run executes the crawl until the frontier empties, the page budget is
// reached, or the context is cancelled. The session is released exactly
// once on every exit path. Records gathered before a cancellation are
// still returned alongside the context error.
func (e *Engine) Run(ctx context.Context) (*types.CrawlResult, error) {
	defer e.session.Release()

	e.frontier.Push(e.seed)

	for {
		if err := ctx.Err(); err != nil {
			return e.snapshot(), err
		}

		e.mu.Lock()
		remaining := e.cfg.MaxPages - e.pages
		e.mu.Unlock()
		if remaining <= 0 {
			break
		}

		// The batch never exceeds the remaining budget, so completed
		// pages can land exactly on the cap but never past it.
		batch := e.frontier.PopBatch(remaining)
		if len(batch) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, u := range batch {
			u := u
			g.Go(func() error {
				e.handle(gctx, u)
				return nil
			})
		}
		g.Wait()
	}

	result := e.snapshot()
	e.logger.Info("crawl finished",
		"pages_fetched", result.PagesFetched,
		"records", len(result.Records),
		"frontier_left", e.frontier.Len(),
	)
	return result, nil
}

// handle processes one frontier entry end to end. Every failure mode
// here is logged and swallowed.
func (e *Engine) handle(ctx context.Context, u *url.URL) {
	if ctx.Err() != nil {
		return
	}

	if !e.robots.Allowed(ctx, u) {
		e.logger.Debug("blocked by robots", "url", u.String())
		return
	}

	if err := e.limiter.Wait(ctx, u.Hostname()); err != nil {
		e.logger.Warn("rate limiter interrupted", "url", u.String(), "error", err)
		return
	}

	res := e.fetcher.Fetch(ctx, u)
	switch res.Outcome {
	case types.OutcomeSkipped:
		return
	case types.OutcomeFailed:
		e.logger.Warn("fetch failed", "url", u.String(), "status", res.StatusCode, "error", res.Err)
		return
	}

	records, links := extract.Extract(res.Body, u)

	e.mu.Lock()
	e.records = append(e.records, records...)
	e.pages++
	e.mu.Unlock()

	enqueued := 0
	for _, link := range links {
		if !e.scope.Contains(link) {
			continue
		}
		if e.visited.Seen(link.String()) {
			continue
		}
		if e.frontier.Push(link) {
			enqueued++
		}
	}

	e.logger.Info("scraped page", "url", u.String(), "items", len(records), "new_links", enqueued)
}

// snapshot copies the accumulated state into a read-only result.
func (e *Engine) snapshot() *types.CrawlResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	records := make([]types.PageRecord, len(e.records))
	copy(records, e.records)
	return &types.CrawlResult{Records: records, PagesFetched: e.pages}
}
