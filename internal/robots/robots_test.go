package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lex1797/automation-scripts/internal/config"
	"github.com/Lex1797/automation-scripts/internal/fetcher"
)

func testSession(t *testing.T) *fetcher.Session {
	t.Helper()
	s := fetcher.NewSession(5*time.Second, 2)
	t.Cleanup(s.Release)
	return s
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestAllowedWithRespectDisabled(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	agent := NewAgent(config.RobotsConfig{Respect: false}, testSession(t))
	if !agent.Allowed(context.Background(), mustURL(t, srv.URL+"/private/page")) {
		t.Error("disabled agent must allow every URL")
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("disabled agent issued %d requests, want 0", n)
	}
}

func TestAllowedEnforcesDisallowRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	cfg := config.RobotsConfig{
		Respect:   true,
		UserAgent: "autoscripts-bot/1.0",
		CacheTTL:  config.DurationFrom(time.Minute),
	}
	agent := NewAgent(cfg, testSession(t))
	ctx := context.Background()

	if agent.Allowed(ctx, mustURL(t, srv.URL+"/private/secret")) {
		t.Error("disallowed path was permitted")
	}
	if !agent.Allowed(ctx, mustURL(t, srv.URL+"/public/page")) {
		t.Error("allowed path was blocked")
	}
}

func TestAllowedCachesPerHost(t *testing.T) {
	var robotsFetches atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetches.Add(1)
			w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
		}
	}))
	defer srv.Close()

	cfg := config.RobotsConfig{
		Respect:   true,
		UserAgent: "autoscripts-bot/1.0",
		CacheTTL:  config.DurationFrom(time.Minute),
	}
	agent := NewAgent(cfg, testSession(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		agent.Allowed(ctx, mustURL(t, srv.URL+"/page"))
	}
	if n := robotsFetches.Load(); n != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", n)
	}
}

func TestAllowedFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := config.RobotsConfig{
		Respect:   true,
		UserAgent: "autoscripts-bot/1.0",
	}
	agent := NewAgent(cfg, testSession(t))

	if !agent.Allowed(context.Background(), mustURL(t, srv.URL+"/anything")) {
		t.Error("robots error must fail open")
	}
}

func TestAllowedHonoursOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /\n"))
	}))
	defer srv.Close()

	host := mustURL(t, srv.URL).Hostname()
	cfg := config.RobotsConfig{
		Respect:   true,
		UserAgent: "autoscripts-bot/1.0",
		Overrides: []string{host},
	}
	agent := NewAgent(cfg, testSession(t))

	if !agent.Allowed(context.Background(), mustURL(t, srv.URL+"/private")) {
		t.Error("override host must bypass robots rules")
	}
}

func TestAllowedRejectsUnusableURLs(t *testing.T) {
	agent := NewAgent(config.RobotsConfig{}, nil)
	ctx := context.Background()

	if agent.Allowed(ctx, nil) {
		t.Error("nil URL must be rejected")
	}
	if agent.Allowed(ctx, mustURL(t, "/relative/only")) {
		t.Error("relative URL must be rejected")
	}
}
