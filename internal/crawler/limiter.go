package crawler

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter applies an optional token-bucket rate limit per host, on
// top of the fixed politeness delay the fetcher already enforces.
type HostLimiter struct {
	interval time.Duration
	burst    int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostLimiter builds a limiter allowing `requests` per `window` for
// each host. Non-positive settings disable it.
func NewHostLimiter(requests int, window time.Duration) *HostLimiter {
	if requests <= 0 || window <= 0 {
		return &HostLimiter{}
	}
	interval := window / time.Duration(requests)
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &HostLimiter{
		interval: interval,
		burst:    requests,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until the host's bucket has a token, or the context ends.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	if h == nil || h.limiters == nil || host == "" {
		return nil
	}
	host = strings.ToLower(host)

	h.mu.Lock()
	limiter, ok := h.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(h.interval), h.burst)
		h.limiters[host] = limiter
	}
	h.mu.Unlock()

	return limiter.Wait(ctx)
}
