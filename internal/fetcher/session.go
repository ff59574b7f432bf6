package fetcher

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Session owns the pooled HTTP connections shared by every concurrent
// fetch in a crawl. It is created lazily on first use and torn down
// exactly once when the crawl ends, however it ends.
type Session struct {
	timeout  time.Duration
	poolSize int

	mu     sync.Mutex
	client *http.Client
}

// NewSession prepares a session without opening any connections. poolSize
// caps the connection pool; it is set to the crawl's concurrency limit so
// pooling never becomes the binding constraint ahead of the slot limiter.
func NewSession(timeout time.Duration, poolSize int) *Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if poolSize <= 0 {
		poolSize = 10
	}
	return &Session{timeout: timeout, poolSize: poolSize}
}

// Acquire returns the live HTTP client, creating it on first call.
// Repeated calls before Release return the same client; a call after
// Release brings up a fresh one.
func (s *Session) Acquire() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		s.client = &http.Client{
			Timeout: s.timeout,
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				MaxIdleConns:          s.poolSize,
				MaxIdleConnsPerHost:   s.poolSize,
				MaxConnsPerHost:       s.poolSize,
				IdleConnTimeout:       90 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
		}
	}
	return s.client
}

// Release tears down the connection pool. Safe to call before Acquire and
// safe to call more than once.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return
	}
	s.client.CloseIdleConnections()
	s.client = nil
}
