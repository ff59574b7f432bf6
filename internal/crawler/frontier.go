package crawler

import (
	"net/url"
	"sync"
)

// Frontier is the ordered queue of discovered-but-unfetched URLs. Pushes
// append, pops come off the front, so traversal is breadth-first.
type Frontier struct {
	mu     sync.Mutex
	queue  []*url.URL
	member map[string]struct{}
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{member: make(map[string]struct{})}
}

// Push enqueues a URL unless it is already waiting. It reports whether
// the URL was added.
func (f *Frontier) Push(u *url.URL) bool {
	if u == nil {
		return false
	}
	key := u.String()
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.member[key]; ok {
		return false
	}
	f.member[key] = struct{}{}
	f.queue = append(f.queue, u)
	return true
}

// PopBatch removes and returns up to n URLs from the front of the queue.
func (f *Frontier) PopBatch(n int) []*url.URL {
	if n <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n > len(f.queue) {
		n = len(f.queue)
	}
	if n == 0 {
		return nil
	}
	batch := make([]*url.URL, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]
	for _, u := range batch {
		delete(f.member, u.String())
	}
	return batch
}

// Len returns the number of URLs waiting.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
