package crawler

import (
	"net/url"
	"strings"
	"sync"
)

// VisitedSet tracks URLs already fetched or claimed for fetching. A URL
// enters at most once; TryClaim is the single atomic check-and-insert
// step that keeps concurrent fetch attempts from duplicating work.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet returns an empty visited set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// TryClaim inserts the URL and reports whether this caller won the claim.
// A false return means some earlier claim (fetched or in flight) owns it.
func (v *VisitedSet) TryClaim(raw string) bool {
	key := canonicalKey(raw)
	if key == "" {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// Seen reports membership without claiming.
func (v *VisitedSet) Seen(raw string) bool {
	key := canonicalKey(raw)
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[key]
	return ok
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}

// canonicalKey normalises a URL so trivially different spellings of the
// same page share one visited entry.
func canonicalKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "http"
	}
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && port != defaultPortForScheme(scheme) {
		host = host + ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	key := scheme + "://" + host + path
	if q := u.RawQuery; q != "" {
		key += "?" + q
	}
	return key
}

func defaultPortForScheme(scheme string) string {
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	default:
		return ""
	}
}
