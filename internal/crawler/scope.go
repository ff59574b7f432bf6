package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Scope decides which discovered links are eligible for traversal: those
// sharing the seed's registrable domain. Hosts without one (IP literals,
// localhost) fall back to exact host matching, port included.
type Scope struct {
	domain string
	host   string
}

// NewScope derives the crawl scope from the seed URL. The scope never
// changes during a crawl.
func NewScope(seed *url.URL) Scope {
	s := Scope{}
	if seed == nil {
		return s
	}
	s.host = strings.ToLower(seed.Host)
	if d, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(seed.Hostname())); err == nil {
		s.domain = d
	}
	return s
}

// Contains reports whether u falls inside the crawl scope.
func (s Scope) Contains(u *url.URL) bool {
	if u == nil || u.Host == "" {
		return false
	}
	if s.domain != "" {
		d, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(u.Hostname()))
		return err == nil && d == s.domain
	}
	return strings.ToLower(u.Host) == s.host
}
