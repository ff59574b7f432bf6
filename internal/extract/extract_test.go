package extract

import (
	"net/url"
	"testing"
)

func source(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func linkSet(links []*url.URL) map[string]bool {
	set := make(map[string]bool, len(links))
	for _, u := range links {
		set[u.String()] = true
	}
	return set
}

func TestExtractRecordsFromWellFormedItems(t *testing.T) {
	body := []byte(`<html><body>
		<article>
			<h2> Breaking News </h2>
			<a href="/stories/1">read more</a>
			<p> Something happened. </p>
		</article>
		<article>
			<h2>Second Story</h2>
			<a href="https://example.com/stories/2">read</a>
			<p>More happened.</p>
		</article>
	</body></html>`)

	records, _ := Extract(body, source(t, "https://example.com/news"))
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "Breaking News" {
		t.Errorf("title = %q, whitespace should be trimmed", first.Title)
	}
	if first.URL != "https://example.com/stories/1" {
		t.Errorf("relative link not resolved: %q", first.URL)
	}
	if first.Summary != "Something happened." {
		t.Errorf("summary = %q", first.Summary)
	}
	if first.SourceURL != "https://example.com/news" {
		t.Errorf("source url = %q", first.SourceURL)
	}
	if first.Timestamp.IsZero() {
		t.Error("timestamp should be set at extraction time")
	}
}

func TestExtractSkipsMalformedItemsIndividually(t *testing.T) {
	body := []byte(`<html><body>
		<article><h2>No link</h2><p>summary</p></article>
		<article><a href="/x">No title</a><p>summary</p></article>
		<article><h2>No summary</h2><a href="/y">link</a></article>
		<article><h2>Complete</h2><a href="/z">link</a><p>summary</p></article>
	</body></html>`)

	records, _ := Extract(body, source(t, "https://example.com/"))
	if len(records) != 1 {
		t.Fatalf("expected only the complete item, got %d records", len(records))
	}
	if records[0].Title != "Complete" {
		t.Errorf("kept the wrong item: %q", records[0].Title)
	}
}

func TestExtractLinks(t *testing.T) {
	body := []byte(`<html><body>
		<a href="/relative">rel</a>
		<a href="https://example.com/absolute">abs</a>
		<a href="https://other.org/external">ext</a>
		<a href="/relative">duplicate</a>
		<a href="/page#section">fragment</a>
		<a href="/page">same after fragment strip</a>
		<a href="mailto:x@example.com">mail</a>
		<a href="javascript:void(0)">js</a>
		<a href="ftp://example.com/file">ftp</a>
		<a href="">empty</a>
	</body></html>`)

	_, links := Extract(body, source(t, "https://example.com/news/today"))
	set := linkSet(links)

	want := []string{
		"https://example.com/relative",
		"https://example.com/absolute",
		"https://other.org/external",
		"https://example.com/page",
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(links), set)
	}
	for _, w := range want {
		if !set[w] {
			t.Errorf("missing link %s", w)
		}
	}
}

func TestExtractKeepsExternalLinksForCallerToFilter(t *testing.T) {
	body := []byte(`<a href="https://elsewhere.net/">out</a>`)
	_, links := Extract(body, source(t, "https://example.com/"))
	if len(links) != 1 || links[0].Host != "elsewhere.net" {
		t.Fatalf("extractor must not filter by domain, got %v", links)
	}
}

func TestExtractDegradesGracefully(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"empty body", nil},
		{"not html", []byte("just some text, no markup")},
		{"broken markup", []byte("<html><body><article><h2>half open")},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			records, links := Extract(tt.body, source(t, "https://example.com/"))
			if len(records) != 0 {
				t.Errorf("expected no records, got %d", len(records))
			}
			if len(links) != 0 {
				t.Errorf("expected no links, got %d", len(links))
			}
		})
	}
}

func TestExtractNilSource(t *testing.T) {
	records, links := Extract([]byte("<a href='/x'>x</a>"), nil)
	if records != nil || links != nil {
		t.Error("nil source should yield nothing")
	}
}
