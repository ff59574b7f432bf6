// Package extract turns fetched page markup into structured records and
// candidate outbound links. It holds no state and never touches the
// network; scope decisions belong to the crawler.
package extract

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Lex1797/automation-scripts/pkg/types"
)

// Extract parses body into zero or more records plus every hyperlink
// target resolved against source. A malformed item is skipped on its own;
// unparseable input degrades to no records and no links.
func Extract(body []byte, source *url.URL) ([]types.PageRecord, []*url.URL) {
	if len(body) == 0 || source == nil {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil
	}
	return extractRecords(doc, source), extractLinks(doc, source)
}

// extractRecords walks the repeating item structure: each article element
// carries a title (h2), a link (a[href]), and a summary (p).
func extractRecords(doc *goquery.Document, source *url.URL) []types.PageRecord {
	var records []types.PageRecord
	now := time.Now().UTC()

	doc.Find("article").Each(func(_ int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find("h2").First().Text())
		summary := strings.TrimSpace(item.Find("p").First().Text())
		href, ok := item.Find("a[href]").First().Attr("href")
		if title == "" || summary == "" || !ok {
			return
		}
		target, err := source.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		records = append(records, types.PageRecord{
			Title:     title,
			URL:       target.String(),
			Summary:   summary,
			SourceURL: source.String(),
			Timestamp: now,
		})
	})

	return records
}

// extractLinks collects every a[href] resolved to an absolute URL,
// regardless of domain. Fragments are dropped so anchors on the same
// page do not look like distinct URLs.
func extractLinks(doc *goquery.Document, source *url.URL) []*url.URL {
	seen := make(map[string]struct{})
	var links []*url.URL

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		u, err := source.Parse(href)
		if err != nil {
			return
		}
		u.Fragment = ""
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return
		}
		key := u.String()
		if _, exists := seen[key]; exists {
			return
		}
		seen[key] = struct{}{}
		links = append(links, u)
	})

	return links
}
