package types

import "time"

// PageRecord is one item extracted from a fetched page. Records are
// immutable once created; the crawl result owns them afterwards.
type PageRecord struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	SourceURL string    `json:"source_url"`
	Timestamp time.Time `json:"timestamp"`
}

// CrawlResult aggregates everything a crawl produced. It grows while the
// crawl runs and is read-only once the crawl halts.
type CrawlResult struct {
	Records      []PageRecord `json:"records"`
	PagesFetched int          `json:"pages_fetched"`
}

// FetchOutcome classifies the result of a single fetch attempt.
type FetchOutcome int

const (
	// OutcomeFetched means the URL returned 200 and a body was read.
	OutcomeFetched FetchOutcome = iota
	// OutcomeSkipped means the URL was already claimed; no network call
	// was made.
	OutcomeSkipped
	// OutcomeFailed means a non-200 status, timeout, or transport error.
	// The URL is forfeit for the rest of the run.
	OutcomeFailed
)

// String returns a short label for logging.
func (o FetchOutcome) String() string {
	switch o {
	case OutcomeFetched:
		return "fetched"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult carries the outcome of one fetch attempt.
type FetchResult struct {
	Outcome    FetchOutcome
	Body       []byte
	StatusCode int
	Err        error
}
