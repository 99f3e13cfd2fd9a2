// Package crawler implements the single-domain breadth-first crawl engine:
// robots policy, retried fetching, artifact persistence, link extraction and
// the append-only crawl report.
package crawler

import (
	"net/http"
	"time"
)

// ContentClass buckets a response by Content-Type and drives persistence
// and extraction branching.
type ContentClass string

// Content classes recognized by the fetcher.
const (
	ClassHTML   ContentClass = "html"
	ClassPDF    ContentClass = "pdf"
	ClassText   ContentClass = "text"
	ClassImage  ContentClass = "image"
	ClassBinary ContentClass = "binary"
)

// Status tags for non-HTTP outcomes in the crawl report.
const (
	StatusDisallowed = "disallowed_by_robots"
	StatusError      = "error"
)

// FrontierEntry pairs a canonical URL with its BFS depth from the seed.
type FrontierEntry struct {
	URL   string
	Depth int
}

// FetchResponse is the result of a successful page fetch, after retries.
type FetchResponse struct {
	URL         string
	FinalURL    string
	StatusCode  int
	Headers     http.Header
	Body        []byte
	ContentType string
	Class       ContentClass
	Ext         string
	Duration    time.Duration
}

// CrawlRecord is appended to the report for every dequeued URL that reached a
// terminal state. Status holds the HTTP code rendered as a string, or one of
// the skip/error tags.
type CrawlRecord struct {
	URL         string `json:"url"`
	Status      string `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	SavedRaw    string `json:"saved_raw,omitempty"`
	SavedText   string `json:"saved_text,omitempty"`
	Title       string `json:"title,omitempty"`
	Depth       int    `json:"depth"`
	Error       string `json:"error,omitempty"`
}
