package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// pagesProcessedTotal counts pages that reached the Processed state.
	pagesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawler_pages_processed_total",
		Help: "The total number of pages fetched, persisted and reported.",
	})
	// robotsSkipsTotal counts URLs skipped because robots rules disallow them.
	robotsSkipsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawler_robots_skips_total",
		Help: "The total number of URLs skipped due to robots directives.",
	})
	// fetchErrorsTotal counts URLs whose fetch ended in an error record.
	fetchErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawler_fetch_errors_total",
		Help: "The total number of failed page fetches.",
	})
	// fetchesTotal counts individual HTTP fetch attempts, retries included.
	fetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawler_fetches_total",
		Help: "The total number of HTTP fetch attempts sent.",
	})
	// fetchRetriesTotal counts backoff retries on retryable statuses.
	fetchRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sitecrawler_fetch_retries_total",
		Help: "The total number of fetch retries after retryable statuses.",
	})
)
