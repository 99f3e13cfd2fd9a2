package crawler

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Reporter appends one JSON object per line to the crawl report. Every record
// is synced to disk before Append returns, so an interrupted run always
// leaves a valid, replayable log.
type Reporter struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewReporter opens (truncating) the report file at path.
func NewReporter(path string) (*Reporter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", path, err)
	}
	return &Reporter{f: f, path: path}, nil
}

// Append marshals the record, writes it as one line and syncs.
func (r *Reporter) Append(rec CrawlRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal crawl record: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("append crawl record: %w", err)
	}
	if err := r.f.Sync(); err != nil {
		return fmt.Errorf("sync crawl report: %w", err)
	}
	return nil
}

// Path returns the report file location.
func (r *Reporter) Path() string {
	return r.path
}

// Close closes the underlying stream.
func (r *Reporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("close crawl report: %w", err)
	}
	return nil
}
