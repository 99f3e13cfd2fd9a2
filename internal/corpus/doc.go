// Package corpus turns a finished crawl into downstream-ready JSONL corpora:
// readable-text documents derived from the crawl report, word-window chunks,
// and an exact-hash deduplicated stream.
package corpus
