package corpus

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/crawler"
)

// ExtractFromReport walks the crawl report, re-extracts readable text from
// every saved HTML artifact and writes one Document per page to out. Pages
// without a raw artifact, non-HTML pages and pages with empty extractions are
// skipped. Returns the number of documents written.
func ExtractFromReport(reportPath string, out io.Writer, logger *zap.Logger) (int, error) {
	report, err := os.Open(reportPath)
	if err != nil {
		return 0, fmt.Errorf("open crawl report: %w", err)
	}
	defer func() {
		if cerr := report.Close(); cerr != nil {
			logger.Debug("close crawl report failed", zap.Error(cerr))
		}
	}()

	writer := NewWriter(out)
	written := 0
	scanner := bufio.NewScanner(report)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec crawler.CrawlRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Warn("skipping malformed report line", zap.Error(err))
			continue
		}
		if rec.SavedRaw == "" {
			continue
		}
		if class, _ := crawler.ClassifyContentType(rec.ContentType); class != crawler.ClassHTML {
			continue
		}
		doc, err := documentFromArtifact(rec)
		if err != nil {
			logger.Warn("skipping artifact", zap.String("file", rec.SavedRaw), zap.Error(err))
			continue
		}
		if doc.Text == "" {
			continue
		}
		if err := writer.Write(doc); err != nil {
			return written, err
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("scan crawl report: %w", err)
	}
	return written, nil
}

func documentFromArtifact(rec crawler.CrawlRecord) (Document, error) {
	body, err := os.ReadFile(rec.SavedRaw)
	if err != nil {
		return Document{}, fmt.Errorf("read artifact: %w", err)
	}
	doc, err := crawler.ParseHTML(body)
	if err != nil {
		return Document{}, err
	}
	text := NormalizeText(crawler.ReadableText(doc))
	sum := sha256.Sum256(body)
	return Document{
		ID:        hex.EncodeToString(sum[:]),
		URL:       rec.URL,
		Title:     rec.Title,
		Source:    "html",
		File:      rec.SavedRaw,
		Text:      text,
		WordCount: len(strings.Fields(text)),
	}, nil
}

// NormalizeText collapses all whitespace runs to single spaces and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
