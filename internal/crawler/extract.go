package crawler

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses an HTML body into a goquery document.
func ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// Title returns the trimmed document title, or empty.
func Title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// ReadableText extracts readable text with a fixed priority: paragraphs
// inside the first article element, then all document paragraphs, then the
// full visible text as a last resort. Returns empty when nothing was found.
// The last-resort branch mutates the document (script/style removal), so
// callers must extract links before calling this.
func ReadableText(doc *goquery.Document) string {
	if article := doc.Find("article").First(); article.Length() > 0 {
		if text := joinParagraphs(article.Find("p")); text != "" {
			return text
		}
	}
	if text := joinParagraphs(doc.Find("p")); text != "" {
		return text
	}
	doc.Find("script, style, noscript").Remove()
	return collapseLines(doc.Find("body").Text())
}

func joinParagraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n\n")
}

func collapseLines(raw string) string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ExtractLinks collects anchor targets, resolves them against base and
// canonicalizes each. Unparseable and non-http(s) targets are dropped.
// The result preserves document order and holds no duplicates.
func ExtractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		canon, err := canonicalizeParsed(base.ResolveReference(ref))
		if err != nil {
			return
		}
		if _, dup := seen[canon]; dup {
			return
		}
		seen[canon] = struct{}{}
		links = append(links, canon)
	})
	return links
}

func hashURL(raw string) string {
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
