package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
)

// DedupOptions controls exact text deduplication.
type DedupOptions struct {
	// Normalize lowercases and collapses whitespace before hashing.
	Normalize bool
	// HashPrefix limits hashing to the first N bytes of the text; zero hashes
	// the whole text.
	HashPrefix int
}

// DedupStream copies documents from r to w, dropping any whose text hash was
// already seen. Returns kept and dropped counts.
func DedupStream(r io.Reader, w io.Writer, opts DedupOptions) (int, int, error) {
	writer := NewWriter(w)
	seen := make(map[string]struct{})
	kept, dropped := 0, 0
	err := DecodeDocuments(r, func(doc Document) error {
		key := textHash(doc.Text, opts)
		if _, dup := seen[key]; dup {
			dropped++
			return nil
		}
		seen[key] = struct{}{}
		if err := writer.Write(doc); err != nil {
			return err
		}
		kept++
		return nil
	})
	return kept, dropped, err
}

func textHash(text string, opts DedupOptions) string {
	if opts.Normalize {
		text = strings.ToLower(NormalizeText(text))
	}
	if opts.HashPrefix > 0 && len(text) > opts.HashPrefix {
		text = text[:opts.HashPrefix]
	}
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
