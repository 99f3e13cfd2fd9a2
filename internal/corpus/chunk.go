package corpus

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// ChunkOptions controls word-window chunking.
type ChunkOptions struct {
	MaxWords int
	Overlap  int
}

// Validate rejects windows that cannot make progress.
func (o ChunkOptions) Validate() error {
	if o.MaxWords <= 0 {
		return fmt.Errorf("max words must be > 0")
	}
	if o.Overlap < 0 || o.Overlap >= o.MaxWords {
		return fmt.Errorf("overlap must be in [0, max words), got %d", o.Overlap)
	}
	return nil
}

// ChunkDocument splits a document's text into overlapping word windows.
// Chunk IDs are deterministic: the same document and index always yield the
// same ID, so re-running the stage never invalidates downstream references.
func ChunkDocument(doc Document, opts ChunkOptions) []Document {
	words := strings.Fields(doc.Text)
	if len(words) == 0 {
		return nil
	}
	step := opts.MaxWords - opts.Overlap
	var chunks []Document
	for start, idx := 0, 0; start < len(words); start, idx = start+step, idx+1 {
		end := start + opts.MaxWords
		if end > len(words) {
			end = len(words)
		}
		text := strings.Join(words[start:end], " ")
		chunk := doc
		chunk.Text = text
		chunk.WordCount = end - start
		chunk.ChunkIndex = idx
		chunk.ChunkID = uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s#%d", doc.ID, idx)).String()
		chunks = append(chunks, chunk)
		if end == len(words) {
			break
		}
	}
	return chunks
}

// ChunkStream chunks every document read from r into w.
// Returns documents read and chunks written.
func ChunkStream(r io.Reader, w io.Writer, opts ChunkOptions) (int, int, error) {
	if err := opts.Validate(); err != nil {
		return 0, 0, err
	}
	writer := NewWriter(w)
	read, written := 0, 0
	err := DecodeDocuments(r, func(doc Document) error {
		read++
		for _, chunk := range ChunkDocument(doc, opts) {
			if err := writer.Write(chunk); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	return read, written, err
}
