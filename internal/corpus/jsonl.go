package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

const maxLineBytes = 16 << 20

// Document is the unified corpus record handed to downstream indexing.
// Chunk fields are set only on chunked records.
type Document struct {
	ID         string `json:"id"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	Source     string `json:"source,omitempty"`
	File       string `json:"file,omitempty"`
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
	ChunkID    string `json:"chunk_id,omitempty"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

// DecodeDocuments streams JSONL documents from r, invoking fn per record.
// Blank lines are skipped; malformed lines abort with an error.
func DecodeDocuments(r io.Reader, fn func(Document) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode document at line %d: %w", line, err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan documents: %w", err)
	}
	return nil
}

// Writer emits one JSON object per line.
type Writer struct {
	enc *json.Encoder
}

// NewWriter wraps w as a JSONL document writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Write appends one document line.
func (w *Writer) Write(doc Document) error {
	if err := w.enc.Encode(doc); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}
