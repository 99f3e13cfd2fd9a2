package crawler

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const maxArtifactNameLen = 200

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileSystemSink persists raw bodies under raw/ and extracted companions
// under text/, using deterministic collision-resistant names.
type FileSystemSink struct {
	rawDir   string
	textDir  string
	maxBytes int64
	logger   *zap.Logger
}

// NewFileSystemSink creates the raw/ and text/ directories under root.
func NewFileSystemSink(root string, maxBytes int64, logger *zap.Logger) (*FileSystemSink, error) {
	rawDir := filepath.Join(root, "raw")
	textDir := filepath.Join(root, "text")
	for _, dir := range []string{rawDir, textDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create sink dir %s: %w", dir, err)
		}
	}
	return &FileSystemSink{
		rawDir:   rawDir,
		textDir:  textDir,
		maxBytes: maxBytes,
		logger:   logger,
	}, nil
}

// SaveRaw writes the response body for rawURL and returns the artifact path.
func (s *FileSystemSink) SaveRaw(rawURL, ext string, body []byte) (string, error) {
	if int64(len(body)) > s.maxBytes {
		return "", fmt.Errorf("body size %d exceeds max %d", len(body), s.maxBytes)
	}
	target := filepath.Join(s.rawDir, ArtifactName(rawURL, ext))
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return "", fmt.Errorf("write raw artifact %s: %w", target, err)
	}
	return target, nil
}

// SaveText writes extracted readable text as the .txt companion for rawURL.
func (s *FileSystemSink) SaveText(rawURL, text string) (string, error) {
	target := filepath.Join(s.textDir, ArtifactName(rawURL, "txt"))
	if err := os.WriteFile(target, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("write text artifact %s: %w", target, err)
	}
	return target, nil
}

// SaveHTMLCopy re-saves the HTML body under text/ with an .html extension.
func (s *FileSystemSink) SaveHTMLCopy(rawURL string, body []byte) (string, error) {
	target := filepath.Join(s.textDir, ArtifactName(rawURL, "html"))
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return "", fmt.Errorf("write html artifact %s: %w", target, err)
	}
	return target, nil
}

// ArtifactName derives the deterministic file name for a URL: the sanitized
// URL path plus a short hash of the full URL. Distinct URLs never collide
// because the hash covers the whole URL including the query. Overly long
// names fall back to hash-only naming.
func ArtifactName(rawURL, ext string) string {
	hash := hashURL(rawURL)[:10]
	base := "root"
	if u, err := url.Parse(rawURL); err == nil {
		p := strings.Trim(u.EscapedPath(), "/")
		p = strings.ReplaceAll(p, "/", "_")
		p = invalidFilenameChars.ReplaceAllString(p, "_")
		if p != "" {
			base = p
		}
	}
	name := fmt.Sprintf("%s_%s.%s", base, hash, ext)
	if len(name) > maxArtifactNameLen {
		name = fmt.Sprintf("%s.%s", hash, ext)
	}
	return name
}
