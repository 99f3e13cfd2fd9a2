package crawler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestArtifactName(t *testing.T) {
	a := ArtifactName("https://example.com/docs/guide", "html")
	b := ArtifactName("https://example.com/docs/guide", "html")
	require.Equal(t, a, b, "naming must be deterministic")
	require.True(t, strings.HasPrefix(a, "docs_guide_"))
	require.True(t, strings.HasSuffix(a, ".html"))

	// Same path, different query: the short hash keeps them apart.
	c := ArtifactName("https://example.com/docs/guide?page=2", "html")
	require.NotEqual(t, a, c)

	root := ArtifactName("https://example.com/", "html")
	require.True(t, strings.HasPrefix(root, "root_"))
}

func TestArtifactNameLongURLFallsBackToHash(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("segment/", 60) + "leaf"
	name := ArtifactName(long, "html")
	require.LessOrEqual(t, len(name), maxArtifactNameLen)
	require.Regexp(t, `^[0-9a-f]{10}\.html$`, name)
}

func TestSinkSaveRaw(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSystemSink(dir, 1<<20, zap.NewNop())
	require.NoError(t, err)

	path, err := sink.SaveRaw("https://example.com/page", "html", []byte("<html></html>"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "raw"), filepath.Dir(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(body))
}

func TestSinkSaveRawRejectsOversizedBody(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSystemSink(dir, 8, zap.NewNop())
	require.NoError(t, err)

	_, err = sink.SaveRaw("https://example.com/big", "bin", []byte("way too large for the limit"))
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "raw"))
	require.NoError(t, err)
	require.Empty(t, entries, "no partial artifact may be left behind")
}

func TestSinkSaveTextAndHTMLCopy(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSystemSink(dir, 1<<20, zap.NewNop())
	require.NoError(t, err)

	txtPath, err := sink.SaveText("https://example.com/page", "hello world")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "text"), filepath.Dir(txtPath))
	require.True(t, strings.HasSuffix(txtPath, ".txt"))

	htmlPath, err := sink.SaveHTMLCopy("https://example.com/page", []byte("<p>hi</p>"))
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(htmlPath, ".html"))
}
