package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/config"
)

func testHTTPConfig(retries int) config.HTTPConfig {
	return config.HTTPConfig{
		Timeout:        5 * time.Second,
		RobotsTimeout:  time.Second,
		MaxRetries:     retries,
		BackoffInitial: time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
		MaxPageBytes:   1 << 20,
	}
}

func TestFetchRetriesUntilSuccess(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(testHTTPConfig(3), "test-agent", zap.NewNop())
	resp, err := fetcher.Fetch(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, ClassHTML, resp.Class)
	require.Contains(t, string(resp.Body), "ok")
	require.Equal(t, int32(3), hits.Load(), "two 503s then a 200 means exactly three attempts")
}

func TestFetchExhaustedRetriesReturnsLastStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(testHTTPConfig(2), "test-agent", zap.NewNop())
	resp, err := fetcher.Fetch(context.Background(), srv.URL+"/down")
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, int32(3), hits.Load(), "initial attempt plus two retries")
}

func TestFetchDoesNotRetryOtherStatuses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(testHTTPConfig(3), "test-agent", zap.NewNop())
	resp, err := fetcher.Fetch(context.Background(), srv.URL+"/missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, int32(1), hits.Load(), "4xx other than 429 must not be retried")
}

func TestFetchSendsUserAgent(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fetcher := NewCollyFetcher(testHTTPConfig(0), "corpus-bot/2.0", zap.NewNop())
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Equal(t, "corpus-bot/2.0", agent)
}

func TestFetchTransportErrorNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	dead := srv.URL
	srv.Close()

	fetcher := NewCollyFetcher(testHTTPConfig(3), "test-agent", zap.NewNop())
	_, err := fetcher.Fetch(context.Background(), dead+"/gone")
	require.Error(t, err)
}

func TestClassifyContentType(t *testing.T) {
	tests := []struct {
		ct    string
		class ContentClass
		ext   string
	}{
		{"text/html; charset=utf-8", ClassHTML, "html"},
		{"application/xhtml+xml", ClassHTML, "html"},
		{"application/pdf", ClassPDF, "pdf"},
		{"text/plain", ClassText, "txt"},
		{"text/css", ClassText, "txt"},
		{"image/png", ClassImage, "png"},
		{"image/jpeg", ClassImage, "jpeg"},
		{"application/octet-stream", ClassBinary, "bin"},
		{"", ClassBinary, "bin"},
	}
	for _, tt := range tests {
		class, ext := ClassifyContentType(tt.ct)
		require.Equal(t, tt.class, class, "content type %q", tt.ct)
		require.Equal(t, tt.ext, ext, "content type %q", tt.ct)
	}
}
