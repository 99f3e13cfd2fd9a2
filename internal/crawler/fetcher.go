package crawler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/config"
)

// Fetcher retrieves a single URL and classifies the response.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (FetchResponse, error)
}

// Statuses that warrant a retried attempt. Everything else, including other
// 4xx responses, is returned as-is.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// CollyFetcher implements Fetcher on a Colly collector with exponential
// backoff on retryable statuses. Robots handling and revisit tracking are
// disabled in the collector; the engine owns both.
type CollyFetcher struct {
	baseCollector *colly.Collector
	backoff       *backoffPolicy
	maxRetries    int
	logger        *zap.Logger
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(httpCfg config.HTTPConfig, userAgent string, logger *zap.Logger) *CollyFetcher {
	base := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.MaxBodySize(int(httpCfg.MaxPageBytes)),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	base.ParseHTTPErrorResponse = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: httpCfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(httpCfg.Timeout)

	return &CollyFetcher{
		baseCollector: base,
		backoff:       newBackoffPolicy(httpCfg.BackoffInitial, httpCfg.BackoffMax),
		maxRetries:    httpCfg.MaxRetries,
		logger:        logger,
	}
}

// Fetch retrieves rawURL, retrying only on 429/500/502/503/504 with bounded
// exponential backoff. Transport errors are returned without retry; retries
// are invisible to the caller, which sees only the final response.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string) (FetchResponse, error) {
	for attempt := 0; ; attempt++ {
		resp, err := f.fetchOnce(ctx, rawURL)
		if err != nil {
			return FetchResponse{}, err
		}
		if !retryableStatus[resp.StatusCode] || attempt >= f.maxRetries {
			return resp, nil
		}
		wait := f.backoff.Delay(attempt)
		f.logger.Debug("retrying fetch",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait))
		fetchRetriesTotal.Inc()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return FetchResponse{}, ctx.Err()
		case <-timer.C:
		}
	}
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, rawURL string) (FetchResponse, error) {
	if err := ctx.Err(); err != nil {
		return FetchResponse{}, err
	}
	collector := f.baseCollector.Clone()

	var (
		result   FetchResponse
		fetchErr error
		got      bool
	)
	start := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			for k, v := range *r.Headers {
				cp := make([]string, len(v))
				copy(cp, v)
				headers[k] = cp
			}
		}
		ct := headers.Get("Content-Type")
		class, ext := ClassifyContentType(ct)
		result = FetchResponse{
			URL:         rawURL,
			FinalURL:    r.Request.URL.String(),
			StatusCode:  r.StatusCode,
			Headers:     headers,
			Body:        append([]byte{}, r.Body...),
			ContentType: ct,
			Class:       class,
			Ext:         ext,
			Duration:    time.Since(start),
		}
		got = true
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown fetch error")
		}
		fetchErr = err
	})

	fetchesTotal.Inc()
	if err := collector.Visit(rawURL); err != nil {
		return FetchResponse{}, err
	}
	collector.Wait()

	if fetchErr != nil {
		return FetchResponse{}, fetchErr
	}
	if !got {
		return FetchResponse{}, errors.New("fetch produced no response")
	}
	return result, nil
}

// ClassifyContentType maps a Content-Type header into a content class and the
// file extension used for persisted artifacts.
func ClassifyContentType(contentType string) (ContentClass, string) {
	mt := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	switch {
	case mt == "text/html" || mt == "application/xhtml+xml":
		return ClassHTML, "html"
	case mt == "application/pdf":
		return ClassPDF, "pdf"
	case strings.HasPrefix(mt, "text/"):
		return ClassText, "txt"
	case strings.HasPrefix(mt, "image/"):
		sub := strings.TrimPrefix(mt, "image/")
		if sub == "" {
			return ClassBinary, "bin"
		}
		return ClassImage, sub
	default:
		return ClassBinary, "bin"
	}
}
