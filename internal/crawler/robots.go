package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

const robotsMaxBytes = 1 << 20

// Robots holds the parsed robots.txt ruleset for the crawled domain, or the
// permissive absent state. It is loaded exactly once at crawl start.
type Robots struct {
	data       *robotstxt.RobotsData
	agent      string
	RobotsURL  string
	StatusCode int
}

// AllowAll returns a permissive policy used when robots handling is disabled.
func AllowAll(agent string) *Robots {
	return &Robots{agent: agent}
}

// LoadRobots fetches and parses robots.txt for the seed's host. Any non-200
// response or network failure degrades to the permissive absent policy rather
// than aborting the crawl.
func LoadRobots(ctx context.Context, seedURL, agent string, timeout time.Duration, logger *zap.Logger) *Robots {
	r := &Robots{agent: agent}
	parsed, err := url.Parse(seedURL)
	if err != nil {
		logger.Warn("robots: seed parse failed; proceeding permissively", zap.Error(err))
		return r
	}
	r.RobotsURL = fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)

	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.RobotsURL, nil)
	if err != nil {
		logger.Warn("robots: request build failed; proceeding permissively", zap.Error(err))
		return r
	}
	req.Header.Set("User-Agent", agent)

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("robots: fetch failed; proceeding permissively",
			zap.String("robots_url", r.RobotsURL), zap.Error(err))
		return r
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Debug("robots: close body failed", zap.Error(cerr))
		}
	}()

	r.StatusCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		logger.Info("robots: no usable robots.txt; proceeding permissively",
			zap.String("robots_url", r.RobotsURL), zap.Int("status", resp.StatusCode))
		return r
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, robotsMaxBytes))
	if err != nil {
		logger.Warn("robots: read failed; proceeding permissively", zap.Error(err))
		return r
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		logger.Warn("robots: parse failed; proceeding permissively", zap.Error(err))
		return r
	}
	r.data = data
	logger.Info("robots: loaded", zap.String("robots_url", r.RobotsURL))
	return r
}

// Absent reports whether no ruleset was loaded (permissive default).
func (r *Robots) Absent() bool {
	return r.data == nil
}

// CanFetch evaluates the ruleset for rawURL. The absent policy always allows,
// and any evaluation problem is treated as allow (fail-open).
func (r *Robots) CanFetch(rawURL string) bool {
	if r.data == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return r.data.FindGroup(r.agent).Test(path)
}

// CrawlDelay returns the declared crawl-delay for the configured agent,
// falling back to the wildcard group, or zero when none is declared.
func (r *Robots) CrawlDelay() time.Duration {
	if r.data == nil {
		return 0
	}
	return r.data.FindGroup(r.agent).CrawlDelay
}
