package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/config"
)

// Engine owns the breadth-first frontier and drives the crawl: robots check,
// fetch, persist, link discovery, report record, politeness pause. It runs as
// a single sequential worker; the frontier, visited set and robots directives
// have no other mutator.
type Engine struct {
	cfg      config.CrawlConfig
	seed     string
	fetcher  Fetcher
	robots   *Robots
	sink     *FileSystemSink
	reporter *Reporter
	scope    *Scope
	frontier *Frontier
	pauser   pauseController
	delay    time.Duration
	logger   *zap.Logger

	processed int
}

// NewEngine validates the seed and wires the crawl components together.
// A malformed seed is a fatal precondition failure; no network activity has
// happened yet when it is reported.
func NewEngine(
	cfg config.CrawlConfig,
	fetcher Fetcher,
	robots *Robots,
	sink *FileSystemSink,
	reporter *Reporter,
	logger *zap.Logger,
) (*Engine, error) {
	seed, err := Canonicalize(cfg.SeedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed url %q: %w", cfg.SeedURL, err)
	}
	scope, err := NewScope(seed, cfg.IncludeSubdomains)
	if err != nil {
		return nil, fmt.Errorf("build crawl scope: %w", err)
	}

	// Robots crawl-delay wins over the configured default when declared.
	delay := robots.CrawlDelay()
	if delay <= 0 {
		delay = cfg.Delay
	}

	return &Engine{
		cfg:      cfg,
		seed:     seed,
		fetcher:  fetcher,
		robots:   robots,
		sink:     sink,
		reporter: reporter,
		scope:    scope,
		frontier: NewFrontier(),
		pauser:   &timerPauseController{},
		delay:    delay,
		logger:   logger,
	}, nil
}

// Processed returns the number of pages that reached the Processed state.
func (e *Engine) Processed() int {
	return e.processed
}

// Run executes the crawl until the frontier empties, the page limit is
// reached, or the context is canceled. Cancellation stops at the next loop
// boundary, after the current record has been durably appended.
func (e *Engine) Run(ctx context.Context) error {
	e.frontier.Push(e.seed, 0)

	for e.frontier.Len() > 0 && e.processed < e.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, _ := e.frontier.Pop()
		if e.frontier.Visited(entry.URL) {
			continue
		}
		// Depth-gated at enqueue time; this guards the seed path only.
		if entry.Depth > e.cfg.MaxDepth {
			continue
		}
		if err := e.step(ctx, entry); err != nil {
			return err
		}
	}

	e.logger.Info("crawl finished",
		zap.Int("pages", e.processed),
		zap.Int("visited", e.frontier.VisitedCount()),
		zap.String("report", e.reporter.Path()))
	return nil
}

// step resolves one dequeued URL to exactly one terminal state and report
// record. Per-page failures are isolated: only report-stream failures and
// cancellation propagate.
func (e *Engine) step(ctx context.Context, entry FrontierEntry) error {
	if !e.robots.CanFetch(entry.URL) {
		e.frontier.MarkVisited(entry.URL)
		robotsSkipsTotal.Inc()
		e.logger.Info("skipping url disallowed by robots",
			zap.String("url", entry.URL), zap.Int("depth", entry.Depth))
		return e.reporter.Append(CrawlRecord{
			URL:    entry.URL,
			Status: StatusDisallowed,
			Depth:  entry.Depth,
		})
	}

	resp, err := e.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		e.frontier.MarkVisited(entry.URL)
		fetchErrorsTotal.Inc()
		e.logger.Warn("fetch failed", zap.String("url", entry.URL), zap.Error(err))
		if aerr := e.reporter.Append(CrawlRecord{
			URL:    entry.URL,
			Status: StatusError,
			Depth:  entry.Depth,
			Error:  err.Error(),
		}); aerr != nil {
			return aerr
		}
		// A network fetch was attempted, so politeness spacing still applies.
		e.pauser.Pause(ctx, e.delay)
		return nil
	}

	rec := CrawlRecord{
		URL:         entry.URL,
		Status:      strconv.Itoa(resp.StatusCode),
		ContentType: resp.ContentType,
		Depth:       entry.Depth,
	}

	rawPath, err := e.sink.SaveRaw(entry.URL, resp.Ext, resp.Body)
	if err != nil {
		e.logger.Warn("persist failed", zap.String("url", entry.URL), zap.Error(err))
		rec.Error = err.Error()
	} else {
		rec.SavedRaw = rawPath
	}

	if resp.Class == ClassHTML {
		e.processHTML(&rec, entry, resp)
	}

	if err := e.reporter.Append(rec); err != nil {
		return err
	}
	e.frontier.MarkVisited(entry.URL)
	e.processed++
	pagesProcessedTotal.Inc()
	e.logger.Info("fetched page",
		zap.String("url", entry.URL),
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", resp.ContentType),
		zap.Int("depth", entry.Depth),
		zap.Int("pages", e.processed),
		zap.Int("max_pages", e.cfg.MaxPages))

	e.pauser.Pause(ctx, e.delay)
	return nil
}

// processHTML fills in title and text artifacts and enqueues in-scope links.
// Parse and extraction failures are warnings only; the page stays Processed.
func (e *Engine) processHTML(rec *CrawlRecord, entry FrontierEntry, resp FetchResponse) {
	doc, err := ParseHTML(resp.Body)
	if err != nil {
		e.logger.Warn("html parse failed", zap.String("url", entry.URL), zap.Error(err))
		return
	}
	rec.Title = Title(doc)

	// Link discovery must run before ReadableText, which may mutate the doc.
	if entry.Depth < e.cfg.MaxDepth {
		e.enqueueLinks(doc, entry, resp)
	}

	switch e.cfg.Extract {
	case config.ExtractText:
		if text := ReadableText(doc); text != "" {
			path, err := e.sink.SaveText(entry.URL, text)
			if err != nil {
				e.logger.Warn("save text failed", zap.String("url", entry.URL), zap.Error(err))
				return
			}
			rec.SavedText = path
		}
	case config.ExtractHTML:
		path, err := e.sink.SaveHTMLCopy(entry.URL, resp.Body)
		if err != nil {
			e.logger.Warn("save html copy failed", zap.String("url", entry.URL), zap.Error(err))
			return
		}
		rec.SavedText = path
	}
}

// enqueueLinks pushes in-scope, unvisited children at depth+1. The robots
// check here is a cheap prefilter; the authoritative check still happens when
// the child is dequeued.
func (e *Engine) enqueueLinks(doc *goquery.Document, entry FrontierEntry, resp FetchResponse) {
	base, err := url.Parse(resp.FinalURL)
	if err != nil || base.Host == "" {
		if base, err = url.Parse(entry.URL); err != nil {
			return
		}
	}
	for _, link := range ExtractLinks(doc, base) {
		if !e.scope.Contains(link) {
			continue
		}
		if e.frontier.Visited(link) {
			continue
		}
		if !e.robots.CanFetch(link) {
			continue
		}
		e.frontier.Push(link, entry.Depth+1)
	}
}
