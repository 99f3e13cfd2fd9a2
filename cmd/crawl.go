package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/api"
	"github.com/corpusbot/sitecrawler/internal/config"
	"github.com/corpusbot/sitecrawler/internal/crawler"
)

// newCrawlCmd creates and configures the 'crawl' subcommand.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a single domain breadth-first from a seed URL",
		Long: `Crawls one domain from the seed URL, honoring robots.txt (including
crawl-delay) and a politeness delay between fetches. Raw bodies land under
<out-dir>/raw, optional extracted text under <out-dir>/text, and every
visited or skipped URL is appended to <out-dir>/crawl_report.jsonl.`,
		RunE: runCrawlCommand,
	}

	flags := cmd.Flags()
	flags.String("seed-url", "", "starting URL (http/https, required unless configured)")
	flags.String("out-dir", "", "directory for raw pages, text and the report")
	flags.Int("max-pages", 0, "maximum number of pages to process")
	flags.Int("max-depth", 0, "maximum link depth from the seed")
	flags.String("user-agent", "", "User-Agent header for all requests")
	flags.Bool("include-subdomains", false, "also crawl subdomains of the seed host")
	flags.String("extract", "", "extraction mode: none|text|html")
	flags.Bool("ignore-robots", false, "ignore robots.txt (testing only)")
	flags.Duration("delay", 0, "default politeness delay between fetches")
	flags.Duration("timeout", 0, "per-request timeout")
	flags.Int("retries", -1, "retry count for 429/5xx responses")
	flags.Duration("backoff", 0, "initial retry backoff")
	flags.String("metrics-addr", "", "serve /healthz and /metrics on this address while crawling")
	return cmd
}

// crawlFlagKeys maps flag names to their Viper keys.
var crawlFlagKeys = map[string]string{
	"seed-url":           "crawl.seed_url",
	"out-dir":            "crawl.output_dir",
	"max-pages":          "crawl.max_pages",
	"max-depth":          "crawl.max_depth",
	"user-agent":         "crawl.user_agent",
	"include-subdomains": "crawl.include_subdomains",
	"extract":            "crawl.extract",
	"ignore-robots":      "crawl.ignore_robots",
	"delay":              "crawl.delay",
	"timeout":            "http.timeout",
	"retries":            "http.max_retries",
	"backoff":            "http.backoff_initial",
	"metrics-addr":       "server.metrics_addr",
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	v, err := loadViper()
	if err != nil {
		return err
	}
	for flag, key := range crawlFlagKeys {
		if cmd.Flags().Changed(flag) {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger)
}

func runCrawl(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if err := os.MkdirAll(cfg.Crawl.OutputDir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	reporter, err := crawler.NewReporter(filepath.Join(cfg.Crawl.OutputDir, "crawl_report.jsonl"))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := reporter.Close(); cerr != nil {
			logger.Warn("failed to close report", zap.Error(cerr))
		}
	}()

	sink, err := crawler.NewFileSystemSink(cfg.Crawl.OutputDir, cfg.HTTP.MaxPageBytes, logger)
	if err != nil {
		return err
	}

	robots := crawler.AllowAll(cfg.Crawl.UserAgent)
	if !cfg.Crawl.IgnoreRobots {
		robots = crawler.LoadRobots(ctx, cfg.Crawl.SeedURL, cfg.Crawl.UserAgent, cfg.HTTP.RobotsTimeout, logger)
	}

	fetcher := crawler.NewCollyFetcher(cfg.HTTP, cfg.Crawl.UserAgent, logger)
	engine, err := crawler.NewEngine(cfg.Crawl, fetcher, robots, sink, reporter, logger)
	if err != nil {
		return err
	}

	if cfg.Server.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           api.NewHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if serr := srv.ListenAndServe(); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
				logger.Warn("status server failed", zap.Error(serr))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("status server listening", zap.String("addr", cfg.Server.MetricsAddr))
	}

	if err := engine.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("crawl interrupted; report is complete up to the last record",
				zap.Int("pages", engine.Processed()))
			return nil
		}
		return fmt.Errorf("run crawl: %w", err)
	}
	return nil
}
