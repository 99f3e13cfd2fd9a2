package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/crawler"
)

// robotsAnalysis is the JSON report printed by the robots command.
type robotsAnalysis struct {
	BaseURL    string  `json:"base_url"`
	RobotsURL  string  `json:"robots_url"`
	Fetched    bool    `json:"fetched"`
	StatusCode int     `json:"status_code,omitempty"`
	Path       string  `json:"path"`
	UserAgent  string  `json:"user_agent"`
	Allowed    bool    `json:"allowed"`
	CrawlDelay float64 `json:"crawl_delay_seconds,omitempty"`
}

// newRobotsCmd creates the 'robots' subcommand: fetch and analyze a domain's
// robots.txt and report whether a path is fetchable for an agent.
func newRobotsCmd() *cobra.Command {
	var (
		rawURL  string
		path    string
		agent   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "robots",
		Short: "Inspect a domain's robots.txt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := url.Parse(rawURL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("--url must be an absolute http(s) URL, got %q", rawURL)
			}
			base := fmt.Sprintf("%s://%s", u.Scheme, u.Host)
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			robots := crawler.LoadRobots(cmd.Context(), base, agent, timeout, zap.NewNop())
			analysis := robotsAnalysis{
				BaseURL:    base,
				RobotsURL:  robots.RobotsURL,
				Fetched:    !robots.Absent(),
				StatusCode: robots.StatusCode,
				Path:       path,
				UserAgent:  agent,
				Allowed:    robots.CanFetch(base + path),
				CrawlDelay: robots.CrawlDelay().Seconds(),
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		},
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "site URL (http/https)")
	cmd.Flags().StringVar(&path, "path", "/", "path to check against the rules")
	cmd.Flags().StringVar(&agent, "agent", "sitecrawler-bot/1.0", "user agent to evaluate")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "robots.txt fetch timeout")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
