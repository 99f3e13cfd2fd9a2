// Package cmd defines and implements the CLI commands for the sitecrawler
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/config"
	"github.com/corpusbot/sitecrawler/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitecrawler",
		Short: "A polite single-domain crawler and corpus toolkit",
		Long: `sitecrawler crawls one web domain breadth-first from a seed URL,
respecting robots.txt directives and a politeness delay. It saves fetched
content and optionally extracted readable text, and writes an append-only
JSONL report of every visited or skipped URL. The corpus subcommands turn a
finished crawl into chunked, deduplicated JSONL ready for indexing.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is none; env and flags apply)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newRobotsCmd())
	cmd.AddCommand(newCorpusCmd())
	return cmd
}

// loadViper builds the Viper instance shared by subcommands, honoring the
// persistent --config flag.
func loadViper() (*viper.Viper, error) {
	v, err := config.InitViper(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}
	return v, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildLogger constructs the zap logger used by a command run.
func buildLogger(development bool) (*zap.Logger, error) {
	return logging.New(development)
}
