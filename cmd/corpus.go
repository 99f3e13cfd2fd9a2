package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/corpusbot/sitecrawler/internal/corpus"
)

// newCorpusCmd groups the downstream corpus stages: extract, chunk, dedup.
func newCorpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Turn a finished crawl into indexing-ready JSONL",
	}
	cmd.AddCommand(newCorpusExtractCmd())
	cmd.AddCommand(newCorpusChunkCmd())
	cmd.AddCommand(newCorpusDedupCmd())
	return cmd
}

func newCorpusExtractCmd() *cobra.Command {
	var report, out string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract readable text documents from a crawl report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFile, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = outFile.Close() }()

			logger, err := buildLogger(true)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			written, err := corpus.ExtractFromReport(report, outFile, logger)
			if err != nil {
				return err
			}
			logger.Info("corpus extracted", zap.Int("documents", written), zap.String("out", out))
			return nil
		},
	}

	cmd.Flags().StringVar(&report, "report", "crawl_report.jsonl", "crawl report path")
	cmd.Flags().StringVar(&out, "out", "corpus.jsonl", "output document JSONL path")
	return cmd
}

func newCorpusChunkCmd() *cobra.Command {
	var (
		in, out  string
		maxWords int
		overlap  int
	)

	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Split documents into overlapping word-window chunks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inFile, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() { _ = inFile.Close() }()
			outFile, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = outFile.Close() }()

			read, written, err := corpus.ChunkStream(inFile, outFile, corpus.ChunkOptions{
				MaxWords: maxWords,
				Overlap:  overlap,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chunked %d documents into %d chunks -> %s\n", read, written, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "corpus.jsonl", "input document JSONL path")
	cmd.Flags().StringVar(&out, "out", "corpus_chunked.jsonl", "output chunk JSONL path")
	cmd.Flags().IntVar(&maxWords, "max-words", 300, "maximum words per chunk")
	cmd.Flags().IntVar(&overlap, "overlap", 50, "words shared between consecutive chunks")
	return cmd
}

func newCorpusDedupCmd() *cobra.Command {
	var (
		in, out   string
		normalize bool
		prefix    int
	)

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Drop documents with duplicate text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			inFile, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() { _ = inFile.Close() }()
			outFile, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = outFile.Close() }()

			kept, dropped, err := corpus.DedupStream(inFile, outFile, corpus.DedupOptions{
				Normalize:  normalize,
				HashPrefix: prefix,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kept %d, dropped %d duplicates -> %s\n", kept, dropped, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "corpus_chunked.jsonl", "input JSONL path")
	cmd.Flags().StringVar(&out, "out", "corpus_dedup.jsonl", "output JSONL path")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "lowercase and collapse whitespace before hashing")
	cmd.Flags().IntVar(&prefix, "prefix", 0, "hash only the first N bytes of text (0 = all)")
	return cmd
}
