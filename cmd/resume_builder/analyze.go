package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/observability"
)

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var (
		inFile  string
		outFile string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Structure a resume file with the configured model",
		Long:  "Reads a text, HTML or PDF resume, runs the same analysis the API uses, and prints or writes the structured JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(false)
			if err != nil {
				return err
			}
			logger, _ := opts.logger(cfg)

			text, _, err := ingestion.IngestFromFile(inFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			stack, err := newAnalyzerStack(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer stack.Close()

			data, err := stack.analyzer.Analyze(ctx, text)
			if err != nil {
				return err
			}

			if verbose {
				observability.NewPrinter(opts.stderr).PrintStructuredResume(data)
			}

			out, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal structured data: %w", err)
			}
			out = append(out, '\n')

			if outFile == "" {
				_, err = opts.stdout.Write(out)
				return err
			}
			if err := os.WriteFile(outFile, out, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			logger.Info("structured resume written", "path", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inFile, "in", "i", "", "Path to the resume (.txt, .md, .html or .pdf)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write JSON here instead of stdout")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a summary of the result to stderr")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
