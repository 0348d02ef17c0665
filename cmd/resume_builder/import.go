package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/observability"
)

func newImportCmd(opts *globalOptions) *cobra.Command {
	var (
		url        string
		pdfFile    string
		useBrowser bool
		outDir     string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Extract clean resume text from a web page or PDF",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (url == "") == (pdfFile == "") {
				return fmt.Errorf("exactly one of --url or --pdf is required")
			}

			cfg, err := opts.loadConfig(false)
			if err != nil {
				return err
			}
			logger, _ := opts.logger(cfg)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			var (
				text     string
				metadata *ingestion.Metadata
			)
			if url != "" {
				text, metadata, err = ingestion.IngestFromURL(ctx, url, ingestion.URLOptions{
					UseBrowser:           useBrowser,
					AllowPrivateNetworks: true,
					Logger:               logger,
				})
			} else {
				var data []byte
				data, err = os.ReadFile(pdfFile)
				if err != nil {
					return fmt.Errorf("failed to read PDF: %w", err)
				}
				text, metadata, err = ingestion.IngestFromPDF(data)
			}
			if err != nil {
				return err
			}

			if outDir != "" {
				if err := ingestion.WriteOutput(outDir, text, metadata); err != nil {
					return err
				}
				observability.NewPrinter(opts.stderr).PrintImportSummary(string(metadata.Source), text)
				return nil
			}
			_, err = fmt.Fprintln(opts.stdout, text)
			return err
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "", "Profile or portfolio page to import")
	cmd.Flags().StringVarP(&pdfFile, "pdf", "p", "", "PDF resume to import")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "Render thin pages in headless Chrome")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Write resume.cleaned.txt and resume.meta.json here instead of printing")
	return cmd
}
