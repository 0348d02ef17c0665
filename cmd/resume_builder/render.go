package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

func newRenderCmd(opts *globalOptions) *cobra.Command {
	var (
		inFile  string
		format  string
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Export structured resume JSON as tex, md, json or yaml",
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := rendering.ParseFormat(format)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(inFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			if err := schemas.ValidateStructuredResume(raw); err != nil {
				return fmt.Errorf("input is not a structured resume: %w", err)
			}

			var data types.StructuredData
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("failed to parse input file: %w", err)
			}

			doc, err := rendering.Export(&data, f)
			if err != nil {
				return err
			}

			if outFile == "" {
				_, err = opts.stdout.Write(doc)
				return err
			}
			if err := os.WriteFile(outFile, doc, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inFile, "in", "i", "", "Path to structured resume JSON")
	cmd.Flags().StringVarP(&format, "format", "f", string(rendering.DefaultFormat), "Output format: tex, md, json or yaml")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the document here instead of stdout")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
