// Package main provides the resume_builder command: the REST API server and
// offline analysis, import and export tools.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/observability"
)

// globalOptions are shared by every subcommand
type globalOptions struct {
	configPath string
	logLevel   string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "resume_builder",
		Short:         "AI resume builder API server",
		Long:          "Resume Builder stores resumes, structures them with a generative model and exports them as Markdown, LaTeX, JSON or YAML.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: search ./config.yaml, $HOME/.resume-builder, /etc/resume-builder)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newAnalyzeCmd(opts),
		newRenderCmd(opts),
		newImportCmd(opts),
	)
	return rootCmd
}

// loadConfig reads configuration; validate is false for offline commands
func (o *globalOptions) loadConfig(validate bool) (*config.Config, error) {
	load := config.Read
	if validate {
		load = config.Load
	}
	cfg, err := load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, nil
}

// logger builds the process logger and installs it as the slog default
func (o *globalOptions) logger(cfg *config.Config) (*slog.Logger, *slog.LevelVar) {
	logger, level := observability.NewLogger(o.stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)
	return logger, level
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
