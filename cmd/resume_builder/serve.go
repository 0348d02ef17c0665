package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/server"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  `Start an HTTP server that exposes the user, resume, analysis, import and export endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(true)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			logger, level := opts.logger(cfg)
			cfg.WatchLogLevel(func(l string) { level.Set(observability.ParseLevel(l)) })

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			metrics, err := observability.NewManager(ctx, cfg.Observability)
			if err != nil {
				return fmt.Errorf("failed to initialize observability: %w", err)
			}
			defer func() {
				if err := metrics.Shutdown(context.Background()); err != nil {
					logger.Warn("observability shutdown failed", "error", err)
				}
			}()

			store, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}

			stack, err := newAnalyzerStack(ctx, cfg, logger, metrics)
			if err != nil {
				store.Close()
				return err
			}
			defer stack.Close()

			srv := server.New(cfg, server.Deps{
				Store:          store,
				Validator:      server.NewTokenValidator(cfg.Supabase),
				Analyzer:       stack.analyzer,
				Logger:         logger,
				Metrics:        metrics,
				MetricsHandler: metrics.MetricsHandler(),
			})
			logger.Info("resume builder configured",
				"storage", cfg.Storage.Driver,
				"provider", cfg.AI.Provider,
				"model", stack.analyzer.Model(),
			)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 3000, "Port to listen on (overrides server.port)")
	return cmd
}
