package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonathan/resume-builder/internal/analysis"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/mongostore"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/server"
)

// openStore connects the configured storage backend and prepares it
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (server.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.Mongo.URL, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to mongo", "database", cfg.Mongo.Database)
		return store, nil
	default:
		opts := []db.Option{db.WithMaxConns(cfg.Database.MaxConns)}
		if cfg.Database.LogQueries {
			opts = append(opts, db.WithQueryLog(logger))
		}
		database, err := db.Connect(ctx, cfg.Database.URL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		logger.Info("connected to postgres")
		return database, nil
	}
}

// analyzerStack is an analyzer plus what must be released with it
type analyzerStack struct {
	analyzer *analysis.Analyzer
	client   llm.Client
	cache    analysis.Cache
}

func (s *analyzerStack) Close() {
	_ = s.client.Close()
	_ = s.cache.Close()
}

// newAnalyzerStack builds the provider client, wraps it for resilience and
// attaches the cache and metrics.
func newAnalyzerStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Manager) (*analyzerStack, error) {
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("an API key for provider %q is required (set GEMINI_API_KEY or ai.apiKey)", cfg.AI.Provider)
	}

	inner, err := llm.NewClient(ctx, llm.ConfigFromSettings(cfg.AI), cfg.AI.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	var opts []llm.ResilientOption
	var analyzerOpts []analysis.Option
	if metrics != nil {
		opts = append(opts, llm.WithRecorder(metrics), llm.WithTracer(metrics.Tracer("resume-builder/llm")))
		analyzerOpts = append(analyzerOpts, analysis.WithMetrics(metrics))
	}
	client := llm.NewResilientClient(inner, cfg.AI, logger, opts...)
	cache := analysis.NewCache(ctx, cfg.Cache, logger)

	analyzerOpts = append(analyzerOpts,
		analysis.WithCache(cache),
		analysis.WithLogger(logger),
		analysis.WithChunkSize(cfg.AI.StreamChunkSize),
	)
	return &analyzerStack{
		analyzer: analysis.NewAnalyzer(client, analyzerOpts...),
		client:   client,
		cache:    cache,
	}, nil
}
