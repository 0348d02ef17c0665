// Package db provides PostgreSQL storage for users and resumes.
package db

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string { return schemaSQL }

// DB is a Store backed by a pgx connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Option adjusts the pool configuration before connecting
type Option func(*pgxpool.Config)

// WithMaxConns caps the pool size. Values below 1 keep the pgx default.
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// WithQueryLog traces every statement to logger at debug level
func WithQueryLog(logger *slog.Logger) Option {
	return func(c *pgxpool.Config) {
		c.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
				attrs := make([]any, 0, 2*len(data))
				for k, v := range data {
					attrs = append(attrs, k, v)
				}
				logger.Log(ctx, slogLevel(level), msg, attrs...)
			}),
			LogLevel: tracelog.LogLevelDebug,
		}
	}
}

func slogLevel(level tracelog.LogLevel) slog.Level {
	switch {
	case level <= tracelog.LogLevelError:
		return slog.LevelError
	case level == tracelog.LogLevelWarn:
		return slog.LevelWarn
	case level == tracelog.LogLevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Connect opens a pool to databaseURL and verifies it with a ping
func Connect(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close releases every pooled connection
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping backs the health endpoint
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate applies the embedded schema. Statements are idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
