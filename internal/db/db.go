// Package db persists pipeline results to PostgreSQL. The pipeline itself never calls it;
// the CLI hands finished results to SaveResult when a database URL is configured.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Pool abstracts pgxpool.Pool so tests can substitute pgxmock
type Pool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool   Pool
	logger *zap.Logger
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db, err := New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an existing pool and verifies the connection
func New(ctx context.Context, pool Pool, logger *zap.Logger) (*DB, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{pool: pool, logger: logger.Named("db")}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS authenticity_runs (
    id           UUID PRIMARY KEY,
    persona_id   TEXT NOT NULL,
    content_type TEXT NOT NULL,
    status       TEXT NOT NULL,
    reason       TEXT NOT NULL DEFAULT '',
    attempts     INTEGER NOT NULL,
    text         TEXT NOT NULL DEFAULT '',
    report       JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS authenticity_attempts (
    id                   UUID PRIMARY KEY,
    run_id               UUID NOT NULL REFERENCES authenticity_runs(id) ON DELETE CASCADE,
    number               INTEGER NOT NULL,
    decision             TEXT NOT NULL,
    candidate            TEXT NOT NULL DEFAULT '',
    report               JSONB,
    prompt               JSONB NOT NULL,
    transient_retries    INTEGER NOT NULL DEFAULT 0,
    generation_error     TEXT NOT NULL DEFAULT '',
    enhancement_tried    BOOLEAN NOT NULL DEFAULT FALSE,
    enhancement_degraded BOOLEAN NOT NULL DEFAULT FALSE,
    UNIQUE (run_id, number)
);
CREATE INDEX IF NOT EXISTS authenticity_runs_persona_idx ON authenticity_runs (persona_id, created_at DESC);
`

// EnsureSchema creates the tables if they do not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
