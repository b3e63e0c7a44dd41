// Package storage records pipeline runs in a SQL database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Atarvano/ManifestAi/internal/config"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Open connects to the configured ledger database. It returns a nil
// *sql.DB when the driver is "none".
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	var driver, dsn string
	var maxOpen int

	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		driver, dsn, maxOpen = "sqlite3", cfg.SQLite.Path, cfg.SQLite.MaxOpenConns
	case "postgres":
		driver, dsn, maxOpen = "postgres", cfg.Postgres.DSN, cfg.Postgres.MaxOpenConns
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id           TEXT PRIMARY KEY,
		pipeline     TEXT NOT NULL,
		filename     TEXT NOT NULL DEFAULT '',
		model        TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL,
		item_count   INTEGER NOT NULL DEFAULT 0,
		hs_added     INTEGER NOT NULL DEFAULT 0,
		hs_validated INTEGER NOT NULL DEFAULT 0,
		hs_failed    INTEGER NOT NULL DEFAULT 0,
		error        TEXT NOT NULL DEFAULT '',
		started_at   TIMESTAMP NOT NULL,
		finished_at  TIMESTAMP NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started_at ON pipeline_runs (started_at)`,
}

// Migrate creates the ledger schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
