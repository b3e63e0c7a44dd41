package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID          uuid.UUID
	Pipeline    string
	Filename    string
	Model       string
	Status      string
	ItemCount   int
	HSAdded     int
	HSValidated int
	HSFailed    int
	Error       string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// Duration returns how long a finished run took, or zero.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunRepository handles pipeline run records.
type RunRepository struct {
	db  DB
	now func() time.Time
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db DB) *RunRepository {
	return &RunRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts run with status running. A missing ID is generated.
func (r *RunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.Status = StatusRunning
	run.StartedAt = r.now()
	run.FinishedAt = nil

	query := `
		INSERT INTO pipeline_runs (id, pipeline, filename, model, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID.String(), run.Pipeline, run.Filename, run.Model, run.Status, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// Finish stores the final status and counters of run.
func (r *RunRepository) Finish(ctx context.Context, run *Run) error {
	finished := r.now()
	run.FinishedAt = &finished

	query := `
		UPDATE pipeline_runs
		SET status = $1, model = $2, item_count = $3, hs_added = $4, hs_validated = $5,
			hs_failed = $6, error = $7, finished_at = $8
		WHERE id = $9
	`
	res, err := r.db.ExecContext(ctx, query,
		run.Status, run.Model, run.ItemCount, run.HSAdded, run.HSValidated,
		run.HSFailed, run.Error, finished, run.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const runColumns = `id, pipeline, filename, model, status, item_count, hs_added,
	hs_validated, hs_failed, error, started_at, finished_at`

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE id = $1`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (r *RunRepository) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + runColumns + ` FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run      Run
		id       string
		finished sql.NullTime
	)
	err := s.Scan(
		&id, &run.Pipeline, &run.Filename, &run.Model, &run.Status, &run.ItemCount,
		&run.HSAdded, &run.HSValidated, &run.HSFailed, &run.Error, &run.StartedAt, &finished,
	)
	if err != nil {
		return nil, err
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse run id %q: %w", id, err)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
