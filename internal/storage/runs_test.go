package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atarvano/ManifestAi/internal/config"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "runs.db"), MaxOpenConns: 1},
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrate is repeatable")
	return db
}

func exerciseRuns(t *testing.T, db DB) {
	ctx := context.Background()
	repo := NewRunRepository(db)

	clock := time.Date(2025, time.November, 14, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first := &Run{Pipeline: "normalize", Filename: "manifest.xlsx", Model: "gemini"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, StatusRunning, first.Status)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "manifest.xlsx", got.Filename)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
	assert.Zero(t, got.Duration())

	first.Status = StatusSucceeded
	first.Model = "deepseek"
	first.ItemCount = 12
	first.HSAdded = 4
	first.HSValidated = 8
	require.NoError(t, repo.Finish(ctx, first))

	got, err = repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, got.Status)
	assert.Equal(t, "deepseek", got.Model)
	assert.Equal(t, 12, got.ItemCount)
	assert.Equal(t, 4, got.HSAdded)
	assert.Equal(t, 8, got.HSValidated)
	require.NotNil(t, got.FinishedAt)
	assert.Equal(t, time.Minute, got.Duration())

	second := &Run{Pipeline: "ceisa", Filename: "ceisa.xlsx"}
	require.NoError(t, repo.Create(ctx, second))
	second.Status = StatusFailed
	second.Error = "all providers failed"
	require.NoError(t, repo.Finish(ctx, second))

	runs, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID, "newest first")
	assert.Equal(t, "all providers failed", runs[0].Error)

	runs, err = repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Finish(ctx, &Run{ID: uuid.New(), Status: StatusFailed}), ErrNotFound)
}

func TestRunRepositorySQLite(t *testing.T) {
	exerciseRuns(t, openSQLite(t))
}

func TestOpenNone(t *testing.T) {
	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "none"})
	require.NoError(t, err)
	assert.Nil(t, db)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
