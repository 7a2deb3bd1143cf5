package services

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfolio/internal/core"
	applog "hairfolio/internal/log"
	"hairfolio/internal/sheets/memory"
	"hairfolio/internal/storage"
)

func newSyncRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

type flakyMirror struct {
	*memory.Store
	failures atomic.Int32
}

func (f *flakyMirror) UpsertExpense(ctx context.Context, e core.Expense) error {
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		return errors.New("sheets unavailable")
	}
	return f.Store.UpsertExpense(ctx, e)
}

func TestDefaultSyncProcessorConfig(t *testing.T) {
	config := DefaultSyncProcessorConfig()
	assert.Equal(t, 30*time.Second, config.PollInterval)
	assert.Equal(t, 10, config.BatchSize)
	assert.Equal(t, 3, config.MaxRetries)

	p := NewSyncProcessor(nil, nil, SyncProcessorConfig{})
	assert.Equal(t, config, p.config)
}

func TestSyncProcessor_MirrorsPendingRecords(t *testing.T) {
	ctx := context.Background()
	repo := newSyncRepo(t)
	mirror := memory.New()
	p := NewSyncProcessor(repo, mirror, DefaultSyncProcessorConfig())

	require.NoError(t, repo.CreateTransaction(ctx, core.Transaction{ID: "t1", Date: "2024-01-10", Style: "Fade", Price: 25}))
	require.NoError(t, repo.CreateExpense(ctx, core.Expense{ID: "e1", Date: "2024-01-05", Type: core.Fixed, Description: "Rent", Amount: 500}))

	stats, err := p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Upserted: 2}, stats)

	got, err := mirror.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Fade", got.Style)

	stats, err = p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{}, stats, "synced records are not sent twice")
}

func TestSyncProcessor_AppliesDeletions(t *testing.T) {
	ctx := context.Background()
	repo := newSyncRepo(t)
	mirror := memory.New()
	p := NewSyncProcessor(repo, mirror, DefaultSyncProcessorConfig())

	require.NoError(t, repo.CreateTransaction(ctx, core.Transaction{ID: "t1", Date: "2024-01-10", Style: "Fade", Price: 25}))
	_, err := p.ProcessBatch(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTransaction(ctx, "t1"))
	stats, err := p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, SyncStats{Removed: 1}, stats)

	_, err = mirror.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	pending, err := repo.PendingDeletions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncProcessor_RetriesThenFlagsError(t *testing.T) {
	ctx := context.Background()
	repo := newSyncRepo(t)
	mirror := &flakyMirror{Store: memory.New()}
	mirror.failures.Store(10)
	p := NewSyncProcessor(repo, mirror, SyncProcessorConfig{MaxRetries: 2})

	require.NoError(t, repo.CreateExpense(ctx, core.Expense{ID: "e1", Date: "2024-01-05", Type: core.Fixed, Description: "Rent", Amount: 500}))

	stats, err := p.ProcessBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	pending, err := repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "one failure keeps the record pending")

	_, err = p.ProcessBatch(ctx)
	require.NoError(t, err)

	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "record is flagged after max retries")
}

func TestSyncProcessor_LogsPermanentFailure(t *testing.T) {
	ctx := context.Background()
	repo := newSyncRepo(t)
	mirror := &flakyMirror{Store: memory.New()}
	mirror.failures.Store(10)

	var buf bytes.Buffer
	logger := applog.New(applog.Config{Output: &buf, Component: applog.ComponentWorker})
	p := NewSyncProcessor(repo, mirror, SyncProcessorConfig{MaxRetries: 1, Logger: logger})

	require.NoError(t, repo.CreateExpense(ctx, core.Expense{ID: "e1", Date: "2024-01-05", Type: core.Fixed, Description: "Rent", Amount: 500}))

	_, err := p.ProcessBatch(ctx)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "Record failed permanently after max retries")
	assert.Contains(t, out, "component=worker")
	assert.Contains(t, out, "operation=sync")
	assert.Contains(t, out, "record_id=e1")
	assert.Contains(t, out, `error="mirror expense: sheets unavailable"`)
}

func TestSyncProcessor_StartStop(t *testing.T) {
	repo := newSyncRepo(t)
	mirror := memory.New()
	p := NewSyncProcessor(repo, mirror, SyncProcessorConfig{PollInterval: time.Hour})
	ctx := context.Background()

	assert.False(t, p.IsRunning())
	require.NoError(t, p.Start(ctx))
	assert.True(t, p.IsRunning())
	assert.Error(t, p.Start(ctx), "second start fails")

	require.NoError(t, repo.CreateTransaction(ctx, core.Transaction{ID: "t9", Date: "2024-01-10", Style: "Fade", Price: 25}))
	p.Trigger()
	p.Trigger()

	assert.Eventually(t, func() bool {
		_, err := mirror.GetTransaction(ctx, "t9")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, p.Stop(stopCtx))
	assert.False(t, p.IsRunning())
	assert.NoError(t, p.Stop(stopCtx))
}
