package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"hairfolio/internal/core"
	applog "hairfolio/internal/log"
	"hairfolio/internal/sheets"
	"hairfolio/internal/storage"
)

// SyncSource is the storage side of the mirror loop.
type SyncSource interface {
	PendingSync(ctx context.Context, limit int) ([]storage.PendingSync, error)
	PendingDeletions(ctx context.Context, limit int) ([]storage.PendingDeletion, error)
	MarkSynced(ctx context.Context, entity, id string, version int64) error
	MarkSyncError(ctx context.Context, entity, id string) error
	ClearDeletion(ctx context.Context, entity, id string) error
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
	GetExpense(ctx context.Context, id string) (core.Expense, error)
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending items without a trigger (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of items per entity per cycle (default: 10)
	BatchSize int

	// MaxRetries is how many failed attempts flag a record with a sync error (default: 3)
	MaxRetries int

	// Logger receives failure records (default: the process-wide slog handler)
	Logger *applog.Logger
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		MaxRetries:   3,
	}
}

// SyncStats counts the outcome of one batch.
type SyncStats struct {
	Upserted int
	Removed  int
	Failed   int
}

// SyncProcessor copies pending ledger changes to the spreadsheet mirror.
// Deletions are applied before upserts so a re-created id ends up present.
type SyncProcessor struct {
	source SyncSource
	mirror sheets.Mirror
	config SyncProcessorConfig
	errLog *applog.StructuredLogger

	attempts map[string]int // entity/id -> consecutive failures

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	trigger chan struct{}
	batchMu sync.Mutex
}

func NewSyncProcessor(source SyncSource, mirror sheets.Mirror, config SyncProcessorConfig) *SyncProcessor {
	d := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = d.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = d.BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = d.MaxRetries
	}
	if config.Logger == nil {
		config.Logger = applog.New(applog.Config{Handler: slog.Default().Handler(), Component: applog.ComponentWorker})
	}
	return &SyncProcessor{
		source:   source,
		mirror:   mirror,
		config:   config,
		errLog:   applog.NewStructuredLogger(config.Logger),
		attempts: make(map[string]int),
		trigger:  make(chan struct{}, 1),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started",
		applog.FieldComponent, applog.ComponentWorker,
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Trigger asks the loop to run a batch now. Extra triggers while one is
// pending are coalesced.
func (p *SyncProcessor) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.runBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runBatch(ctx)
		case <-p.trigger:
			p.runBatch(ctx)
		}
	}
}

func (p *SyncProcessor) runBatch(ctx context.Context) {
	stats, err := p.ProcessBatch(ctx)
	if err != nil {
		p.errLog.LogError(ctx, "Sync batch failed", err, applog.ComponentWorker, applog.OpSync, nil)
		return
	}
	if stats != (SyncStats{}) {
		slog.InfoContext(ctx, "Sync batch processed",
			applog.FieldComponent, applog.ComponentWorker,
			"upserted", stats.Upserted,
			"removed", stats.Removed,
			"failed", stats.Failed)
	}
}

// ProcessBatch mirrors one batch of deletions and pending records. Per-record
// failures are counted, not returned; the error is for storage reads only.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) (SyncStats, error) {
	p.batchMu.Lock()
	defer p.batchMu.Unlock()

	var stats SyncStats

	deletions, err := p.source.PendingDeletions(ctx, p.config.BatchSize)
	if err != nil {
		return stats, err
	}
	for _, d := range deletions {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if err := p.remove(ctx, d); err != nil {
			stats.Failed++
			slog.WarnContext(ctx, "Mirror delete failed",
				applog.FieldEntity, d.Entity, applog.FieldRecordID, d.RecordID, "error", err)
			continue
		}
		stats.Removed++
	}

	pending, err := p.source.PendingSync(ctx, p.config.BatchSize)
	if err != nil {
		return stats, err
	}
	for _, item := range pending {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if err := p.upsert(ctx, item); err != nil {
			stats.Failed++
			p.handleFailure(ctx, item, err)
			continue
		}
		delete(p.attempts, item.Entity+"/"+item.ID)
		stats.Upserted++
	}
	return stats, nil
}

func (p *SyncProcessor) remove(ctx context.Context, d storage.PendingDeletion) error {
	var err error
	switch d.Entity {
	case storage.EntityTransaction:
		err = p.mirror.RemoveTransaction(ctx, d.RecordID)
	case storage.EntityExpense:
		err = p.mirror.RemoveExpense(ctx, d.RecordID)
	default:
		err = fmt.Errorf("unknown entity %q", d.Entity)
	}
	if err != nil {
		return err
	}
	return p.source.ClearDeletion(ctx, d.Entity, d.RecordID)
}

func (p *SyncProcessor) upsert(ctx context.Context, item storage.PendingSync) error {
	switch item.Entity {
	case storage.EntityTransaction:
		t, err := p.source.GetTransaction(ctx, item.ID)
		if errors.Is(err, core.ErrNotFound) {
			return nil // deleted since listed; the tombstone handles it
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		if err := p.mirror.UpsertTransaction(ctx, t); err != nil {
			return fmt.Errorf("mirror transaction: %w", err)
		}
	case storage.EntityExpense:
		e, err := p.source.GetExpense(ctx, item.ID)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get expense: %w", err)
		}
		if err := p.mirror.UpsertExpense(ctx, e); err != nil {
			return fmt.Errorf("mirror expense: %w", err)
		}
	default:
		return fmt.Errorf("unknown entity %q", item.Entity)
	}

	if err := p.source.MarkSynced(ctx, item.Entity, item.ID, item.Version); err != nil {
		slog.WarnContext(ctx, "Failed to mark record as synced",
			applog.FieldEntity, item.Entity, applog.FieldRecordID, item.ID, "error", err)
	}
	slog.DebugContext(ctx, "Record mirrored to Google Sheets",
		applog.FieldEntity, item.Entity, applog.FieldRecordID, item.ID, "version", item.Version)
	return nil
}

func (p *SyncProcessor) handleFailure(ctx context.Context, item storage.PendingSync, processErr error) {
	key := item.Entity + "/" + item.ID
	p.attempts[key]++
	attempt := p.attempts[key]

	slog.WarnContext(ctx, "Sync processing failed",
		applog.FieldEntity, item.Entity,
		applog.FieldRecordID, item.ID,
		"attempt", attempt,
		"error", processErr)

	if attempt < p.config.MaxRetries {
		return
	}
	delete(p.attempts, key)
	if err := p.source.MarkSyncError(ctx, item.Entity, item.ID); err != nil {
		p.errLog.LogError(ctx, "Failed to mark record sync error", err,
			applog.ComponentWorker, applog.OpSync, applog.NewFields().WithRecord(item.Entity, item.ID))
		return
	}
	fields := applog.NewFields().WithRecord(item.Entity, item.ID)
	fields["attempts"] = attempt
	p.errLog.LogError(ctx, "Record failed permanently after max retries", processErr,
		applog.ComponentWorker, applog.OpSync, fields)
}
