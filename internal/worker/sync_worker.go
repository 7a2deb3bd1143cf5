package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hairfolio/internal/amqp"
	applog "hairfolio/internal/log"
	"hairfolio/internal/services"
)

// startupRounds caps the batches drained before consuming messages.
const startupRounds = 50

// Consumer delivers record-change messages until ctx is done.
type Consumer interface {
	ConsumeRecordChanges(ctx context.Context, handler func(context.Context, *amqp.RecordChangeMessage) error) error
}

// SyncWorker mirrors ledger changes to Google Sheets. AMQP messages wake the
// processor; its poll interval covers lost messages and worker downtime.
type SyncWorker struct {
	consumer  Consumer
	processor *services.SyncProcessor
	logger    *applog.Logger
}

func NewSyncWorker(consumer Consumer, processor *services.SyncProcessor) *SyncWorker {
	return &SyncWorker{
		consumer:  consumer,
		processor: processor,
		logger:    applog.FromContext(context.Background()).WithComponent(applog.ComponentWorker),
	}
}

// HandleRecordChange validates msg and schedules a sync batch. The message
// only says something changed; the batch reads current state from storage.
func (w *SyncWorker) HandleRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if err := msg.Validate(); err != nil {
		w.logger.WarnContext(ctx, "Dropping invalid record change", "error", err)
		return nil
	}
	w.logger.DebugContext(ctx, "Processing record change",
		applog.FieldEntity, msg.Entity,
		applog.FieldRecordID, msg.ID,
		applog.FieldOperation, msg.Op)
	w.processor.Trigger()
	return nil
}

// StartupSyncCheck drains records left pending while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	var total services.SyncStats
	for i := 0; i < startupRounds; i++ {
		stats, err := w.processor.ProcessBatch(ctx)
		if err != nil {
			return fmt.Errorf("startup sync: %w", err)
		}
		total.Upserted += stats.Upserted
		total.Removed += stats.Removed
		total.Failed += stats.Failed
		if stats.Upserted == 0 && stats.Removed == 0 {
			break
		}
	}

	if total == (services.SyncStats{}) {
		w.logger.InfoContext(ctx, "No pending records found on startup")
		return nil
	}
	w.logger.InfoContext(ctx, "Startup sync completed",
		"upserted", total.Upserted,
		"removed", total.Removed,
		"errors", total.Failed)
	return nil
}

// Run drains pending records, starts the poll loop and consumes messages
// until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context) error {
	if err := w.StartupSyncCheck(ctx); err != nil {
		applog.NewStructuredLogger(w.logger).LogError(ctx, "Startup sync check failed", err,
			applog.ComponentWorker, applog.OpStartup, nil)
	}

	if err := w.processor.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := w.processor.Stop(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Sync processor stop failed", "error", err)
		}
	}()

	w.logger.InfoContext(ctx, "Sync worker consuming record changes")
	err := w.consumer.ConsumeRecordChanges(ctx, w.HandleRecordChange)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
