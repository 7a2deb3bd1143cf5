package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hairfolio/internal/amqp"
	"hairfolio/internal/core"
	"hairfolio/internal/services"
	"hairfolio/internal/sheets/memory"
	"hairfolio/internal/storage"
)

// chanConsumer hands every message from msgs to the handler.
type chanConsumer struct {
	msgs chan *amqp.RecordChangeMessage
}

func (c *chanConsumer) ConsumeRecordChanges(ctx context.Context, handler func(context.Context, *amqp.RecordChangeMessage) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m := <-c.msgs:
			if err := handler(ctx, m); err != nil {
				return err
			}
		}
	}
}

func newRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "worker.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSyncWorker_StartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	mirror := memory.New()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.CreateTransaction(ctx, core.Transaction{ID: id, Date: "2024-01-10", Style: "Fade", Price: 20}); err != nil {
			t.Fatal(err)
		}
	}

	processor := services.NewSyncProcessor(repo, mirror, services.SyncProcessorConfig{BatchSize: 1})
	w := NewSyncWorker(&chanConsumer{}, processor)

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, err := mirror.GetTransaction(ctx, id); err != nil {
			t.Errorf("transaction %s not mirrored: %v", id, err)
		}
	}
}

func TestSyncWorker_RunMirrorsOnMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newRepo(t)
	mirror := memory.New()
	processor := services.NewSyncProcessor(repo, mirror, services.SyncProcessorConfig{PollInterval: time.Hour})
	consumer := &chanConsumer{msgs: make(chan *amqp.RecordChangeMessage, 4)}
	w := NewSyncWorker(consumer, processor)

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	if err := repo.CreateExpense(ctx, core.Expense{ID: "e1", Date: "2024-01-05", Type: core.Fixed, Description: "Rent", Amount: 500}); err != nil {
		t.Fatal(err)
	}
	consumer.msgs <- &amqp.RecordChangeMessage{Entity: "bogus"} // dropped
	consumer.msgs <- amqp.NewRecordChangeMessage(amqp.EntityExpense, "e1", amqp.OpUpsert)

	deadline := time.After(2 * time.Second)
	for {
		if _, err := mirror.GetExpense(ctx, "e1"); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expense was not mirrored")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if processor.IsRunning() {
		t.Error("processor should be stopped after Run returns")
	}
}
