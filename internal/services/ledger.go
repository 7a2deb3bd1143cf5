package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"hairfolio/internal/amqp"
	"hairfolio/internal/core"
	applog "hairfolio/internal/log"
	"hairfolio/internal/sheets"
)

// ErrInvalidRecord wraps every record validation failure.
var ErrInvalidRecord = errors.New("invalid record")

// Publisher announces ledger changes to the sync worker.
type Publisher interface {
	PublishRecordChange(ctx context.Context, entity amqp.Entity, id string, op amqp.Op) error
}

// Ledger orchestrates record writes across the store and the optional
// change publisher, and tells listeners (the report snapshot) when data moved.
type Ledger struct {
	store     sheets.Ledger
	publisher Publisher
	logger    *applog.StructuredLogger

	mu        sync.RWMutex
	listeners []func()
}

// NewLedger wraps store. publisher may be nil when AMQP is disabled.
func NewLedger(store sheets.Ledger, publisher Publisher) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		logger:    applog.NewStructuredLogger(applog.FromContext(context.Background()).WithComponent(applog.ComponentLedger)),
	}
}

// OnChange registers fn to run after every successful write.
func (l *Ledger) OnChange(fn func()) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

func (l *Ledger) notify() {
	l.mu.RLock()
	listeners := l.listeners
	l.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}

func (l *Ledger) changed(ctx context.Context, op string, entity amqp.Entity, id string) {
	l.notify()
	l.logger.LogRecordChanged(ctx, op, string(entity), id)

	amqpOp := amqp.OpUpsert
	if op == applog.OpDelete {
		amqpOp = amqp.OpDelete
	}
	l.publish(ctx, entity, id, amqpOp)
}

func (l *Ledger) publish(ctx context.Context, entity amqp.Entity, id string, op amqp.Op) {
	if l.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping record change", "entity", entity, "id", id)
		return
	}
	if err := l.publisher.PublishRecordChange(ctx, entity, id, op); err != nil {
		// The record is stored; the worker's poll picks it up later.
		slog.ErrorContext(ctx, "Failed to publish record change",
			"entity", entity, "id", id, "op", op, "error", err)
	}
}

func normalizeTransaction(t core.Transaction) core.Transaction {
	t.ID = strings.TrimSpace(t.ID)
	t.Date = strings.TrimSpace(t.Date)
	t.Style = strings.TrimSpace(t.Style)
	t.Notes = strings.TrimSpace(t.Notes)
	return t
}

func normalizeExpense(e core.Expense) core.Expense {
	e.ID = strings.TrimSpace(e.ID)
	e.Date = strings.TrimSpace(e.Date)
	e.Type = core.ExpenseType(strings.TrimSpace(string(e.Type)))
	e.Description = strings.TrimSpace(e.Description)
	return e
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
}

// CreateTransaction stores t, assigning a txn_ id when it has none.
func (l *Ledger) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = normalizeTransaction(t)
	if t.ID == "" {
		t.ID = core.NewID("txn")
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	if err := l.store.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	l.changed(ctx, applog.OpCreate, amqp.EntityTransaction, t.ID)
	return t, nil
}

func (l *Ledger) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t = normalizeTransaction(t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	if err := l.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	l.changed(ctx, applog.OpUpdate, amqp.EntityTransaction, t.ID)
	return t, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	l.changed(ctx, applog.OpDelete, amqp.EntityTransaction, id)
	return nil
}

func (l *Ledger) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, id)
}

// ListTransactions returns records inside f, most recent first.
func (l *Ledger) ListTransactions(ctx context.Context, f sheets.ListFilter) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx, f)
}

// CreateExpense stores e, assigning an exp_ id when it has none.
func (l *Ledger) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e = normalizeExpense(e)
	if e.ID == "" {
		e.ID = core.NewID("exp")
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}
	if err := l.store.CreateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	l.changed(ctx, applog.OpCreate, amqp.EntityExpense, e.ID)
	return e, nil
}

func (l *Ledger) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e = normalizeExpense(e)
	if err := e.Validate(); err != nil {
		return core.Expense{}, invalid(err)
	}
	if err := l.store.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense %s: %w", e.ID, err)
	}
	l.changed(ctx, applog.OpUpdate, amqp.EntityExpense, e.ID)
	return e, nil
}

func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	if err := l.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	l.changed(ctx, applog.OpDelete, amqp.EntityExpense, id)
	return nil
}

func (l *Ledger) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return l.store.GetExpense(ctx, id)
}

func (l *Ledger) ListExpenses(ctx context.Context, f sheets.ListFilter) ([]core.Expense, error) {
	return l.store.ListExpenses(ctx, f)
}

// ReplaceAll swaps the whole ledger. Records without an id get one. No
// per-record messages are published; the worker's poll mirrors the result.
func (l *Ledger) ReplaceAll(ctx context.Context, txns []core.Transaction, exps []core.Expense) error {
	for i := range txns {
		txns[i] = normalizeTransaction(txns[i])
		if txns[i].ID == "" {
			txns[i].ID = core.NewID("txn")
		}
		if err := txns[i].Validate(); err != nil {
			return invalid(fmt.Errorf("transaction %d: %w", i, err))
		}
	}
	for i := range exps {
		exps[i] = normalizeExpense(exps[i])
		if exps[i].ID == "" {
			exps[i].ID = core.NewID("exp")
		}
		if err := exps[i].Validate(); err != nil {
			return invalid(fmt.Errorf("expense %d: %w", i, err))
		}
	}

	if err := l.store.ReplaceAll(ctx, txns, exps); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}

	l.notify()
	slog.InfoContext(ctx, "Ledger replaced",
		applog.FieldComponent, applog.ComponentLedger,
		"transactions", len(txns),
		"expenses", len(exps))
	return nil
}
