package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"hairfolio/internal/core"
	"hairfolio/internal/sheets"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	minDate = "0000-01-01"
	maxDate = "9999-12-31"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// PendingSync identifies a record whose latest version has not reached the mirror yet.
type PendingSync struct {
	Entity  string
	ID      string
	Version int64
}

// duplicateOr maps a primary key or unique violation onto core.ErrDuplicateID.
func duplicateOr(err error, id string) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return fmt.Errorf("%s: %w", id, core.ErrDuplicateID)
		}
	}
	return fmt.Errorf("%s: %w", id, err)
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepositoryWithDB(db), nil
}

func newRepositoryWithDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var _ sheets.Ledger = (*SQLiteRepository)(nil)

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		ID:         t.ID,
		Date:       t.Date,
		Style:      t.Style,
		PriceCents: core.ToCents(t.Price),
		Notes:      t.Notes,
	})
	if err != nil {
		return fmt.Errorf("create transaction: %w", duplicateOr(err, t.ID))
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"style", t.Style,
		"date", t.Date)
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		Date:       t.Date,
		Style:      t.Style,
		PriceCents: core.ToCents(t.Price),
		Notes:      t.Notes,
		ID:         t.ID,
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes the row and leaves a tombstone for the mirror.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.deleteWithTombstone(ctx, EntityTransaction, id, func(q *Queries) (int64, error) {
		return q.DeleteTransaction(ctx, id)
	})
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	rec, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return rec.toCore(), nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f sheets.ListFilter) ([]core.Transaction, error) {
	recs, err := r.queries.ListTransactionsByDateRange(ctx, rangeParams(f))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(recs))
	for i, rec := range recs {
		out[i] = rec.toCore()
	}
	return out, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		ID:          e.ID,
		Date:        e.Date,
		Type:        e.Type.String(),
		Description: e.Description,
		AmountCents: core.ToCents(e.Amount),
	})
	if err != nil {
		return fmt.Errorf("create expense: %w", duplicateOr(err, e.ID))
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"type", e.Type,
		"date", e.Date)
	return nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	n, err := r.queries.UpdateExpense(ctx, UpdateExpenseParams{
		Date:        e.Date,
		Type:        e.Type.String(),
		Description: e.Description,
		AmountCents: core.ToCents(e.Amount),
		ID:          e.ID,
	})
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteWithTombstone(ctx, EntityExpense, id, func(q *Queries) (int64, error) {
		return q.DeleteExpense(ctx, id)
	})
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	rec, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return rec.toCore(), nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, f sheets.ListFilter) ([]core.Expense, error) {
	recs, err := r.queries.ListExpensesByDateRange(ctx, ListExpensesByDateRangeParams(rangeParams(f)))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, len(recs))
	for i, rec := range recs {
		out[i] = rec.toCore()
	}
	return out, nil
}

// ReplaceAll swaps the ledger contents in one transaction. Every replaced id is
// queued for removal from the mirror before the new rows are inserted as pending.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, txns []core.Transaction, exps []core.Expense) error {
	for _, t := range txns {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
	}
	for _, e := range exps {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("expense %s: %w", e.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.QueueAllTransactionDeletions(ctx); err != nil {
		return fmt.Errorf("queue transaction deletions: %w", err)
	}
	if err := q.QueueAllExpenseDeletions(ctx); err != nil {
		return fmt.Errorf("queue expense deletions: %w", err)
	}
	if err := q.DeleteAllTransactions(ctx); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if err := q.DeleteAllExpenses(ctx); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	for _, t := range txns {
		if err := q.CreateTransaction(ctx, CreateTransactionParams{
			ID:         t.ID,
			Date:       t.Date,
			Style:      t.Style,
			PriceCents: core.ToCents(t.Price),
			Notes:      t.Notes,
		}); err != nil {
			return fmt.Errorf("insert transaction: %w", duplicateOr(err, t.ID))
		}
	}
	for _, e := range exps {
		if err := q.CreateExpense(ctx, CreateExpenseParams{
			ID:          e.ID,
			Date:        e.Date,
			Type:        e.Type.String(),
			Description: e.Description,
			AmountCents: core.ToCents(e.Amount),
		}); err != nil {
			return fmt.Errorf("insert expense: %w", duplicateOr(err, e.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Ledger replaced",
		"transactions", len(txns),
		"expenses", len(exps))
	return nil
}

// PendingSync returns up to limit records per entity waiting for the mirror.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]PendingSync, error) {
	txns, err := r.queries.GetPendingSyncTransactions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	exps, err := r.queries.GetPendingSyncExpenses(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync expenses: %w", err)
	}

	out := make([]PendingSync, 0, len(txns)+len(exps))
	for _, t := range txns {
		out = append(out, PendingSync{Entity: EntityTransaction, ID: t.ID, Version: t.Version})
	}
	for _, e := range exps {
		out = append(out, PendingSync{Entity: EntityExpense, ID: e.ID, Version: e.Version})
	}
	return out, nil
}

// MarkSynced flags the record as mirrored, unless it changed since version was read.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, entity, id string, version int64) error {
	arg := MarkSyncedParams{ID: id, Version: version}
	var err error
	switch entity {
	case EntityTransaction:
		err = r.queries.MarkTransactionSynced(ctx, arg)
	case EntityExpense:
		err = r.queries.MarkExpenseSynced(ctx, arg)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
	if err != nil {
		return fmt.Errorf("mark %s synced: %w", entity, err)
	}

	slog.DebugContext(ctx, "Record marked as synced", "entity", entity, "id", id, "version", version)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, entity, id string) error {
	var err error
	switch entity {
	case EntityTransaction:
		err = r.queries.MarkTransactionSyncError(ctx, id)
	case EntityExpense:
		err = r.queries.MarkExpenseSyncError(ctx, id)
	default:
		return fmt.Errorf("unknown entity %q", entity)
	}
	if err != nil {
		return fmt.Errorf("mark %s sync error: %w", entity, err)
	}

	slog.WarnContext(ctx, "Record marked with sync error", "entity", entity, "id", id)
	return nil
}

func (r *SQLiteRepository) PendingDeletions(ctx context.Context, limit int) ([]PendingDeletion, error) {
	items, err := r.queries.ListPendingDeletions(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending deletions: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) ClearDeletion(ctx context.Context, entity, id string) error {
	if err := r.queries.DeletePendingDeletion(ctx, PendingDeletion{Entity: entity, RecordID: id}); err != nil {
		return fmt.Errorf("clear pending deletion: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) deleteWithTombstone(ctx context.Context, entity, id string, del func(*Queries) (int64, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	n, err := del(q)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	if err := q.CreatePendingDeletion(ctx, PendingDeletion{Entity: entity, RecordID: id}); err != nil {
		return fmt.Errorf("queue %s deletion: %w", entity, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	slog.InfoContext(ctx, "Record deleted from SQLite", "entity", entity, "id", id)
	return nil
}

func rangeParams(f sheets.ListFilter) ListTransactionsByDateRangeParams {
	p := ListTransactionsByDateRangeParams{StartDate: f.Start, EndDate: f.End}
	if p.StartDate == "" {
		p.StartDate = minDate
	}
	if p.EndDate == "" {
		p.EndDate = maxDate
	}
	return p
}

func (rec TransactionRecord) toCore() core.Transaction {
	return core.Transaction{
		ID:    rec.ID,
		Date:  rec.Date,
		Style: rec.Style,
		Price: core.FromCents(rec.PriceCents),
		Notes: rec.Notes,
	}
}

func (rec ExpenseRecord) toCore() core.Expense {
	return core.Expense{
		ID:          rec.ID,
		Date:        rec.Date,
		Type:        core.ExpenseType(rec.Type),
		Description: rec.Description,
		Amount:      core.FromCents(rec.AmountCents),
	}
}
