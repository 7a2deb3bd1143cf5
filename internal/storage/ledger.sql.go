package storage

import (
	"context"
)

const createTransaction = `
INSERT INTO transactions (id, date, style, price_cents, notes)
VALUES (?, ?, ?, ?, ?)
`

type CreateTransactionParams struct {
	ID         string
	Date       string
	Style      string
	PriceCents int64
	Notes      string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.Date,
		arg.Style,
		arg.PriceCents,
		arg.Notes,
	)
	return err
}

const updateTransaction = `
UPDATE transactions
SET date = ?, style = ?, price_cents = ?, notes = ?,
    sync_status = 'pending', version = version + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateTransactionParams struct {
	Date       string
	Style      string
	PriceCents int64
	Notes      string
	ID         string
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Date,
		arg.Style,
		arg.PriceCents,
		arg.Notes,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getTransaction = `
SELECT id, date, style, price_cents, notes, sync_status, version
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRecord, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i TransactionRecord
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Style,
		&i.PriceCents,
		&i.Notes,
		&i.SyncStatus,
		&i.Version,
	)
	return i, err
}

const listTransactionsByDateRange = `
SELECT id, date, style, price_cents, notes, sync_status, version
FROM transactions
WHERE date >= ? AND date <= ?
ORDER BY date DESC, id ASC
`

type ListTransactionsByDateRangeParams struct {
	StartDate string
	EndDate   string
}

func (q *Queries) ListTransactionsByDateRange(ctx context.Context, arg ListTransactionsByDateRangeParams) ([]TransactionRecord, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByDateRange, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRecord
	for rows.Next() {
		var i TransactionRecord
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Style,
			&i.PriceCents,
			&i.Notes,
			&i.SyncStatus,
			&i.Version,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPendingSyncTransactions = `
SELECT id, date, style, price_cents, notes, sync_status, version
FROM transactions
WHERE sync_status = 'pending'
ORDER BY updated_at ASC
LIMIT ?
`

func (q *Queries) GetPendingSyncTransactions(ctx context.Context, limit int64) ([]TransactionRecord, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncTransactions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRecord
	for rows.Next() {
		var i TransactionRecord
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Style,
			&i.PriceCents,
			&i.Notes,
			&i.SyncStatus,
			&i.Version,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markTransactionSynced = `
UPDATE transactions SET sync_status = 'synced'
WHERE id = ? AND version = ?
`

type MarkSyncedParams struct {
	ID      string
	Version int64
}

func (q *Queries) MarkTransactionSynced(ctx context.Context, arg MarkSyncedParams) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, arg.ID, arg.Version)
	return err
}

const markTransactionSyncError = `
UPDATE transactions SET sync_status = 'error' WHERE id = ?
`

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markTransactionSyncError, id)
	return err
}

const queueAllTransactionDeletions = `
INSERT OR REPLACE INTO pending_deletions (entity, record_id)
SELECT 'transaction', id FROM transactions
`

func (q *Queries) QueueAllTransactionDeletions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, queueAllTransactionDeletions)
	return err
}

const deleteAllTransactions = `
DELETE FROM transactions
`

func (q *Queries) DeleteAllTransactions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransactions)
	return err
}

const createExpense = `
INSERT INTO expenses (id, date, type, description, amount_cents)
VALUES (?, ?, ?, ?, ?)
`

type CreateExpenseParams struct {
	ID          string
	Date        string
	Type        string
	Description string
	AmountCents int64
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) error {
	_, err := q.db.ExecContext(ctx, createExpense,
		arg.ID,
		arg.Date,
		arg.Type,
		arg.Description,
		arg.AmountCents,
	)
	return err
}

const updateExpense = `
UPDATE expenses
SET date = ?, type = ?, description = ?, amount_cents = ?,
    sync_status = 'pending', version = version + 1, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type UpdateExpenseParams struct {
	Date        string
	Type        string
	Description string
	AmountCents int64
	ID          string
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateExpense,
		arg.Date,
		arg.Type,
		arg.Description,
		arg.AmountCents,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteExpense = `
DELETE FROM expenses WHERE id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getExpense = `
SELECT id, date, type, description, amount_cents, sync_status, version
FROM expenses
WHERE id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id string) (ExpenseRecord, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i ExpenseRecord
	err := row.Scan(
		&i.ID,
		&i.Date,
		&i.Type,
		&i.Description,
		&i.AmountCents,
		&i.SyncStatus,
		&i.Version,
	)
	return i, err
}

const listExpensesByDateRange = `
SELECT id, date, type, description, amount_cents, sync_status, version
FROM expenses
WHERE date >= ? AND date <= ?
ORDER BY date DESC, id ASC
`

type ListExpensesByDateRangeParams struct {
	StartDate string
	EndDate   string
}

func (q *Queries) ListExpensesByDateRange(ctx context.Context, arg ListExpensesByDateRangeParams) ([]ExpenseRecord, error) {
	rows, err := q.db.QueryContext(ctx, listExpensesByDateRange, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRecord
	for rows.Next() {
		var i ExpenseRecord
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Type,
			&i.Description,
			&i.AmountCents,
			&i.SyncStatus,
			&i.Version,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPendingSyncExpenses = `
SELECT id, date, type, description, amount_cents, sync_status, version
FROM expenses
WHERE sync_status = 'pending'
ORDER BY updated_at ASC
LIMIT ?
`

func (q *Queries) GetPendingSyncExpenses(ctx context.Context, limit int64) ([]ExpenseRecord, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncExpenses, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRecord
	for rows.Next() {
		var i ExpenseRecord
		if err := rows.Scan(
			&i.ID,
			&i.Date,
			&i.Type,
			&i.Description,
			&i.AmountCents,
			&i.SyncStatus,
			&i.Version,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markExpenseSynced = `
UPDATE expenses SET sync_status = 'synced'
WHERE id = ? AND version = ?
`

func (q *Queries) MarkExpenseSynced(ctx context.Context, arg MarkSyncedParams) error {
	_, err := q.db.ExecContext(ctx, markExpenseSynced, arg.ID, arg.Version)
	return err
}

const markExpenseSyncError = `
UPDATE expenses SET sync_status = 'error' WHERE id = ?
`

func (q *Queries) MarkExpenseSyncError(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, markExpenseSyncError, id)
	return err
}

const queueAllExpenseDeletions = `
INSERT OR REPLACE INTO pending_deletions (entity, record_id)
SELECT 'expense', id FROM expenses
`

func (q *Queries) QueueAllExpenseDeletions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, queueAllExpenseDeletions)
	return err
}

const deleteAllExpenses = `
DELETE FROM expenses
`

func (q *Queries) DeleteAllExpenses(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllExpenses)
	return err
}

const createPendingDeletion = `
INSERT OR REPLACE INTO pending_deletions (entity, record_id) VALUES (?, ?)
`

func (q *Queries) CreatePendingDeletion(ctx context.Context, arg PendingDeletion) error {
	_, err := q.db.ExecContext(ctx, createPendingDeletion, arg.Entity, arg.RecordID)
	return err
}

const listPendingDeletions = `
SELECT entity, record_id FROM pending_deletions
ORDER BY deleted_at ASC
LIMIT ?
`

func (q *Queries) ListPendingDeletions(ctx context.Context, limit int64) ([]PendingDeletion, error) {
	rows, err := q.db.QueryContext(ctx, listPendingDeletions, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PendingDeletion
	for rows.Next() {
		var i PendingDeletion
		if err := rows.Scan(&i.Entity, &i.RecordID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deletePendingDeletion = `
DELETE FROM pending_deletions WHERE entity = ? AND record_id = ?
`

func (q *Queries) DeletePendingDeletion(ctx context.Context, arg PendingDeletion) error {
	_, err := q.db.ExecContext(ctx, deletePendingDeletion, arg.Entity, arg.RecordID)
	return err
}
