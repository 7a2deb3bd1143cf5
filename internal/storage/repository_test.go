package storage

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfolio/internal/core"
	"hairfolio/internal/sheets"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "hairfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_TransactionCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	txn := core.Transaction{ID: "txn_1", Date: "2024-01-10", Style: "Fade", Price: 25.5, Notes: "regular"}
	require.NoError(t, repo.CreateTransaction(ctx, txn))

	got, err := repo.GetTransaction(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, txn, got)

	txn.Price = 30
	txn.Style = "Buzz Cut"
	require.NoError(t, repo.UpdateTransaction(ctx, txn))
	got, err = repo.GetTransaction(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, 30.0, got.Price)
	assert.Equal(t, "Buzz Cut", got.Style)

	require.NoError(t, repo.DeleteTransaction(ctx, "txn_1"))
	_, err = repo.GetTransaction(ctx, "txn_1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	assert.ErrorIs(t, repo.DeleteTransaction(ctx, "txn_1"), core.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateTransaction(ctx, txn), core.ErrNotFound)
}

func TestSQLiteRepository_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	err := repo.CreateTransaction(ctx, core.Transaction{ID: "txn_1", Date: "2024-01-10", Price: 10})
	assert.ErrorIs(t, err, core.ErrEmptyStyle)

	err = repo.CreateExpense(ctx, core.Expense{ID: "exp_1", Date: "2024-01-10", Type: "Weekly", Description: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidExpenseType)

	require.NoError(t, repo.CreateTransaction(ctx, core.Transaction{ID: "txn_1", Date: "2024-01-10", Style: "Fade", Price: 10}))
	assert.Error(t, repo.CreateTransaction(ctx, core.Transaction{ID: "txn_1", Date: "2024-01-11", Style: "Fade", Price: 10}))
}

func TestSQLiteRepository_ListByDateRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, txn := range []core.Transaction{
		{ID: "txn_b", Date: "2024-01-05", Style: "Fade", Price: 20},
		{ID: "txn_a", Date: "2024-01-05", Style: "Trim", Price: 15},
		{ID: "txn_c", Date: "2024-02-01", Style: "Beard", Price: 12},
		{ID: "txn_d", Date: "2023-12-31", Style: "Fade", Price: 20},
	} {
		require.NoError(t, repo.CreateTransaction(ctx, txn))
	}

	got, err := repo.ListTransactions(ctx, sheets.ListFilter{Start: "2024-01-01", End: "2024-01-31"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "txn_a", got[0].ID)
	assert.Equal(t, "txn_b", got[1].ID)

	all, err := repo.ListTransactions(ctx, sheets.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "txn_c", all[0].ID)
	assert.Equal(t, "txn_d", all[3].ID)
}

func TestSQLiteRepository_ExpenseCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	exp := core.Expense{ID: "exp_1", Date: "2024-01-03", Type: core.Fixed, Description: "Rent", Amount: 1200}
	require.NoError(t, repo.CreateExpense(ctx, exp))

	got, err := repo.GetExpense(ctx, "exp_1")
	require.NoError(t, err)
	assert.Equal(t, exp, got)

	exp.Type = core.ShortTerm
	exp.Amount = 99.99
	require.NoError(t, repo.UpdateExpense(ctx, exp))

	list, err := repo.ListExpenses(ctx, sheets.ListFilter{Start: "2024-01-01"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, core.ShortTerm, list[0].Type)
	assert.Equal(t, 99.99, list[0].Amount)

	require.NoError(t, repo.DeleteExpense(ctx, "exp_1"))
	_, err = repo.GetExpense(ctx, "exp_1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteRepository_DuplicateIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	txn := core.Transaction{ID: "txn_1", Date: "2024-01-10", Style: "Fade", Price: 25}
	require.NoError(t, repo.CreateTransaction(ctx, txn))
	err := repo.CreateTransaction(ctx, txn)
	assert.ErrorIs(t, err, core.ErrDuplicateID)

	exp := core.Expense{ID: "exp_1", Date: "2024-01-03", Type: core.Fixed, Description: "Rent", Amount: 1200}
	require.NoError(t, repo.CreateExpense(ctx, exp))
	assert.ErrorIs(t, repo.CreateExpense(ctx, exp), core.ErrDuplicateID)

	// Repeated ids inside one replacement roll the whole swap back.
	err = repo.ReplaceAll(ctx, []core.Transaction{txn, txn}, nil)
	assert.ErrorIs(t, err, core.ErrDuplicateID)
	got, err := repo.GetTransaction(ctx, "txn_1")
	require.NoError(t, err)
	assert.Equal(t, txn, got)
}

func TestSQLiteRepository_SyncTracking(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	txn := core.Transaction{ID: "txn_1", Date: "2024-01-10", Style: "Fade", Price: 25}
	require.NoError(t, repo.CreateTransaction(ctx, txn))
	require.NoError(t, repo.CreateExpense(ctx, core.Expense{ID: "exp_1", Date: "2024-01-10", Type: core.Fixed, Description: "Rent", Amount: 100}))

	pending, err := repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []PendingSync{
		{Entity: EntityTransaction, ID: "txn_1", Version: 1},
		{Entity: EntityExpense, ID: "exp_1", Version: 1},
	}, pending)

	// Update bumps the version, so marking the stale version is a no-op.
	txn.Price = 30
	require.NoError(t, repo.UpdateTransaction(ctx, txn))
	require.NoError(t, repo.MarkSynced(ctx, EntityTransaction, "txn_1", 1))
	require.NoError(t, repo.MarkSynced(ctx, EntityExpense, "exp_1", 1))

	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []PendingSync{{Entity: EntityTransaction, ID: "txn_1", Version: 2}}, pending)

	require.NoError(t, repo.MarkSyncError(ctx, EntityTransaction, "txn_1"))
	pending, err = repo.PendingSync(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.Error(t, repo.MarkSynced(ctx, "invoice", "x", 1))
}

func TestSQLiteRepository_DeleteQueuesTombstone(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateTransaction(ctx, core.Transaction{ID: "txn_1", Date: "2024-01-10", Style: "Fade", Price: 25}))
	require.NoError(t, repo.DeleteTransaction(ctx, "txn_1"))

	dels, err := repo.PendingDeletions(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []PendingDeletion{{Entity: EntityTransaction, RecordID: "txn_1"}}, dels)

	require.NoError(t, repo.ClearDeletion(ctx, EntityTransaction, "txn_1"))
	dels, err = repo.PendingDeletions(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, dels)
}

func TestSQLiteRepository_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.CreateTransaction(ctx, core.Transaction{ID: "txn_old", Date: "2024-01-10", Style: "Fade", Price: 25}))
	require.NoError(t, repo.CreateExpense(ctx, core.Expense{ID: "exp_old", Date: "2024-01-10", Type: core.Fixed, Description: "Rent", Amount: 100}))

	err := repo.ReplaceAll(ctx,
		[]core.Transaction{{ID: "txn_new", Date: "2024-02-01", Style: "Trim", Price: 18}},
		[]core.Expense{{ID: "exp_new", Date: "2024-02-02", Type: core.ShortTerm, Description: "Towels", Amount: 40}},
	)
	require.NoError(t, err)

	txns, err := repo.ListTransactions(ctx, sheets.ListFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "txn_new", txns[0].ID)

	exps, err := repo.ListExpenses(ctx, sheets.ListFilter{})
	require.NoError(t, err)
	require.Len(t, exps, 1)
	assert.Equal(t, "exp_new", exps[0].ID)

	dels, err := repo.PendingDeletions(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []PendingDeletion{
		{Entity: EntityTransaction, RecordID: "txn_old"},
		{Entity: EntityExpense, RecordID: "exp_old"},
	}, dels)

	// An invalid record aborts before anything is touched.
	err = repo.ReplaceAll(ctx, []core.Transaction{{ID: "bad", Date: "nope", Style: "x"}}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	txns, err = repo.ListTransactions(ctx, sheets.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestSQLiteRepository_DeleteMissingRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM transactions WHERE id = ?")).
		WithArgs("txn_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := newRepositoryWithDB(db)
	err = repo.DeleteTransaction(context.Background(), "txn_missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_QueryErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery(regexp.QuoteMeta("FROM transactions")).
		WithArgs(minDate, maxDate).
		WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta("FROM expenses")).
		WithArgs("exp_1").
		WillReturnError(boom)

	repo := newRepositoryWithDB(db)

	_, err = repo.ListTransactions(context.Background(), sheets.ListFilter{})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list transactions")

	_, err = repo.GetExpense(context.Background(), "exp_1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, core.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_ReplaceAllRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT OR REPLACE INTO pending_deletions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT OR REPLACE INTO pending_deletions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM transactions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM expenses").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transactions").WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	repo := newRepositoryWithDB(db)
	err = repo.ReplaceAll(context.Background(),
		[]core.Transaction{{ID: "txn_1", Date: "2024-01-01", Style: "Fade", Price: 10}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert transaction: txn_1")
	assert.NoError(t, mock.ExpectationsWereMet())
}
