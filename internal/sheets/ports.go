package sheets

import (
	"context"

	"hairfolio/internal/core"
)

// ListFilter restricts listings to an inclusive date range. Empty bounds are open.
type ListFilter struct {
	Start string
	End   string
}

// Match reports whether date satisfies the filter.
func (f ListFilter) Match(date string) bool {
	if f.Start != "" && date < f.Start {
		return false
	}
	if f.End != "" && date > f.End {
		return false
	}
	return true
}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		CreateTransaction(ctx context.Context, t core.Transaction) error
		// UpdateTransaction replaces the stored record; core.ErrNotFound if absent.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	TransactionReader interface {
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		// ListTransactions returns records most recent first.
		ListTransactions(ctx context.Context, f ListFilter) ([]core.Transaction, error)
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.Expense) error
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	ExpenseReader interface {
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		ListExpenses(ctx context.Context, f ListFilter) ([]core.Expense, error)
	}

	// Replacer swaps the whole ledger in one step (backup restore).
	Replacer interface {
		ReplaceAll(ctx context.Context, txns []core.Transaction, exps []core.Expense) error
	}

	// Ledger is everything a storage backend provides.
	Ledger interface {
		TransactionWriter
		TransactionReader
		ExpenseWriter
		ExpenseReader
		Replacer
	}

	// Mirror keeps a remote copy of ledger records keyed by id.
	Mirror interface {
		UpsertTransaction(ctx context.Context, t core.Transaction) error
		UpsertExpense(ctx context.Context, e core.Expense) error
		RemoveTransaction(ctx context.Context, id string) error
		RemoveExpense(ctx context.Context, id string) error
	}

	// ReportWriter publishes a rendered report as a tab of rows.
	ReportWriter interface {
		WriteReport(ctx context.Context, title string, rows [][]string) error
	}
)
