package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfolio/internal/amqp"
	"hairfolio/internal/core"
	"hairfolio/internal/report"
	"hairfolio/internal/sheets"
	"hairfolio/internal/sheets/memory"
)

type published struct {
	entity amqp.Entity
	id     string
	op     amqp.Op
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) PublishRecordChange(_ context.Context, entity amqp.Entity, id string, op amqp.Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{entity, id, op})
	return f.err
}

func TestLedger_CreateTransactionAssignsID(t *testing.T) {
	pub := &fakePublisher{}
	l := NewLedger(memory.New(), pub)
	changes := 0
	l.OnChange(func() { changes++ })

	got, err := l.CreateTransaction(context.Background(), core.Transaction{
		Date: "2024-01-10", Style: "  Fade ", Price: 25,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.ID, "txn_"))
	assert.Equal(t, "Fade", got.Style)
	assert.Equal(t, 1, changes)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, published{amqp.EntityTransaction, got.ID, amqp.OpUpsert}, pub.msgs[0])

	stored, err := l.GetTransaction(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestLedger_RejectsInvalidRecords(t *testing.T) {
	pub := &fakePublisher{}
	l := NewLedger(memory.New(), pub)
	ctx := context.Background()

	_, err := l.CreateTransaction(ctx, core.Transaction{Date: "2024-13-01", Style: "Fade", Price: 10})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, err = l.CreateExpense(ctx, core.Expense{Date: "2024-01-01", Type: "Monthly", Description: "Rent", Amount: 10})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.ErrorIs(t, err, core.ErrInvalidExpenseType)

	assert.Empty(t, pub.msgs)
}

func TestLedger_PublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	l := NewLedger(memory.New(), pub)

	e, err := l.CreateExpense(context.Background(), core.Expense{
		Date: "2024-01-05", Type: core.Fixed, Description: "Rent", Amount: 500,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(e.ID, "exp_"))

	list, err := l.ListExpenses(context.Background(), sheets.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestLedger_UpdateAndDelete(t *testing.T) {
	pub := &fakePublisher{}
	store := memory.NewWithData([]core.Transaction{{ID: "t1", Date: "2024-01-10", Style: "Fade", Price: 25}}, nil)
	l := NewLedger(store, pub)
	ctx := context.Background()

	_, err := l.UpdateTransaction(ctx, core.Transaction{ID: "t1", Date: "2024-01-10", Style: "Shave", Price: 30})
	require.NoError(t, err)

	_, err = l.UpdateTransaction(ctx, core.Transaction{ID: "missing", Date: "2024-01-10", Style: "Shave", Price: 30})
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, l.DeleteTransaction(ctx, "t1"))
	assert.ErrorIs(t, l.DeleteTransaction(ctx, "t1"), core.ErrNotFound)

	assert.Equal(t, []published{
		{amqp.EntityTransaction, "t1", amqp.OpUpsert},
		{amqp.EntityTransaction, "t1", amqp.OpDelete},
	}, pub.msgs)
}

func TestLedger_WithoutPublisher(t *testing.T) {
	l := NewLedger(memory.New(), nil)
	_, err := l.CreateTransaction(context.Background(), core.Transaction{Date: "2024-01-10", Style: "Fade", Price: 25})
	assert.NoError(t, err)
}

func TestLedger_ReplaceAll(t *testing.T) {
	store := memory.NewWithData([]core.Transaction{{ID: "old", Date: "2024-01-01", Style: "Fade", Price: 10}}, nil)
	l := NewLedger(store, nil)
	changes := 0
	l.OnChange(func() { changes++ })
	ctx := context.Background()

	err := l.ReplaceAll(ctx,
		[]core.Transaction{{Date: "2024-02-01", Style: "Shave", Price: 20}},
		[]core.Expense{{ID: "e1", Date: "2024-02-02", Type: core.ShortTerm, Description: "Towels", Amount: 8}},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, changes)

	txns, err := l.ListTransactions(ctx, sheets.ListFilter{})
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Shave", txns[0].Style)
	assert.True(t, strings.HasPrefix(txns[0].ID, "txn_"))

	err = l.ReplaceAll(ctx, []core.Transaction{{Date: "bad", Style: "x"}}, nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	txns, _ = l.ListTransactions(ctx, sheets.ListFilter{})
	assert.Len(t, txns, 1, "failed replace must leave the ledger untouched")
}

func TestLedger_TrimsDatesSoReportsSeeRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := NewLedger(store, nil)

	txn, err := l.CreateTransaction(ctx, core.Transaction{Date: " 2024-01-05 ", Style: "Fade", Price: 30})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", txn.Date)

	exp, err := l.CreateExpense(ctx, core.Expense{Date: "2024-01-06\t", Type: " Fixed", Description: "Rent", Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", exp.Date)
	assert.Equal(t, core.Fixed, exp.Type)

	r := NewReports(store, ReportsConfig{})
	rep, err := r.Generate(ctx, report.KindBusinessSummary, report.DateRange{Start: "2024-01-01", End: "2024-01-31"}, report.Params{})
	require.NoError(t, err)
	summary := rep.(report.BusinessSummary)
	assert.Equal(t, 30.0, summary.TotalRevenue)
	assert.Equal(t, 10.0, summary.TotalExpenses)
	assert.Equal(t, 1, summary.TotalCustomers)
}
