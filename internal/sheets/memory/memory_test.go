package memory

import (
	"context"
	"errors"
	"testing"

	"hairfolio/internal/core"
	"hairfolio/internal/sheets"
)

func TestMemoryStoreTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	tx := core.Transaction{ID: "txn_1", Date: "2024-01-05", Style: "Fade", Price: 30}
	if err := s.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateTransaction(ctx, tx); err == nil {
		t.Fatal("expected duplicate id to fail")
	}

	tx.Price = 35
	if err := s.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetTransaction(ctx, "txn_1")
	if err != nil || got.Price != 35 {
		t.Fatalf("unexpected get: %+v err=%v", got, err)
	}

	if err := s.DeleteTransaction(ctx, "txn_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, "txn_1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateTransaction(ctx, tx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	err := s.CreateExpense(context.Background(), core.Expense{ID: "exp_1", Date: "2024-01-05", Type: "Weekly", Description: "Rent", Amount: 1})
	if !errors.Is(err, core.ErrInvalidExpenseType) {
		t.Fatalf("expected ErrInvalidExpenseType, got %v", err)
	}
}

func TestMemoryStoreListFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewWithData(nil, []core.Expense{
		{ID: "b", Date: "2024-01-10", Type: core.Fixed, Description: "Rent", Amount: 500},
		{ID: "a", Date: "2024-01-10", Type: core.ShortTerm, Description: "Gel", Amount: 12},
		{ID: "c", Date: "2024-02-01", Type: core.ShortTerm, Description: "Towels", Amount: 30},
		{ID: "d", Date: "2023-12-31", Type: core.ShortTerm, Description: "Combs", Amount: 8},
	})

	got, err := s.ListExpenses(ctx, sheets.ListFilter{Start: "2024-01-01", End: "2024-01-31"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected filtered list: %+v", got)
	}

	all, _ := s.ListExpenses(ctx, sheets.ListFilter{})
	if len(all) != 4 || all[0].ID != "c" || all[3].ID != "d" {
		t.Fatalf("unexpected full list order: %+v", all)
	}
}

func TestMemoryStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := NewWithData([]core.Transaction{{ID: "old", Date: "2024-01-01", Style: "Fade", Price: 10}}, nil)

	err := s.ReplaceAll(ctx, []core.Transaction{{ID: "new", Date: "2024-02-01", Style: "Shave", Price: 20}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	txns, _ := s.ListTransactions(ctx, sheets.ListFilter{})
	if len(txns) != 1 || txns[0].ID != "new" {
		t.Fatalf("unexpected transactions after replace: %+v", txns)
	}
}

func TestMemoryStoreWriteReportCopiesRows(t *testing.T) {
	s := New()
	rows := [][]string{{"Date", "Revenue"}, {"2024-01-01", "30.00"}}
	if err := s.WriteReport(context.Background(), "Business Summary", rows); err != nil {
		t.Fatal(err)
	}
	rows[1][1] = "changed"

	got, ok := s.Report("Business Summary")
	if !ok || got[1][1] != "30.00" {
		t.Fatalf("unexpected stored report: %v", got)
	}
}
