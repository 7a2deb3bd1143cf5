package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hairfolio/internal/core"
	"hairfolio/internal/sheets"
)

var (
	_ sheets.Ledger       = (*Store)(nil)
	_ sheets.Mirror       = (*Store)(nil)
	_ sheets.ReportWriter = (*Store)(nil)
)

// Store is an in-memory ledger. It also records mirrored rows and written
// reports so it can stand in for the spreadsheet in tests and local runs.
type Store struct {
	mu      sync.Mutex
	txns    map[string]core.Transaction
	exps    map[string]core.Expense
	reports map[string][][]string
}

func New() *Store {
	return &Store{
		txns:    make(map[string]core.Transaction),
		exps:    make(map[string]core.Expense),
		reports: make(map[string][][]string),
	}
}

// NewWithData returns a store preloaded with records.
func NewWithData(txns []core.Transaction, exps []core.Expense) *Store {
	s := New()
	for _, t := range txns {
		s.txns[t.ID] = t
	}
	for _, e := range exps {
		s.exps[e.ID] = e
	}
	return s
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[t.ID]; ok {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrDuplicateID)
	}
	s.txns[t.ID] = t
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[t.ID]; !ok {
		return core.ErrNotFound
	}
	s.txns[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txns[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.txns, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, f sheets.ListFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txns))
	for _, t := range s.txns {
		if f.Match(t.Date) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exps[e.ID]; ok {
		return fmt.Errorf("expense %s: %w", e.ID, core.ErrDuplicateID)
	}
	s.exps[e.ID] = e
	return nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exps[e.ID]; !ok {
		return core.ErrNotFound
	}
	s.exps[e.ID] = e
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exps[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.exps, id)
	return nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exps[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListExpenses(_ context.Context, f sheets.ListFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.exps))
	for _, e := range s.exps {
		if f.Match(e.Date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ReplaceAll(_ context.Context, txns []core.Transaction, exps []core.Expense) error {
	nt := make(map[string]core.Transaction, len(txns))
	for _, t := range txns {
		nt[t.ID] = t
	}
	ne := make(map[string]core.Expense, len(exps))
	for _, e := range exps {
		ne[e.ID] = e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns, s.exps = nt, ne
	return nil
}

// Mirror methods: the memory store mirrors into itself.

func (s *Store) UpsertTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns[t.ID] = t
	return nil
}

func (s *Store) UpsertExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exps[e.ID] = e
	return nil
}

func (s *Store) RemoveTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.txns, id)
	return nil
}

func (s *Store) RemoveExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.exps, id)
	return nil
}

func (s *Store) WriteReport(_ context.Context, title string, rows [][]string) error {
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[title] = cp
	return nil
}

// Report returns the rows last written under title.
func (s *Store) Report(title string) ([][]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.reports[title]
	return rows, ok
}
