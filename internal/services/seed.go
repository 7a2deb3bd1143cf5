package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"hairfolio/internal/core"
)

// Sample catalog used by the seed generator.
var (
	seedServices            = []string{"Fade", "Line-up", "Buzz Cut", "Scissor Cut", "Beard Trim", "Shave", "Hair Wash"}
	seedPrices              = []float64{15, 20, 25, 30, 35, 40, 45}
	seedExpenseTypes        = []core.ExpenseType{core.Fixed, core.ShortTerm}
	seedExpenseDescriptions = []string{
		"Rent", "Utilities", "Equipment", "Supplies", "Marketing", "Insurance",
		"Cleaning supplies", "Hair products", "Tools maintenance", "License renewal",
	}
	seedExpenseAmounts = []float64{50, 75, 100, 150, 200, 300, 500, 750, 1000}
)

const (
	DefaultSeedTransactions = 50
	DefaultSeedExpenses     = 20
	seedWindowDays          = 90
)

// Seeder produces sample records dated within the 90 days before now.
type Seeder struct {
	rng *rand.Rand
	now time.Time
}

// NewSeeder returns a seeder. The same seed and now give the same records.
func NewSeeder(seed uint64, now time.Time) *Seeder {
	return &Seeder{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: now}
}

func (s *Seeder) date() string {
	return core.FormatDate(s.now.AddDate(0, 0, -s.rng.IntN(seedWindowDays)))
}

func (s *Seeder) id(prefix string) string {
	return fmt.Sprintf("%s_seed_%016x", prefix, s.rng.Uint64())
}

// Transactions returns n sample transactions, most recent first.
func (s *Seeder) Transactions(n int) []core.Transaction {
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		t := core.Transaction{
			ID:    s.id("txn"),
			Date:  s.date(),
			Style: seedServices[s.rng.IntN(len(seedServices))],
			Price: seedPrices[s.rng.IntN(len(seedPrices))],
		}
		if s.rng.Float64() > 0.7 {
			t.Notes = "Regular customer"
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Expenses returns n sample expenses, most recent first.
func (s *Seeder) Expenses(n int) []core.Expense {
	out := make([]core.Expense, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Expense{
			ID:          s.id("exp"),
			Date:        s.date(),
			Type:        seedExpenseTypes[s.rng.IntN(len(seedExpenseTypes))],
			Description: seedExpenseDescriptions[s.rng.IntN(len(seedExpenseDescriptions))],
			Amount:      seedExpenseAmounts[s.rng.IntN(len(seedExpenseAmounts))],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Seed adds txns sample transactions and exps sample expenses to the ledger.
func (s *Seeder) Seed(ctx context.Context, l *Ledger, txns, exps int) (int, int, error) {
	for i, t := range s.Transactions(txns) {
		if _, err := l.CreateTransaction(ctx, t); err != nil {
			return i, 0, fmt.Errorf("seed transaction: %w", err)
		}
	}
	for i, e := range s.Expenses(exps) {
		if _, err := l.CreateExpense(ctx, e); err != nil {
			return txns, i, fmt.Errorf("seed expense: %w", err)
		}
	}
	return txns, exps, nil
}
