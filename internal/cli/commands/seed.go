package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hairfolio/internal/services"
)

type seedCmd struct {
	app          *App
	transactions int
	expenses     int
	seed         uint64
}

func NewSeedCmd(app *App) *cobra.Command {
	sc := &seedCmd{app: app}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add sample transactions and expenses from the last 90 days",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
	cmd.Flags().IntVar(&sc.transactions, "transactions", services.DefaultSeedTransactions, "Number of transactions to add")
	cmd.Flags().IntVar(&sc.expenses, "expenses", services.DefaultSeedExpenses, "Number of expenses to add")
	cmd.Flags().Uint64Var(&sc.seed, "seed", 0, "Random seed; 0 picks one from the clock")
	return cmd
}

func (sc *seedCmd) run(cmd *cobra.Command, _ []string) error {
	if sc.app.Ledger == nil {
		return errors.New("seed needs a ledger")
	}
	if sc.transactions < 0 || sc.expenses < 0 {
		return errors.New("counts must not be negative")
	}
	now := time.Now()
	seed := sc.seed
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}

	txns, exps, err := services.NewSeeder(seed, now).Seed(cmd.Context(), sc.app.Ledger, sc.transactions, sc.expenses)
	if err != nil {
		return fmt.Errorf("seed ledger: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d transactions and %d expenses\n", txns, exps)
	return nil
}
