// Package commands holds the cobra commands of hairfolio-report.
package commands

import (
	"io"

	"github.com/spf13/cobra"

	"hairfolio/internal/services"
)

// App is what the commands operate on. Ledger is only needed by seed.
type App struct {
	Ledger  *services.Ledger
	Reports *services.Reports
	Out     io.Writer
}

func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "hairfolio-report",
		Short:         "Generate hairfolio business reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if app.Out != nil {
		root.SetOut(app.Out)
	}
	root.AddCommand(
		NewGenerateCmd(app),
		NewListCmd(),
		NewSeedCmd(app),
	)
	return root
}
