package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"hairfolio/internal/export"
	"hairfolio/internal/report"
)

type generateCmd struct {
	app          *App
	rangeName    string
	start        string
	end          string
	format       string
	output       string
	threshold    float64
	inactiveDays int
	sheets       bool
	timeout      time.Duration
}

func NewGenerateCmd(app *App) *cobra.Command {
	gc := &generateCmd{app: app}
	cmd := &cobra.Command{
		Use:       "generate <kind>",
		Short:     "Generate one report",
		Long:      "Generate one report. Kinds: " + kindList() + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindStrings(),
		RunE:      gc.run,
	}

	cmd.Flags().StringVar(&gc.rangeName, "range", report.PresetLast30Days, "Preset range ("+strings.Join(report.Presets(), ", ")+")")
	cmd.Flags().StringVar(&gc.start, "start", "", "Start date YYYY-MM-DD; overrides --range")
	cmd.Flags().StringVar(&gc.end, "end", "", "End date YYYY-MM-DD; overrides --range")
	cmd.Flags().StringVarP(&gc.format, "format", "f", export.FormatTable, "Output format ("+strings.Join(export.Formats(), ", ")+")")
	cmd.Flags().StringVarP(&gc.output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().Float64Var(&gc.threshold, "threshold", 0, "Amount threshold for high-value and low-performance reports (default per report)")
	cmd.Flags().IntVar(&gc.inactiveDays, "inactive-days", 0, "Inactivity window in days for the inactive-customers report (default 30)")
	cmd.Flags().BoolVar(&gc.sheets, "sheets", false, "Also write the report to Google Sheets")
	cmd.Flags().DurationVar(&gc.timeout, "timeout", time.Minute, "Give up after this long")

	return cmd
}

func (gc *generateCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), gc.timeout)
	defer cancel()

	kind, err := report.ParseKind(args[0])
	if err != nil {
		return fmt.Errorf("%w (known: %s)", err, kindList())
	}
	format, err := export.ParseFormat(gc.format)
	if err != nil {
		return err
	}
	if (gc.start == "") != (gc.end == "") {
		return fmt.Errorf("%w: --start and --end go together", report.ErrInvalidRange)
	}
	dr, _, err := gc.app.Reports.ResolveRange(gc.rangeName, gc.start, gc.end)
	if err != nil {
		return err
	}

	var params report.Params
	if cmd.Flags().Changed("threshold") {
		params = params.WithThreshold(gc.threshold)
	}
	if cmd.Flags().Changed("inactive-days") {
		params = params.WithInactiveDays(gc.inactiveDays)
	}
	rep, err := gc.app.Reports.Generate(ctx, kind, dr, params)
	if err != nil {
		return fmt.Errorf("generate %s: %w", kind, err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if gc.output != "" {
		f, err := os.Create(gc.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := gc.app.Reports.Export(w, format, rep); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	if gc.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s report to %s\n", kind.Title(), gc.output)
	}

	if gc.sheets {
		if err := gc.app.Reports.PublishToSheets(ctx, rep); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s report to Google Sheets\n", kind.Title())
	}
	return nil
}

func kindStrings() []string {
	kinds := report.AllKinds()
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

func kindList() string {
	return strings.Join(kindStrings(), ", ")
}
