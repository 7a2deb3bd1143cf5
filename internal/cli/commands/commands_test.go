package commands

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfolio/internal/core"
	"hairfolio/internal/report"
	"hairfolio/internal/services"
	"hairfolio/internal/sheets"
	"hairfolio/internal/sheets/memory"
)

var sheetsAll = sheets.ListFilter{}

var fixedNow = time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T) (*App, *memory.Store, *bytes.Buffer) {
	t.Helper()
	store := memory.NewWithData(
		[]core.Transaction{
			{ID: "t1", Date: "2024-01-10", Style: "Fade", Price: 25},
			{ID: "t2", Date: "2024-01-11", Style: "Beard", Price: 15},
			{ID: "t3", Date: "2024-01-12", Style: "Fade", Price: 20},
		},
		[]core.Expense{
			{ID: "e1", Date: "2024-01-05", Type: core.Fixed, Description: "Rent", Amount: 12},
			{ID: "e2", Date: "2024-01-06", Type: core.ShortTerm, Description: "Towels", Amount: 8},
		},
	)
	ledger := services.NewLedger(store, nil)
	reports := services.NewReports(store, services.ReportsConfig{Now: func() time.Time { return fixedNow }})
	out := &bytes.Buffer{}
	return &App{Ledger: ledger, Reports: reports, Out: out}, store, out
}

func execute(t *testing.T, app *App, args ...string) error {
	t.Helper()
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestList(t *testing.T) {
	app, _, out := newTestApp(t)

	require.NoError(t, execute(t, app, "list"))
	for _, k := range report.AllKinds() {
		assert.Contains(t, out.String(), string(k))
	}
}

func TestGenerate_Table(t *testing.T) {
	app, _, out := newTestApp(t)

	require.NoError(t, execute(t, app, "generate", "business-summary", "--range", "thisMonth"))
	assert.Contains(t, out.String(), "Business Summary")
	assert.Contains(t, out.String(), "60.00")
}

func TestGenerate_CSVToFile(t *testing.T) {
	app, _, _ := newTestApp(t)
	path := filepath.Join(t.TempDir(), "history.csv")

	require.NoError(t, execute(t, app, "generate", "transaction-history",
		"--start", "2024-01-11", "--end", "2024-01-12", "--format", "csv", "--output", path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	// header, two rows, footer
	assert.Len(t, records, 4)
}

func TestGenerate_ThresholdFlag(t *testing.T) {
	app, _, _ := newTestApp(t)

	count := func(args ...string) int {
		path := filepath.Join(t.TempDir(), "high-value.json")
		args = append([]string{"generate", "high-value-transactions", "--range", "thisMonth", "--format", "json", "--output", path}, args...)
		require.NoError(t, execute(t, app, args...))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var env struct {
			Report report.HighValueTransactions `json:"report"`
		}
		require.NoError(t, json.Unmarshal(data, &env))
		return env.Report.Count
	}

	assert.Equal(t, 3, count("--threshold", "0"))
	assert.Equal(t, 2, count("--threshold", "20"))
	assert.Equal(t, 0, count(), "no flag uses the default of 100")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown kind", []string{"generate", "horoscope"}, report.ErrUnknownKind},
		{"half a range", []string{"generate", "business-summary", "--start", "2024-01-01"}, report.ErrInvalidRange},
		{"inverted range", []string{"generate", "business-summary", "--start", "2024-02-01", "--end", "2024-01-01"}, report.ErrInvalidRange},
		{"bad format", []string{"generate", "business-summary", "--format", "pdf"}, nil},
		{"sheets disabled", []string{"generate", "business-summary", "--sheets"}, services.ErrSheetsDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := newTestApp(t)
			err := execute(t, app, tt.args...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestGenerate_PublishesToSheets(t *testing.T) {
	app, _, _ := newTestApp(t)
	mirror := memory.New()
	app.Reports.WithSheets(mirror)

	require.NoError(t, execute(t, app, "generate", "service-performance", "--range", "thisMonth", "--sheets"))
	rows, ok := mirror.Report(report.KindServicePerformance.Title())
	require.True(t, ok)
	assert.NotEmpty(t, rows)
}

func TestSeed(t *testing.T) {
	app, store, out := newTestApp(t)

	require.NoError(t, execute(t, app, "seed", "--transactions", "5", "--expenses", "2", "--seed", "7"))
	assert.Contains(t, out.String(), "Added 5 transactions and 2 expenses")

	txns, err := store.ListTransactions(context.Background(), sheetsAll)
	require.NoError(t, err)
	assert.Len(t, txns, 8)
}

func TestSeed_RejectsNegativeCounts(t *testing.T) {
	app, _, _ := newTestApp(t)
	assert.Error(t, execute(t, app, "seed", "--transactions", "-1"))
}
