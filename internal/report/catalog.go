package report

// Export formats offered for reports.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// Config describes one entry of the report catalog.
type Config struct {
	Type             Kind     `json:"type"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Category         Category `json:"category"`
	DefaultDateRange string   `json:"defaultDateRange"`
	ExportFormats    []string `json:"exportFormats"`
}

var descriptions = map[Kind]string{
	KindBusinessSummary:        "High-level overview of revenue, expenses, and profit",
	KindServicePerformance:     "Analysis of most and least popular services with revenue breakdown",
	KindFinancialSummary:       "Monthly revenue, expenses and profit with expense categories",
	KindCustomerAnalytics:      "Customer visits, average value and estimated retention",
	KindTransactionHistory:     "Detailed list of all transactions with full information",
	KindExpenseBreakdown:       "Complete expense analysis with categories and descriptions",
	KindDailyOperations:        "Day-by-day transactions, revenue, expenses and profit",
	KindHighValueTransactions:  "Transactions exceeding configurable threshold amount",
	KindExpenseAnomalies:       "Unusual spending patterns and unexpectedly high expenses",
	KindInactiveCustomers:      "Approximate list of visits older than the inactivity window",
	KindLowPerformanceServices: "Services earning less than a configurable revenue threshold",
	KindRevenueOutliers:        "Days whose revenue deviates more than 50% from the daily average",
}

// Catalog lists every report with its presentation defaults.
func Catalog() []Config {
	kinds := AllKinds()
	out := make([]Config, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, Config{
			Type:             k,
			Name:             k.Title(),
			Description:      descriptions[k],
			Category:         k.Category(),
			DefaultDateRange: PresetLast30Days,
			ExportFormats:    []string{FormatCSV, FormatXLSX, FormatJSON},
		})
	}
	return out
}
