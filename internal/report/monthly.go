package report

import (
	"time"

	"hairfolio/internal/core"
)

// KPI is the headline figures of one calendar month.
type KPI struct {
	TotalIncome    float64 `json:"totalIncome"`
	TotalExpenses  float64 `json:"totalExpenses"`
	NetProfit      float64 `json:"netProfit"`
	TotalCustomers int     `json:"totalCustomers"`
	CustomerGrowth float64 `json:"customerGrowth"` // percent vs previous month
	ProfitGrowth   float64 `json:"profitGrowth"`   // percent vs previous month
	TopService     string  `json:"topService"`
}

// MonthlyAnalytics is a KPI plus the records of the month it was computed from.
type MonthlyAnalytics struct {
	Month string `json:"month"` // YYYY-MM
	KPI
	Transactions []core.Transaction `json:"transactions"`
	Expenses     []core.Expense     `json:"expenses"`
}

// MonthRange returns the first and last day of the calendar month containing t.
func MonthRange(t time.Time) DateRange {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateRange{
		Start: core.FormatDate(first),
		End:   core.FormatDate(first.AddDate(0, 1, -1)),
	}
}

// MonthlyAnalytics computes the month containing month and compares it with
// the previous one. Growth figures are 0 when the previous month had no
// customers or a non-positive profit.
func (e *Engine) MonthlyAnalytics(month time.Time) MonthlyAnalytics {
	cur := MonthRange(month)
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := MonthRange(first.AddDate(0, -1, 0))

	txns := e.filterTransactions(cur)
	exps := e.filterExpenses(cur)
	income := sumPrices(txns)
	expenses := sumAmounts(exps)
	profit := income - expenses

	prevTxns := e.filterTransactions(prev)
	prevProfit := sumPrices(prevTxns) - sumAmounts(e.filterExpenses(prev))

	var customerGrowth, profitGrowth float64
	if n := len(prevTxns); n > 0 {
		customerGrowth = percent(float64(len(txns)-n), float64(n))
	}
	if prevProfit > 0 {
		profitGrowth = percent(profit-prevProfit, prevProfit)
	}

	if txns == nil {
		txns = []core.Transaction{}
	}
	if exps == nil {
		exps = []core.Expense{}
	}

	return MonthlyAnalytics{
		Month: first.Format("2006-01"),
		KPI: KPI{
			TotalIncome:    income,
			TotalExpenses:  expenses,
			NetProfit:      profit,
			TotalCustomers: len(txns),
			CustomerGrowth: customerGrowth,
			ProfitGrowth:   profitGrowth,
			TopService:     topServiceByCount(txns),
		},
		Transactions: txns,
		Expenses:     exps,
	}
}

// KPI is MonthlyAnalytics without the records.
func (e *Engine) KPI(month time.Time) KPI {
	return e.MonthlyAnalytics(month).KPI
}

// topServiceByCount returns the most frequent style. On a tie the style seen
// first wins.
func topServiceByCount(txns []core.Transaction) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range txns {
		name := orDefault(t.Style, unknownLabel)
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	top, best := noneLabel, 0
	for _, name := range order {
		if counts[name] > best {
			top, best = name, counts[name]
		}
	}
	return top
}
