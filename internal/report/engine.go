// Package report turns transaction and expense records into derived business
// reports. Every generator is a pure function of the records captured by the
// Engine, a date range and optional thresholds.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"hairfolio/internal/core"
)

// Engine computes reports over a point-in-time snapshot of the ledger.
// It never mutates the records it holds and is safe for concurrent use.
type Engine struct {
	transactions []core.Transaction
	expenses     []core.Expense
	now          func() time.Time
}

type Option func(*Engine)

// WithClock overrides the clock used by InactiveCustomers.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(transactions []core.Transaction, expenses []core.Expense, opts ...Option) *Engine {
	e := &Engine{
		transactions: transactions,
		expenses:     expenses,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) filterTransactions(r DateRange) []core.Transaction {
	var out []core.Transaction
	for _, t := range e.transactions {
		if r.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) filterExpenses(r DateRange) []core.Expense {
	var out []core.Expense
	for _, x := range e.expenses {
		if r.Contains(x.Date) {
			out = append(out, x)
		}
	}
	return out
}

func sumPrices(txns []core.Transaction) float64 {
	var total float64
	for _, t := range txns {
		total += coerceAmount(t.Price)
	}
	return total
}

func sumAmounts(exps []core.Expense) float64 {
	var total float64
	for _, x := range exps {
		total += coerceAmount(x.Amount)
	}
	return total
}

func (e *Engine) BusinessSummary(r DateRange) BusinessSummary {
	txns := e.filterTransactions(r)
	exps := e.filterExpenses(r)

	revenue := sumPrices(txns)
	expenses := sumAmounts(exps)
	profit := revenue - expenses
	customers := len(txns)

	return BusinessSummary{
		Period:                  r.Label(),
		TotalRevenue:            revenue,
		TotalExpenses:           expenses,
		NetProfit:               profit,
		TotalCustomers:          customers,
		AverageTransactionValue: ratio(revenue, float64(customers)),
		ProfitMargin:            percent(profit, revenue),
	}
}

func (e *Engine) ServicePerformance(r DateRange) ServicePerformance {
	txns := e.filterTransactions(r)

	// Groups keep first-seen order so that ties in revenue sort deterministically.
	index := make(map[string]int)
	var services []ServiceStat
	for _, t := range txns {
		name := orDefault(t.Style, unknownLabel)
		i, ok := index[name]
		if !ok {
			i = len(services)
			index[name] = i
			services = append(services, ServiceStat{Name: name})
		}
		services[i].Count++
		services[i].TotalRevenue += coerceAmount(t.Price)
	}

	total := sumPrices(txns)
	for i := range services {
		s := &services[i]
		s.AveragePrice = ratio(s.TotalRevenue, float64(s.Count))
		s.Percentage = percent(s.TotalRevenue, total)
	}
	sort.SliceStable(services, func(i, j int) bool {
		return services[i].TotalRevenue > services[j].TotalRevenue
	})

	out := ServicePerformance{
		Period:              r.Label(),
		Services:            services,
		TopService:          noneLabel,
		LeastPopularService: noneLabel,
	}
	if len(services) > 0 {
		out.TopService = services[0].Name
		out.LeastPopularService = services[len(services)-1].Name
	}
	if out.Services == nil {
		out.Services = []ServiceStat{}
	}
	return out
}

// monthOf returns the YYYY-MM prefix of an ISO date.
func monthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

func (e *Engine) FinancialSummary(r DateRange) FinancialSummary {
	txns := e.filterTransactions(r)
	exps := e.filterExpenses(r)

	months := make(map[string]*MonthTotals)
	bucket := func(date string) *MonthTotals {
		m := monthOf(date)
		b, ok := months[m]
		if !ok {
			b = &MonthTotals{Month: m}
			months[m] = b
		}
		return b
	}
	for _, t := range txns {
		bucket(t.Date).Revenue += coerceAmount(t.Price)
	}
	for _, x := range exps {
		bucket(x.Date).Expenses += coerceAmount(x.Amount)
	}

	byMonth := make([]MonthTotals, 0, len(months))
	for _, b := range months {
		b.Profit = b.Revenue - b.Expenses
		byMonth = append(byMonth, *b)
	}
	sort.Slice(byMonth, func(i, j int) bool { return byMonth[i].Month < byMonth[j].Month })

	return FinancialSummary{
		Period:            r.Label(),
		RevenueByMonth:    byMonth,
		ExpenseCategories: categoryShares(exps),
	}
}

// categoryShares sums expenses by type in first-seen order.
func categoryShares(exps []core.Expense) []CategoryShare {
	index := make(map[string]int)
	shares := []CategoryShare{}
	var total float64
	for _, x := range exps {
		name := orDefault(string(x.Type), unknownLabel)
		i, ok := index[name]
		if !ok {
			i = len(shares)
			index[name] = i
			shares = append(shares, CategoryShare{Category: name})
		}
		amount := coerceAmount(x.Amount)
		shares[i].Amount += amount
		total += amount
	}
	for i := range shares {
		shares[i].Percentage = percent(shares[i].Amount, total)
	}
	return shares
}

// returningShare is a fixed placeholder: the ledger has no customer identity.
const returningShare = 0.7

func (e *Engine) CustomerAnalytics(r DateRange) CustomerAnalytics {
	txns := e.filterTransactions(r)
	customers := len(txns)
	revenue := sumPrices(txns)
	returning := int(math.Floor(float64(customers) * returningShare))

	return CustomerAnalytics{
		Period:                r.Label(),
		TotalCustomers:        customers,
		NewCustomers:          customers - returning,
		ReturningCustomers:    returning,
		AverageCustomerValue:  ratio(revenue, float64(customers)),
		CustomerRetentionRate: percent(float64(returning), float64(customers)),
	}
}

func transactionRow(t core.Transaction) TransactionRow {
	return TransactionRow{
		ID:      t.ID,
		Date:    t.Date,
		Service: orDefault(t.Style, unknownLabel),
		Amount:  coerceAmount(t.Price),
		Notes:   t.Notes,
	}
}

func (e *Engine) TransactionHistory(r DateRange) TransactionHistory {
	txns := e.filterTransactions(r)

	rows := make([]TransactionRow, 0, len(txns))
	var total float64
	for _, t := range txns {
		row := transactionRow(t)
		rows = append(rows, row)
		total += row.Amount
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })

	return TransactionHistory{
		Period:       r.Label(),
		Transactions: rows,
		TotalCount:   len(rows),
		TotalAmount:  total,
	}
}

func (e *Engine) ExpenseBreakdown(r DateRange) ExpenseBreakdown {
	exps := e.filterExpenses(r)

	rows := make([]ExpenseRow, 0, len(exps))
	byCategory := make(map[string]float64)
	var total float64
	for _, x := range exps {
		row := ExpenseRow{
			ID:          x.ID,
			Date:        x.Date,
			Type:        orDefault(string(x.Type), unknownLabel),
			Description: x.Description,
			Amount:      coerceAmount(x.Amount),
		}
		rows = append(rows, row)
		byCategory[row.Type] += row.Amount
		total += row.Amount
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })

	return ExpenseBreakdown{
		Period:      r.Label(),
		Expenses:    rows,
		TotalCount:  len(rows),
		TotalAmount: total,
		ByCategory:  byCategory,
	}
}

func (e *Engine) DailyOperations(r DateRange) DailyOperations {
	days := r.days()
	data := make([]DayTotals, len(days))
	index := make(map[string]int, len(days))
	for i, d := range days {
		data[i] = DayTotals{Date: d}
		index[d] = i
	}

	// Records whose date is not an exact calendar day in the range are skipped.
	for _, t := range e.filterTransactions(r) {
		if i, ok := index[t.Date]; ok {
			data[i].Transactions++
			data[i].Customers++
			data[i].Revenue += coerceAmount(t.Price)
		}
	}
	for _, x := range e.filterExpenses(r) {
		if i, ok := index[x.Date]; ok {
			data[i].Expenses += coerceAmount(x.Amount)
		}
	}
	for i := range data {
		data[i].Profit = data[i].Revenue - data[i].Expenses
	}

	return DailyOperations{Period: r.Label(), DailyData: data}
}

// HighValueTransactions lists transactions priced at or above threshold.
func (e *Engine) HighValueTransactions(r DateRange, threshold float64) HighValueTransactions {
	rows := []TransactionRow{}
	var total float64
	for _, t := range e.filterTransactions(r) {
		row := transactionRow(t)
		if row.Amount >= threshold {
			rows = append(rows, row)
			total += row.Amount
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Amount > rows[j].Amount })

	return HighValueTransactions{
		Period:       r.Label(),
		Threshold:    threshold,
		Transactions: rows,
		Count:        len(rows),
		TotalValue:   total,
	}
}

// ExpenseAnomalies flags expenses above twice the period average.
func (e *Engine) ExpenseAnomalies(r DateRange) ExpenseAnomalies {
	exps := e.filterExpenses(r)
	avg := ratio(sumAmounts(exps), float64(len(exps)))

	anomalies := []Anomaly{}
	if avg > 0 {
		for _, x := range exps {
			amount := coerceAmount(x.Amount)
			if amount <= avg*2 {
				continue
			}
			anomalies = append(anomalies, Anomaly{
				ID:          x.ID,
				Date:        x.Date,
				Description: x.Description,
				Amount:      amount,
				Reason:      fmt.Sprintf("Amount is %d%% of average expense", int64(math.Round(amount/avg*100))),
				Severity:    severityOf(amount, avg),
			})
		}
	}
	sort.SliceStable(anomalies, func(i, j int) bool { return anomalies[i].Amount > anomalies[j].Amount })

	return ExpenseAnomalies{
		Period:         r.Label(),
		Anomalies:      anomalies,
		TotalAnomalies: len(anomalies),
	}
}

func severityOf(amount, avg float64) Severity {
	switch {
	case amount > avg*5:
		return SeverityHigh
	case amount > avg*3:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

const (
	maxStaleVisits = 5

	inactiveDisclaimer = "Approximate: customers are not tracked individually. " +
		"Each entry is a single transaction older than the inactivity cutoff; " +
		"visit counts and spend cover that transaction only."
)

// InactiveCustomers reports transactions older than inactiveDays before now as
// stand-ins for lapsed customers. Like the rest of the ledger it has no notion
// of customer identity, so the cutoff is measured against the whole ledger and
// not the requested range; the range only labels the period.
func (e *Engine) InactiveCustomers(r DateRange, inactiveDays int) InactiveCustomers {
	now := e.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cutoff := today.AddDate(0, 0, -inactiveDays)

	visits := []StaleVisit{}
	for _, t := range e.transactions {
		if len(visits) == maxStaleVisits {
			break
		}
		if t.Date == "" {
			continue
		}
		d, err := core.ParseDate(t.Date)
		if err != nil || !d.Before(cutoff) {
			continue
		}
		visits = append(visits, StaleVisit{
			LastVisit:          t.Date,
			DaysSinceLastVisit: int(today.Sub(d).Hours() / 24),
			TotalVisits:        1,
			LastService:        orDefault(t.Style, unknownLabel),
			TotalSpent:         coerceAmount(t.Price),
		})
	}

	return InactiveCustomers{
		Period:       r.Label(),
		InactiveDays: inactiveDays,
		Customers:    visits,
		Count:        len(visits),
		Approximate:  true,
		Disclaimer:   inactiveDisclaimer,
	}
}

// LowPerformanceServices lists services whose revenue in the range stays below
// threshold, weakest first.
func (e *Engine) LowPerformanceServices(r DateRange, threshold float64) LowPerformanceServices {
	perf := e.ServicePerformance(r)

	services := []ServiceScore{}
	for _, s := range perf.Services {
		if s.TotalRevenue >= threshold {
			continue
		}
		services = append(services, ServiceScore{
			Name:             s.Name,
			Count:            s.Count,
			TotalRevenue:     s.TotalRevenue,
			AveragePrice:     s.AveragePrice,
			Percentage:       s.Percentage,
			PerformanceScore: percent(s.TotalRevenue, threshold),
		})
	}
	sort.SliceStable(services, func(i, j int) bool {
		return services[i].PerformanceScore < services[j].PerformanceScore
	})

	return LowPerformanceServices{
		Period:    r.Label(),
		Threshold: threshold,
		Services:  services,
	}
}

// outlierBand is the relative distance from the average daily revenue past
// which a day counts as an outlier.
const outlierBand = 0.5

// RevenueOutliers flags days whose revenue is more than 50% away from the
// average of the days that had any revenue at all.
func (e *Engine) RevenueOutliers(r DateRange) RevenueOutliers {
	daily := e.DailyOperations(r).DailyData

	var sum float64
	var active int
	for _, d := range daily {
		if d.Revenue > 0 {
			sum += d.Revenue
			active++
		}
	}
	avg := ratio(sum, float64(active))

	outliers := []Outlier{}
	if avg > 0 {
		band := avg * outlierBand
		for _, d := range daily {
			if math.Abs(d.Revenue-avg) <= band {
				continue
			}
			kind := OutlierLow
			if d.Revenue > avg {
				kind = OutlierHigh
			}
			outliers = append(outliers, Outlier{
				Date:         d.Date,
				Revenue:      d.Revenue,
				Deviation:    percent(d.Revenue-avg, avg),
				Type:         kind,
				Transactions: d.Transactions,
			})
		}
	}
	sort.SliceStable(outliers, func(i, j int) bool {
		return math.Abs(outliers[i].Deviation) > math.Abs(outliers[j].Deviation)
	})

	return RevenueOutliers{
		Period:              r.Label(),
		AverageDailyRevenue: avg,
		Outliers:            outliers,
	}
}
