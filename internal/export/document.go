// Package export turns reports into tabular documents and writes them as
// CSV, XLSX, JSON or terminal tables.
package export

import (
	"fmt"
	"sort"
	"strconv"

	"hairfolio/internal/core"
	"hairfolio/internal/report"
)

// Document is the tabular rendering of one report.
type Document struct {
	Kind     report.Kind
	Title    string
	Period   string
	Notes    []string
	Sections []Section
}

// Section is one table of a document. Footer is optional.
type Section struct {
	Name   string
	Header []string
	Rows   [][]string
	Footer []string
}

// Options controls cell formatting.
type Options struct {
	// Money formats amounts; core.FormatAmount when nil.
	Money func(float64) string
}

func (o Options) money(v float64) string {
	if o.Money == nil {
		return core.FormatAmount(v)
	}
	return o.Money(v)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// Build lays out r as a Document.
func Build(r report.Report, opts Options) (Document, error) {
	doc := Document{Period: r.PeriodLabel()}
	m := opts.money

	switch v := r.(type) {
	case report.BusinessSummary:
		doc.Sections = []Section{{
			Name:   "Summary",
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Total Revenue", m(v.TotalRevenue)},
				{"Total Expenses", m(v.TotalExpenses)},
				{"Net Profit", m(v.NetProfit)},
				{"Total Customers", itoa(v.TotalCustomers)},
				{"Average Transaction Value", m(v.AverageTransactionValue)},
				{"Profit Margin", pct(v.ProfitMargin)},
			},
		}}

	case report.ServicePerformance:
		s := Section{Name: "Services", Header: []string{"Service", "Count", "Total Revenue", "Avg Price", "Percentage"}}
		for _, svc := range v.Services {
			s.Rows = append(s.Rows, []string{svc.Name, itoa(svc.Count), m(svc.TotalRevenue), m(svc.AveragePrice), pct(svc.Percentage)})
		}
		doc.Sections = []Section{s}
		doc.Notes = []string{
			"Top service: " + v.TopService,
			"Least popular service: " + v.LeastPopularService,
		}

	case report.FinancialSummary:
		months := Section{Name: "Revenue by Month", Header: []string{"Month", "Revenue", "Expenses", "Profit"}}
		var rev, exp, profit float64
		for _, mt := range v.RevenueByMonth {
			months.Rows = append(months.Rows, []string{mt.Month, m(mt.Revenue), m(mt.Expenses), m(mt.Profit)})
			rev += mt.Revenue
			exp += mt.Expenses
			profit += mt.Profit
		}
		months.Footer = []string{"Total", m(rev), m(exp), m(profit)}

		cats := Section{Name: "Expense Categories", Header: []string{"Category", "Amount", "Percentage"}}
		for _, c := range v.ExpenseCategories {
			cats.Rows = append(cats.Rows, []string{c.Category, m(c.Amount), pct(c.Percentage)})
		}
		doc.Sections = []Section{months, cats}

	case report.CustomerAnalytics:
		doc.Sections = []Section{{
			Name:   "Customers",
			Header: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Total Customers", itoa(v.TotalCustomers)},
				{"New Customers", itoa(v.NewCustomers)},
				{"Returning Customers", itoa(v.ReturningCustomers)},
				{"Average Customer Value", m(v.AverageCustomerValue)},
				{"Customer Retention Rate", pct(v.CustomerRetentionRate)},
			},
		}}

	case report.TransactionHistory:
		doc.Sections = []Section{transactionSection("Transactions", v.Transactions, v.TotalAmount, m)}

	case report.ExpenseBreakdown:
		rows := Section{Name: "Expenses", Header: []string{"Date", "Type", "Description", "Amount"}}
		for _, e := range v.Expenses {
			rows.Rows = append(rows.Rows, []string{e.Date, e.Type, e.Description, m(e.Amount)})
		}
		rows.Footer = []string{fmt.Sprintf("Total (%d)", v.TotalCount), "", "", m(v.TotalAmount)}

		cats := Section{Name: "By Category", Header: []string{"Category", "Amount"}}
		names := make([]string, 0, len(v.ByCategory))
		for name := range v.ByCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cats.Rows = append(cats.Rows, []string{name, m(v.ByCategory[name])})
		}
		doc.Sections = []Section{rows, cats}

	case report.DailyOperations:
		s := Section{Name: "Daily Operations", Header: []string{"Date", "Transactions", "Revenue", "Expenses", "Profit", "Customers"}}
		var txns, customers int
		var rev, exp, profit float64
		for _, d := range v.DailyData {
			s.Rows = append(s.Rows, []string{d.Date, itoa(d.Transactions), m(d.Revenue), m(d.Expenses), m(d.Profit), itoa(d.Customers)})
			txns += d.Transactions
			customers += d.Customers
			rev += d.Revenue
			exp += d.Expenses
			profit += d.Profit
		}
		s.Footer = []string{"Total", itoa(txns), m(rev), m(exp), m(profit), itoa(customers)}
		doc.Sections = []Section{s}

	case report.HighValueTransactions:
		doc.Sections = []Section{transactionSection("Transactions", v.Transactions, v.TotalValue, m)}
		doc.Notes = []string{"Threshold: " + m(v.Threshold)}

	case report.ExpenseAnomalies:
		s := Section{Name: "Anomalies", Header: []string{"Date", "Description", "Amount", "Severity", "Reason"}}
		for _, a := range v.Anomalies {
			s.Rows = append(s.Rows, []string{a.Date, a.Description, m(a.Amount), string(a.Severity), a.Reason})
		}
		doc.Sections = []Section{s}
		doc.Notes = []string{"Total anomalies: " + itoa(v.TotalAnomalies)}

	case report.InactiveCustomers:
		s := Section{Name: "Visits", Header: []string{"Last Visit", "Days Since", "Visits", "Last Service", "Total Spent"}}
		for _, c := range v.Customers {
			s.Rows = append(s.Rows, []string{c.LastVisit, itoa(c.DaysSinceLastVisit), itoa(c.TotalVisits), c.LastService, m(c.TotalSpent)})
		}
		doc.Sections = []Section{s}
		doc.Notes = []string{fmt.Sprintf("Inactive for more than %d days", v.InactiveDays)}
		if v.Approximate {
			doc.Notes = append(doc.Notes, v.Disclaimer)
		}

	case report.LowPerformanceServices:
		s := Section{Name: "Services", Header: []string{"Service", "Count", "Total Revenue", "Avg Price", "Percentage", "Score"}}
		for _, svc := range v.Services {
			s.Rows = append(s.Rows, []string{svc.Name, itoa(svc.Count), m(svc.TotalRevenue), m(svc.AveragePrice), pct(svc.Percentage), pct(svc.PerformanceScore)})
		}
		doc.Sections = []Section{s}
		doc.Notes = []string{"Threshold: " + m(v.Threshold)}

	case report.RevenueOutliers:
		s := Section{Name: "Outliers", Header: []string{"Date", "Revenue", "Deviation", "Type", "Transactions"}}
		for _, o := range v.Outliers {
			s.Rows = append(s.Rows, []string{o.Date, m(o.Revenue), pct(o.Deviation), string(o.Type), itoa(o.Transactions)})
		}
		doc.Sections = []Section{s}
		doc.Notes = []string{"Average daily revenue: " + m(v.AverageDailyRevenue)}

	default:
		return Document{}, fmt.Errorf("%w: %T", report.ErrUnknownKind, r)
	}

	doc.Kind = r.Kind()
	doc.Title = r.Kind().Title()
	return doc, nil
}

func transactionSection(name string, rows []report.TransactionRow, total float64, m func(float64) string) Section {
	s := Section{Name: name, Header: []string{"Date", "Service", "Amount", "Notes"}}
	for _, t := range rows {
		s.Rows = append(s.Rows, []string{t.Date, t.Service, m(t.Amount), t.Notes})
	}
	s.Footer = []string{fmt.Sprintf("Total (%d)", len(rows)), "", m(total), ""}
	return s
}

// Records flattens the document into rows: title, period, notes, then each
// section separated by a blank row.
func (d Document) Records() [][]string {
	out := [][]string{{d.Title}, {"Period", d.Period}}
	for _, n := range d.Notes {
		out = append(out, []string{n})
	}
	for _, s := range d.Sections {
		out = append(out, []string{})
		if len(d.Sections) > 1 {
			out = append(out, []string{s.Name})
		}
		out = append(out, s.Header)
		out = append(out, s.Rows...)
		if len(s.Footer) > 0 {
			out = append(out, s.Footer)
		}
	}
	return out
}
