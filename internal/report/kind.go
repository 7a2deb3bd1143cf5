package report

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one report variant.
type Kind string

const (
	KindBusinessSummary        Kind = "business-summary"
	KindServicePerformance     Kind = "service-performance"
	KindFinancialSummary       Kind = "financial-summary"
	KindCustomerAnalytics      Kind = "customer-analytics"
	KindTransactionHistory     Kind = "transaction-history"
	KindExpenseBreakdown       Kind = "expense-breakdown"
	KindDailyOperations        Kind = "daily-operations"
	KindHighValueTransactions  Kind = "high-value-transactions"
	KindExpenseAnomalies       Kind = "expense-anomalies"
	KindInactiveCustomers      Kind = "inactive-customers"
	KindLowPerformanceServices Kind = "low-performance-services"
	KindRevenueOutliers        Kind = "revenue-outliers"
)

// Category groups report kinds the way they are presented to users.
type Category string

const (
	CategorySummary   Category = "summary"
	CategoryDetailed  Category = "detailed"
	CategoryException Category = "exception"
)

// ErrUnknownKind is returned for report tags outside AllKinds.
var ErrUnknownKind = errors.New("unknown report kind")

// AllKinds returns every report kind, summaries first.
func AllKinds() []Kind {
	return []Kind{
		KindBusinessSummary,
		KindServicePerformance,
		KindFinancialSummary,
		KindCustomerAnalytics,
		KindTransactionHistory,
		KindExpenseBreakdown,
		KindDailyOperations,
		KindHighValueTransactions,
		KindExpenseAnomalies,
		KindInactiveCustomers,
		KindLowPerformanceServices,
		KindRevenueOutliers,
	}
}

// ParseKind matches s case-insensitively against the known report tags.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string { return string(k) }

func (k Kind) Category() Category {
	switch k {
	case KindBusinessSummary, KindServicePerformance, KindFinancialSummary, KindCustomerAnalytics:
		return CategorySummary
	case KindTransactionHistory, KindExpenseBreakdown, KindDailyOperations:
		return CategoryDetailed
	default:
		return CategoryException
	}
}

// Title is the display name used in exports and listings.
func (k Kind) Title() string {
	switch k {
	case KindBusinessSummary:
		return "Business Summary"
	case KindServicePerformance:
		return "Service Performance"
	case KindFinancialSummary:
		return "Financial Summary"
	case KindCustomerAnalytics:
		return "Customer Analytics"
	case KindTransactionHistory:
		return "Complete Transaction History"
	case KindExpenseBreakdown:
		return "Detailed Expense Breakdown"
	case KindDailyOperations:
		return "Daily Operations"
	case KindHighValueTransactions:
		return "High-Value Transactions"
	case KindExpenseAnomalies:
		return "Expense Anomalies"
	case KindInactiveCustomers:
		return "Inactive Customers"
	case KindLowPerformanceServices:
		return "Low-Performance Services"
	case KindRevenueOutliers:
		return "Revenue Outliers"
	default:
		return string(k)
	}
}

// Default thresholds for the parameterized exception reports.
const (
	DefaultHighValueThreshold      = 100.0
	DefaultLowPerformanceThreshold = 50.0
	DefaultInactiveDays            = 30
)

// Params carries the optional numeric inputs of the exception reports.
// A nil field means the caller gave none and the kind's default applies;
// an explicit zero is honored.
type Params struct {
	Threshold    *float64
	InactiveDays *int
}

// WithThreshold returns a copy of p with the amount threshold set.
func (p Params) WithThreshold(v float64) Params {
	p.Threshold = &v
	return p
}

// WithInactiveDays returns a copy of p with the inactivity window set.
func (p Params) WithInactiveDays(days int) Params {
	p.InactiveDays = &days
	return p
}

// DefaultParams returns the parameters a kind uses when the caller gives none.
func DefaultParams(k Kind) Params {
	switch k {
	case KindHighValueTransactions:
		return Params{}.WithThreshold(DefaultHighValueThreshold)
	case KindLowPerformanceServices:
		return Params{}.WithThreshold(DefaultLowPerformanceThreshold)
	case KindInactiveCustomers:
		return Params{}.WithInactiveDays(DefaultInactiveDays)
	default:
		return Params{}
	}
}

// resolve returns the threshold and inactivity window for k. Missing,
// negative or NaN values take the kind's default.
func (p Params) resolve(k Kind) (threshold float64, inactiveDays int) {
	d := DefaultParams(k)
	if d.Threshold != nil {
		threshold = *d.Threshold
	}
	if d.InactiveDays != nil {
		inactiveDays = *d.InactiveDays
	}
	if p.Threshold != nil && *p.Threshold >= 0 {
		threshold = *p.Threshold
	}
	if p.InactiveDays != nil && *p.InactiveDays >= 0 {
		inactiveDays = *p.InactiveDays
	}
	return threshold, inactiveDays
}
