package report

import "fmt"

// Generate dispatches to the generator for kind. Params left unset are
// taken from DefaultParams(kind).
func (e *Engine) Generate(kind Kind, r DateRange, p Params) (Report, error) {
	threshold, inactiveDays := p.resolve(kind)

	switch kind {
	case KindBusinessSummary:
		return e.BusinessSummary(r), nil
	case KindServicePerformance:
		return e.ServicePerformance(r), nil
	case KindFinancialSummary:
		return e.FinancialSummary(r), nil
	case KindCustomerAnalytics:
		return e.CustomerAnalytics(r), nil
	case KindTransactionHistory:
		return e.TransactionHistory(r), nil
	case KindExpenseBreakdown:
		return e.ExpenseBreakdown(r), nil
	case KindDailyOperations:
		return e.DailyOperations(r), nil
	case KindHighValueTransactions:
		return e.HighValueTransactions(r, threshold), nil
	case KindExpenseAnomalies:
		return e.ExpenseAnomalies(r), nil
	case KindInactiveCustomers:
		return e.InactiveCustomers(r, inactiveDays), nil
	case KindLowPerformanceServices:
		return e.LowPerformanceServices(r, threshold), nil
	case KindRevenueOutliers:
		return e.RevenueOutliers(r), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
