package report

// Report is the closed set of report variants produced by Engine.
// Switches over it in renderers should list every concrete type below.
type Report interface {
	Kind() Kind
	PeriodLabel() string
	isReport()
}

type (
	BusinessSummary struct {
		Period                  string  `json:"period"`
		TotalRevenue            float64 `json:"totalRevenue"`
		TotalExpenses           float64 `json:"totalExpenses"`
		NetProfit               float64 `json:"netProfit"`
		TotalCustomers          int     `json:"totalCustomers"`
		AverageTransactionValue float64 `json:"averageTransactionValue"`
		ProfitMargin            float64 `json:"profitMargin"`
	}

	ServiceStat struct {
		Name         string  `json:"name"`
		Count        int     `json:"count"`
		TotalRevenue float64 `json:"totalRevenue"`
		AveragePrice float64 `json:"averagePrice"`
		Percentage   float64 `json:"percentage"`
	}

	ServicePerformance struct {
		Period              string        `json:"period"`
		Services            []ServiceStat `json:"services"`
		TopService          string        `json:"topService"`
		LeastPopularService string        `json:"leastPopularService"`
	}

	MonthTotals struct {
		Month    string  `json:"month"` // YYYY-MM
		Revenue  float64 `json:"revenue"`
		Expenses float64 `json:"expenses"`
		Profit   float64 `json:"profit"`
	}

	CategoryShare struct {
		Category   string  `json:"category"`
		Amount     float64 `json:"amount"`
		Percentage float64 `json:"percentage"`
	}

	FinancialSummary struct {
		Period            string          `json:"period"`
		RevenueByMonth    []MonthTotals   `json:"revenueByMonth"`
		ExpenseCategories []CategoryShare `json:"expenseCategories"`
	}

	CustomerAnalytics struct {
		Period                string  `json:"period"`
		TotalCustomers        int     `json:"totalCustomers"`
		NewCustomers          int     `json:"newCustomers"`
		ReturningCustomers    int     `json:"returningCustomers"`
		AverageCustomerValue  float64 `json:"averageCustomerValue"`
		CustomerRetentionRate float64 `json:"customerRetentionRate"`
	}

	// TransactionRow is the flattened transaction used by listing reports.
	TransactionRow struct {
		ID      string  `json:"id"`
		Date    string  `json:"date"`
		Service string  `json:"service"`
		Amount  float64 `json:"amount"`
		Notes   string  `json:"notes"`
	}

	TransactionHistory struct {
		Period       string           `json:"period"`
		Transactions []TransactionRow `json:"transactions"`
		TotalCount   int              `json:"totalCount"`
		TotalAmount  float64          `json:"totalAmount"`
	}

	ExpenseRow struct {
		ID          string  `json:"id"`
		Date        string  `json:"date"`
		Type        string  `json:"type"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"`
	}

	ExpenseBreakdown struct {
		Period      string             `json:"period"`
		Expenses    []ExpenseRow       `json:"expenses"`
		TotalCount  int                `json:"totalCount"`
		TotalAmount float64            `json:"totalAmount"`
		ByCategory  map[string]float64 `json:"byCategory"`
	}

	DayTotals struct {
		Date         string  `json:"date"`
		Transactions int     `json:"transactions"`
		Revenue      float64 `json:"revenue"`
		Expenses     float64 `json:"expenses"`
		Profit       float64 `json:"profit"`
		Customers    int     `json:"customers"`
	}

	DailyOperations struct {
		Period    string      `json:"period"`
		DailyData []DayTotals `json:"dailyData"`
	}

	HighValueTransactions struct {
		Period       string           `json:"period"`
		Threshold    float64          `json:"threshold"`
		Transactions []TransactionRow `json:"transactions"`
		Count        int              `json:"count"`
		TotalValue   float64          `json:"totalValue"`
	}

	Anomaly struct {
		ID          string   `json:"id"`
		Date        string   `json:"date"`
		Description string   `json:"description"`
		Amount      float64  `json:"amount"`
		Reason      string   `json:"reason"`
		Severity    Severity `json:"severity"`
	}

	ExpenseAnomalies struct {
		Period         string    `json:"period"`
		Anomalies      []Anomaly `json:"anomalies"`
		TotalAnomalies int       `json:"totalAnomalies"`
	}

	// StaleVisit stands in for a customer: the data model has no customer
	// identity, so each old transaction is reported as one visit.
	StaleVisit struct {
		LastVisit          string  `json:"lastVisit"`
		DaysSinceLastVisit int     `json:"daysSinceLastVisit"`
		TotalVisits        int     `json:"totalVisits"`
		LastService        string  `json:"lastService"`
		TotalSpent         float64 `json:"totalSpent"`
	}

	InactiveCustomers struct {
		Period       string       `json:"period"`
		InactiveDays int          `json:"inactiveDays"`
		Customers    []StaleVisit `json:"customers"`
		Count        int          `json:"count"`
		Approximate  bool         `json:"approximate"`
		Disclaimer   string       `json:"disclaimer"`
	}

	ServiceScore struct {
		Name             string  `json:"name"`
		Count            int     `json:"count"`
		TotalRevenue     float64 `json:"totalRevenue"`
		AveragePrice     float64 `json:"averagePrice"`
		Percentage       float64 `json:"percentage"`
		PerformanceScore float64 `json:"performanceScore"`
	}

	LowPerformanceServices struct {
		Period    string         `json:"period"`
		Threshold float64        `json:"threshold"`
		Services  []ServiceScore `json:"services"`
	}

	Outlier struct {
		Date         string      `json:"date"`
		Revenue      float64     `json:"revenue"`
		Deviation    float64     `json:"deviation"` // percent from the average
		Type         OutlierType `json:"type"`
		Transactions int         `json:"transactions"`
	}

	RevenueOutliers struct {
		Period              string    `json:"period"`
		AverageDailyRevenue float64   `json:"averageDailyRevenue"`
		Outliers            []Outlier `json:"outliers"`
	}
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type OutlierType string

const (
	OutlierHigh OutlierType = "high"
	OutlierLow  OutlierType = "low"
)

func (BusinessSummary) Kind() Kind        { return KindBusinessSummary }
func (ServicePerformance) Kind() Kind     { return KindServicePerformance }
func (FinancialSummary) Kind() Kind       { return KindFinancialSummary }
func (CustomerAnalytics) Kind() Kind      { return KindCustomerAnalytics }
func (TransactionHistory) Kind() Kind     { return KindTransactionHistory }
func (ExpenseBreakdown) Kind() Kind       { return KindExpenseBreakdown }
func (DailyOperations) Kind() Kind        { return KindDailyOperations }
func (HighValueTransactions) Kind() Kind  { return KindHighValueTransactions }
func (ExpenseAnomalies) Kind() Kind       { return KindExpenseAnomalies }
func (InactiveCustomers) Kind() Kind      { return KindInactiveCustomers }
func (LowPerformanceServices) Kind() Kind { return KindLowPerformanceServices }
func (RevenueOutliers) Kind() Kind        { return KindRevenueOutliers }

func (r BusinessSummary) PeriodLabel() string        { return r.Period }
func (r ServicePerformance) PeriodLabel() string     { return r.Period }
func (r FinancialSummary) PeriodLabel() string       { return r.Period }
func (r CustomerAnalytics) PeriodLabel() string      { return r.Period }
func (r TransactionHistory) PeriodLabel() string     { return r.Period }
func (r ExpenseBreakdown) PeriodLabel() string       { return r.Period }
func (r DailyOperations) PeriodLabel() string        { return r.Period }
func (r HighValueTransactions) PeriodLabel() string  { return r.Period }
func (r ExpenseAnomalies) PeriodLabel() string       { return r.Period }
func (r InactiveCustomers) PeriodLabel() string      { return r.Period }
func (r LowPerformanceServices) PeriodLabel() string { return r.Period }
func (r RevenueOutliers) PeriodLabel() string        { return r.Period }

func (BusinessSummary) isReport()        {}
func (ServicePerformance) isReport()     {}
func (FinancialSummary) isReport()       {}
func (CustomerAnalytics) isReport()      {}
func (TransactionHistory) isReport()     {}
func (ExpenseBreakdown) isReport()       {}
func (DailyOperations) isReport()        {}
func (HighValueTransactions) isReport()  {}
func (ExpenseAnomalies) isReport()       {}
func (InactiveCustomers) isReport()      {}
func (LowPerformanceServices) isReport() {}
func (RevenueOutliers) isReport()        {}
