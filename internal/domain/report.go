package domain

import "github.com/shopspring/decimal"

// PeriodTotals holds type-summed figures for one period (or all time).
type PeriodTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// DashboardSummary is the composed dashboard payload.
type DashboardSummary struct {
	Period             Period           `json:"period"`
	CurrentMonth       PeriodTotals     `json:"current_month"`
	AllTime            PeriodTotals     `json:"all_time"`
	RecentTransactions []*Transaction   `json:"recent_transactions"`
	ExpenseByCategory  []*CategoryTotal `json:"expense_by_category"`
	IncomeByCategory   []*CategoryTotal `json:"income_by_category"`
}

// MonthlyReportEntry is one month of the 12-entry yearly report.
type MonthlyReportEntry struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyReport wraps the full-year series.
type MonthlyReport struct {
	Year        int                   `json:"year"`
	MonthlyData []*MonthlyReportEntry `json:"monthly_data"`
}
