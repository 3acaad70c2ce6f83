package service

import (
	"github.com/dompetku/dompetku-backend/internal/domain"
)

// RecentTransactionsLimit caps the dashboard's recent-activity view
const RecentTransactionsLimit = 10

// ReportService derives aggregate figures directly from the transaction
// ledger on demand. It keeps no state of its own; the budget ledger's used
// counter is the one incrementally maintained figure, and it lives elsewhere.
type ReportService struct {
	transactionRepo domain.TransactionRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository) *ReportService {
	return &ReportService{transactionRepo: transactionRepo}
}

// GetSummary composes the dashboard payload for a period. The period is
// resolved by the caller (defaulting to the current calendar month/year at
// the request boundary).
func (s *ReportService) GetSummary(userID int32, period domain.Period) (*domain.DashboardSummary, error) {
	income, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeIncome, &period)
	if err != nil {
		return nil, err
	}
	expense, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeExpense, &period)
	if err != nil {
		return nil, err
	}

	allTimeIncome, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeIncome, nil)
	if err != nil {
		return nil, err
	}
	allTimeExpense, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeExpense, nil)
	if err != nil {
		return nil, err
	}

	recent, err := s.transactionRepo.GetRecent(userID, RecentTransactionsLimit)
	if err != nil {
		return nil, err
	}

	expenseByCategory, err := s.transactionRepo.GroupByCategory(userID, domain.TransactionTypeExpense, period)
	if err != nil {
		return nil, err
	}
	incomeByCategory, err := s.transactionRepo.GroupByCategory(userID, domain.TransactionTypeIncome, period)
	if err != nil {
		return nil, err
	}

	return &domain.DashboardSummary{
		Period: period,
		CurrentMonth: domain.PeriodTotals{
			Income:  income,
			Expense: expense,
			Balance: income.Sub(expense),
		},
		AllTime: domain.PeriodTotals{
			Income:  allTimeIncome,
			Expense: allTimeExpense,
			Balance: allTimeIncome.Sub(allTimeExpense),
		},
		RecentTransactions: recent,
		ExpenseByCategory:  expenseByCategory,
		IncomeByCategory:   incomeByCategory,
	}, nil
}

// GetMonthlyReport returns the 12-entry series for a year, one entry per
// calendar month, zero-filled where no transactions exist.
func (s *ReportService) GetMonthlyReport(userID int32, year int) (*domain.MonthlyReport, error) {
	totals, err := s.transactionRepo.MonthlyTotals(userID, year)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[int]*domain.MonthlyTotal, len(totals))
	for _, t := range totals {
		byMonth[t.Month] = t
	}

	entries := make([]*domain.MonthlyReportEntry, 12)
	for month := 1; month <= 12; month++ {
		entry := &domain.MonthlyReportEntry{Month: month}
		if t, ok := byMonth[month]; ok {
			entry.Income = t.Income
			entry.Expense = t.Expense
		}
		entry.Balance = entry.Income.Sub(entry.Expense)
		entries[month-1] = entry
	}

	return &domain.MonthlyReport{
		Year:        year,
		MonthlyData: entries,
	}, nil
}
