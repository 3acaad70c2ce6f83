package service

import (
	"errors"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget ledger business logic
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.CategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// EnrichedBudget is a budget with its derived consumption figures
type EnrichedBudget struct {
	*domain.Budget
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
}

// BudgetList is the list payload: budgets plus the period's total income,
// reported once at the list level
type BudgetList struct {
	TotalIncome decimal.Decimal   `json:"total_income"`
	Budgets     []*EnrichedBudget `json:"budgets"`
}

// CreateBudgetInput holds the input for creating a budget
type CreateBudgetInput struct {
	CategoryID int32
	Amount     decimal.Decimal
	Month      int
	Year       int
}

// CreateBudget creates a budget with used = 0. At most one budget may exist
// per (user, category, month, year); a duplicate period is a conflict.
func (s *BudgetService) CreateBudget(userID int32, input CreateBudgetInput) (*EnrichedBudget, error) {
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Month < 1 || input.Month > 12 {
		return nil, domain.ErrInvalidMonth
	}
	if input.Year < domain.MinBudgetYear {
		return nil, domain.ErrInvalidYear
	}

	if _, err := s.categoryRepo.GetByID(userID, input.CategoryID); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, domain.ErrCategoryNotOwned
		}
		return nil, err
	}

	period := domain.Period{Month: input.Month, Year: input.Year}
	exists, err := s.budgetRepo.ExistsForPeriod(userID, input.CategoryID, period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrBudgetExists
	}

	created, err := s.budgetRepo.Create(&domain.Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Used:       decimal.Zero,
		Month:      input.Month,
		Year:       input.Year,
	})
	if err != nil {
		return nil, err
	}
	return enrich(created), nil
}

// GetBudgets lists budgets, optionally scoped to one period. The period also
// scopes the list-level income total; a nil period means all budgets with the
// income total computed over the caller-resolved current period.
func (s *BudgetService) GetBudgets(userID int32, period *domain.Period, incomePeriod domain.Period) (*BudgetList, error) {
	totalIncome, err := s.transactionRepo.SumByType(userID, domain.TransactionTypeIncome, &incomePeriod)
	if err != nil {
		return nil, err
	}

	budgets, err := s.budgetRepo.GetByUser(userID, period)
	if err != nil {
		return nil, err
	}

	enriched := make([]*EnrichedBudget, len(budgets))
	for i, b := range budgets {
		enriched[i] = enrich(b)
	}

	return &BudgetList{
		TotalIncome: totalIncome,
		Budgets:     enriched,
	}, nil
}

// GetBudget retrieves a single enriched budget scoped to its owner
func (s *BudgetService) GetBudget(userID int32, id int32) (*EnrichedBudget, error) {
	budget, err := s.budgetRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	return enrich(budget), nil
}

// UpdateBudgetInput holds a partial update; nil fields are left untouched
type UpdateBudgetInput struct {
	CategoryID *int32
	Amount     *decimal.Decimal
	Month      *int
	Year       *int
}

// UpdateBudget replaces only the supplied fields. The used counter is never
// reconciled against existing transactions.
func (s *BudgetService) UpdateBudget(userID int32, id int32, input UpdateBudgetInput) (*EnrichedBudget, error) {
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Month != nil && (*input.Month < 1 || *input.Month > 12) {
		return nil, domain.ErrInvalidMonth
	}
	if input.Year != nil && *input.Year < domain.MinBudgetYear {
		return nil, domain.ErrInvalidYear
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(userID, *input.CategoryID); err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return nil, domain.ErrCategoryNotOwned
			}
			return nil, err
		}
	}

	updated, err := s.budgetRepo.Update(userID, id, &domain.UpdateBudgetData{
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Month:      input.Month,
		Year:       input.Year,
	})
	if err != nil {
		return nil, err
	}
	return enrich(updated), nil
}

// DeleteBudget removes a budget scoped to its owner
func (s *BudgetService) DeleteBudget(userID int32, id int32) error {
	return s.budgetRepo.Delete(userID, id)
}

func enrich(b *domain.Budget) *EnrichedBudget {
	return &EnrichedBudget{
		Budget:     b,
		Remaining:  b.Remaining(),
		Percentage: b.Percentage(),
	}
}
