package service

import (
	"errors"
	"strings"
	"time"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction recording and its budget side effect
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
	budgetRepo      domain.BudgetRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository, budgetRepo domain.BudgetRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		budgetRepo:      budgetRepo,
	}
}

// CreateTransactionInput holds the input for recording a transaction
type CreateTransactionInput struct {
	CategoryID  int32
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Description *string
	Date        time.Time
}

// CreateTransaction records a transaction. The category must belong to the
// caller; the check and the existence check share one error so callers cannot
// probe which categories exist. On success, an expense consumes the matching
// budget.
func (s *TransactionService) CreateTransaction(userID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidTransactionType(input.Type) {
		return nil, domain.ErrInvalidTransactionType
	}
	if input.Date.IsZero() {
		return nil, domain.ErrInvalidDate
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			if len(trimmed) > domain.MaxDescriptionLength {
				return nil, domain.ErrDescriptionTooLong
			}
			description = &trimmed
		}
	}

	category, err := s.categoryRepo.GetByID(userID, input.CategoryID)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, domain.ErrCategoryNotOwned
		}
		return nil, err
	}

	transaction := &domain.Transaction{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Type:        input.Type,
		Description: description,
		Date:        input.Date,
	}

	created, err := s.transactionRepo.Create(transaction)
	if err != nil {
		return nil, err
	}
	created.Category = category

	// Best effort: a failed budget update never rolls the transaction back.
	if created.Type == domain.TransactionTypeExpense {
		s.applyExpenseToBudget(userID, created.CategoryID, created.Amount)
	}

	return created, nil
}

// applyExpenseToBudget adds amount to the budget matching (user, category).
// The lookup deliberately ignores the transaction's month and year and takes
// the first budget row for the category. No matching budget is not an error.
// This is the only place budget consumption is ever written; update and
// delete never reverse it.
func (s *TransactionService) applyExpenseToBudget(userID int32, categoryID int32, amount decimal.Decimal) {
	budget, err := s.budgetRepo.GetFirstByCategory(userID, categoryID)
	if err != nil {
		if !errors.Is(err, domain.ErrBudgetNotFound) {
			log.Warn().Err(err).Int32("user_id", userID).Int32("category_id", categoryID).Msg("Budget lookup failed")
		}
		return
	}

	if err := s.budgetRepo.AddUsed(budget.ID, amount); err != nil {
		log.Warn().Err(err).Int32("user_id", userID).Int32("budget_id", budget.ID).Msg("Budget consumption update failed")
	}
}

// GetTransaction retrieves a single transaction scoped to its owner
func (s *TransactionService) GetTransaction(userID int32, id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}

// GetTransactions retrieves transactions with optional conjunctive filters
func (s *TransactionService) GetTransactions(userID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	return s.transactionRepo.GetByUser(userID, filters)
}

// UpdateTransactionInput holds a partial update; nil fields are left untouched
type UpdateTransactionInput struct {
	CategoryID  *int32
	Amount      *decimal.Decimal
	Type        *domain.TransactionType
	Description *string
	Date        *time.Time
}

// UpdateTransaction replaces only the supplied fields. It never re-runs the
// budget side effect, even when amount or type change.
func (s *TransactionService) UpdateTransaction(userID int32, id int32, input UpdateTransactionInput) (*domain.Transaction, error) {
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Type != nil && !domain.ValidTransactionType(*input.Type) {
		return nil, domain.ErrInvalidTransactionType
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if len(trimmed) > domain.MaxDescriptionLength {
			return nil, domain.ErrDescriptionTooLong
		}
		description = &trimmed
	}

	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(userID, *input.CategoryID); err != nil {
			if errors.Is(err, domain.ErrCategoryNotFound) {
				return nil, domain.ErrCategoryNotOwned
			}
			return nil, err
		}
	}

	return s.transactionRepo.Update(userID, id, &domain.UpdateTransactionData{
		CategoryID:  input.CategoryID,
		Amount:      input.Amount,
		Type:        input.Type,
		Description: description,
		Date:        input.Date,
	})
}

// DeleteTransaction removes a transaction. Budget consumption previously
// applied by this transaction is not reversed.
func (s *TransactionService) DeleteTransaction(userID int32, id int32) error {
	return s.transactionRepo.Delete(userID, id)
}

// SetReceipt attaches or clears (nil key) the stored receipt reference and
// returns the refreshed transaction.
func (s *TransactionService) SetReceipt(userID int32, id int32, key *string) (*domain.Transaction, error) {
	if err := s.transactionRepo.SetReceiptKey(userID, id, key); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetByID(userID, id)
}
