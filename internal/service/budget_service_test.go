package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newBudgetServiceFixture() (*BudgetService, *testutil.MockBudgetRepository, *testutil.MockCategoryRepository, *testutil.MockTransactionRepository) {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	return NewBudgetService(budgetRepo, categoryRepo, transactionRepo), budgetRepo, categoryRepo, transactionRepo
}

func TestCreateBudget_Success(t *testing.T) {
	svc, _, categoryRepo, _ := newBudgetServiceFixture()

	userID := int32(1)
	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	budget, err := svc.CreateBudget(userID, CreateBudgetInput{
		CategoryID: 1,
		Amount:     decimal.NewFromInt(1000000),
		Month:      3,
		Year:       2025,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !budget.Used.IsZero() {
		t.Errorf("Expected used to start at zero, got %s", budget.Used.String())
	}
	if !budget.Remaining.Equal(decimal.NewFromInt(1000000)) {
		t.Errorf("Expected remaining 1000000, got %s", budget.Remaining.String())
	}
	if !budget.Percentage.IsZero() {
		t.Errorf("Expected percentage 0, got %s", budget.Percentage.String())
	}
}

func TestCreateBudget_DuplicatePeriod(t *testing.T) {
	svc, budgetRepo, categoryRepo, _ := newBudgetServiceFixture()

	userID := int32(1)
	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	first, err := svc.CreateBudget(userID, CreateBudgetInput{
		CategoryID: 1,
		Amount:     decimal.NewFromInt(1000000),
		Month:      3,
		Year:       2025,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = svc.CreateBudget(userID, CreateBudgetInput{
		CategoryID: 1,
		Amount:     decimal.NewFromInt(2000000),
		Month:      3,
		Year:       2025,
	})
	if !errors.Is(err, domain.ErrBudgetExists) {
		t.Fatalf("Expected ErrBudgetExists, got %v", err)
	}

	// The existing row is untouched
	if !budgetRepo.Budgets[first.ID].Amount.Equal(decimal.NewFromInt(1000000)) {
		t.Errorf("Expected existing budget unchanged, amount = %s", budgetRepo.Budgets[first.ID].Amount.String())
	}
	if len(budgetRepo.Budgets) != 1 {
		t.Errorf("Expected 1 budget, got %d", len(budgetRepo.Budgets))
	}
}

func TestCreateBudget_SamePeriodDifferentCategory(t *testing.T) {
	svc, _, categoryRepo, _ := newBudgetServiceFixture()

	userID := int32(1)
	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})
	categoryRepo.AddCategory(&domain.Category{
		ID: 2, UserID: userID, Name: "Transportasi", Type: domain.TransactionTypeExpense,
	})

	if _, err := svc.CreateBudget(userID, CreateBudgetInput{CategoryID: 1, Amount: decimal.NewFromInt(100), Month: 3, Year: 2025}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.CreateBudget(userID, CreateBudgetInput{CategoryID: 2, Amount: decimal.NewFromInt(100), Month: 3, Year: 2025}); err != nil {
		t.Fatalf("Expected no error for a different category, got %v", err)
	}
}

func TestCreateBudget_ForeignCategory(t *testing.T) {
	svc, budgetRepo, categoryRepo, _ := newBudgetServiceFixture()

	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 2, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	_, err := svc.CreateBudget(1, CreateBudgetInput{
		CategoryID: 1,
		Amount:     decimal.NewFromInt(1000000),
		Month:      3,
		Year:       2025,
	})
	if !errors.Is(err, domain.ErrCategoryNotOwned) {
		t.Fatalf("Expected ErrCategoryNotOwned, got %v", err)
	}
	if len(budgetRepo.Budgets) != 0 {
		t.Error("Expected no budget stored")
	}
}

func TestCreateBudget_InvalidInput(t *testing.T) {
	svc, _, categoryRepo, _ := newBudgetServiceFixture()

	userID := int32(1)
	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	cases := []struct {
		name  string
		input CreateBudgetInput
		want  error
	}{
		{
			name:  "negative amount",
			input: CreateBudgetInput{CategoryID: 1, Amount: decimal.NewFromInt(-1), Month: 3, Year: 2025},
			want:  domain.ErrInvalidAmount,
		},
		{
			name:  "month zero",
			input: CreateBudgetInput{CategoryID: 1, Amount: decimal.NewFromInt(100), Month: 0, Year: 2025},
			want:  domain.ErrInvalidMonth,
		},
		{
			name:  "month thirteen",
			input: CreateBudgetInput{CategoryID: 1, Amount: decimal.NewFromInt(100), Month: 13, Year: 2025},
			want:  domain.ErrInvalidMonth,
		},
		{
			name:  "year before 2000",
			input: CreateBudgetInput{CategoryID: 1, Amount: decimal.NewFromInt(100), Month: 3, Year: 1999},
			want:  domain.ErrInvalidYear,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBudget(userID, tc.input)
			if !errors.Is(err, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestGetBudgets_EnrichmentAndIncome(t *testing.T) {
	svc, budgetRepo, _, transactionRepo := newBudgetServiceFixture()

	userID := int32(1)
	period := domain.Period{Month: 3, Year: 2025}

	// Over-consumed budget: remaining goes negative
	budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(100000), Used: decimal.NewFromInt(150000),
		Month: 3, Year: 2025,
	})
	// Zero-amount budget: percentage stays zero instead of dividing by zero
	budgetRepo.AddBudget(&domain.Budget{
		ID: 2, UserID: userID, CategoryID: 2,
		Amount: decimal.Zero, Used: decimal.NewFromInt(5000),
		Month: 3, Year: 2025,
	})
	// Different period, excluded from the listing
	budgetRepo.AddBudget(&domain.Budget{
		ID: 3, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(100000), Used: decimal.Zero,
		Month: 4, Year: 2025,
	})

	transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, CategoryID: 3,
		Amount: decimal.NewFromInt(5000000),
		Type:   domain.TransactionTypeIncome,
		Date:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	// Income outside the period is not counted
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: 2, UserID: userID, CategoryID: 3,
		Amount: decimal.NewFromInt(9000000),
		Type:   domain.TransactionTypeIncome,
		Date:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})

	list, err := svc.GetBudgets(userID, &period, period)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !list.TotalIncome.Equal(decimal.NewFromInt(5000000)) {
		t.Errorf("Expected total income 5000000, got %s", list.TotalIncome.String())
	}
	if len(list.Budgets) != 2 {
		t.Fatalf("Expected 2 budgets, got %d", len(list.Budgets))
	}

	over := list.Budgets[0]
	if !over.Remaining.Equal(decimal.NewFromInt(-50000)) {
		t.Errorf("Expected remaining -50000, got %s", over.Remaining.String())
	}
	if !over.Percentage.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected percentage 150, got %s", over.Percentage.String())
	}

	zeroCap := list.Budgets[1]
	if !zeroCap.Percentage.IsZero() {
		t.Errorf("Expected percentage 0 for a zero-amount budget, got %s", zeroCap.Percentage.String())
	}
	if !zeroCap.Remaining.Equal(decimal.NewFromInt(-5000)) {
		t.Errorf("Expected remaining -5000, got %s", zeroCap.Remaining.String())
	}
}

func TestUpdateBudget_NeverTouchesUsed(t *testing.T) {
	svc, budgetRepo, categoryRepo, _ := newBudgetServiceFixture()

	userID := int32(1)
	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})
	budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(100000), Used: decimal.NewFromInt(40000),
		Month: 3, Year: 2025,
	})

	newAmount := decimal.NewFromInt(500000)
	updated, err := svc.UpdateBudget(userID, 1, UpdateBudgetInput{Amount: &newAmount})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !updated.Amount.Equal(newAmount) {
		t.Errorf("Expected amount 500000, got %s", updated.Amount.String())
	}
	if !updated.Used.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("Expected used to stay 40000, got %s", updated.Used.String())
	}
	if !updated.Remaining.Equal(decimal.NewFromInt(460000)) {
		t.Errorf("Expected remaining 460000, got %s", updated.Remaining.String())
	}
}

func TestGetBudget_NotFound(t *testing.T) {
	svc, budgetRepo, _, _ := newBudgetServiceFixture()

	budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: 2, CategoryID: 1,
		Amount: decimal.NewFromInt(100000), Used: decimal.Zero,
		Month: 3, Year: 2025,
	})

	// Another user's budget is invisible
	if _, err := svc.GetBudget(1, 1); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Fatalf("Expected ErrBudgetNotFound, got %v", err)
	}
}

func TestDeleteBudget(t *testing.T) {
	svc, budgetRepo, _, _ := newBudgetServiceFixture()

	budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: 1, CategoryID: 1,
		Amount: decimal.NewFromInt(100000), Used: decimal.Zero,
		Month: 3, Year: 2025,
	})

	if err := svc.DeleteBudget(1, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(budgetRepo.Budgets) != 0 {
		t.Error("Expected budget removed")
	}

	if err := svc.DeleteBudget(1, 1); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Fatalf("Expected ErrBudgetNotFound on second delete, got %v", err)
	}
}
