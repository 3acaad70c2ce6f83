package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/service"
	"github.com/dompetku/dompetku-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type budgetHandlerFixture struct {
	handler         *BudgetHandler
	budgetRepo      *testutil.MockBudgetRepository
	categoryRepo    *testutil.MockCategoryRepository
	transactionRepo *testutil.MockTransactionRepository
	publisher       *testutil.MockPublisher
}

func newBudgetHandlerFixture() budgetHandlerFixture {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	publisher := testutil.NewMockPublisher()
	budgetService := service.NewBudgetService(budgetRepo, categoryRepo, transactionRepo)
	return budgetHandlerFixture{
		handler:         NewBudgetHandler(budgetService, publisher),
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		publisher:       publisher,
	}
}

func TestCreateBudget_Created(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	userID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	body := `{"category_id":1,"amount":"1000000","month":3,"year":2025}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var budget service.EnrichedBudget
	if err := json.Unmarshal(env.Data, &budget); err != nil {
		t.Fatalf("Failed to unmarshal budget: %v", err)
	}
	if !budget.Used.IsZero() {
		t.Errorf("Expected used 0, got %s", budget.Used.String())
	}
	if !budget.Remaining.Equal(decimal.NewFromInt(1000000)) {
		t.Errorf("Expected remaining 1000000, got %s", budget.Remaining.String())
	}

	types := f.publisher.EventTypes()
	if len(types) != 1 || types[0] != "budget.created" {
		t.Errorf("Expected one budget.created event, got %v", types)
	}
}

func TestCreateBudget_DuplicateConflict(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	userID := int32(1)
	f.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})
	f.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(1000000), Used: decimal.Zero,
		Month: 3, Year: 2025,
	})

	body := `{"category_id":1,"amount":"2000000","month":3,"year":2025}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}

	// The existing budget row is untouched
	if !f.budgetRepo.Budgets[1].Amount.Equal(decimal.NewFromInt(1000000)) {
		t.Error("Expected existing budget unchanged")
	}
	if len(f.publisher.Events) != 0 {
		t.Error("Expected no events published")
	}
}

func TestCreateBudget_ForeignCategoryForbidden(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	f.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 2, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	body := `{"category_id":1,"amount":"1000000","month":3,"year":2025}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, 1)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if env.Message != "Category not found or not belongs to you" {
		t.Errorf("Expected the unified ownership message, got %q", env.Message)
	}
}

func TestCreateBudget_InvalidMonth(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	f.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	body := `{"category_id":1,"amount":"1000000","month":13,"year":2025}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/budgets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, 1)

	if err := f.handler.CreateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if _, ok := env.Errors["month"]; !ok {
		t.Errorf("Expected error for field month, got %v", env.Errors)
	}
}

func TestGetBudgets_PeriodScopedWithIncome(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	userID := int32(1)
	f.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(1000000), Used: decimal.NewFromInt(50000),
		Month: 3, Year: 2025,
	})
	f.budgetRepo.AddBudget(&domain.Budget{
		ID: 2, UserID: userID, CategoryID: 2,
		Amount: decimal.NewFromInt(500000), Used: decimal.Zero,
		Month: 4, Year: 2025,
	})
	f.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, CategoryID: 3,
		Amount: decimal.NewFromInt(7000000),
		Type:   domain.TransactionTypeIncome,
		Date:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets?month=3&year=2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := f.handler.GetBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var list service.BudgetList
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("Failed to unmarshal budget list: %v", err)
	}
	if !list.TotalIncome.Equal(decimal.NewFromInt(7000000)) {
		t.Errorf("Expected total income 7000000, got %s", list.TotalIncome.String())
	}
	if len(list.Budgets) != 1 {
		t.Fatalf("Expected 1 budget for March, got %d", len(list.Budgets))
	}
	if !list.Budgets[0].Remaining.Equal(decimal.NewFromInt(950000)) {
		t.Errorf("Expected remaining 950000, got %s", list.Budgets[0].Remaining.String())
	}
	if !list.Budgets[0].Percentage.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected percentage 5, got %s", list.Budgets[0].Percentage.String())
	}
}

func TestGetBudgets_MonthWithoutYear(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/budgets?month=3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, 1)

	if err := f.handler.GetBudgets(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}
}

func TestUpdateBudget_NotFound(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	body := `{"amount":"500000"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/budgets/9", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("9")
	setupAuthContext(c, 1)

	if err := f.handler.UpdateBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteBudget_PublishesEvent(t *testing.T) {
	e := echo.New()
	f := newBudgetHandlerFixture()

	userID := int32(1)
	f.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(1000000), Used: decimal.Zero,
		Month: 3, Year: 2025,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/budgets/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupAuthContext(c, userID)

	if err := f.handler.DeleteBudget(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	types := f.publisher.EventTypes()
	if len(types) != 1 || types[0] != "budget.deleted" {
		t.Errorf("Expected one budget.deleted event, got %v", types)
	}
}
