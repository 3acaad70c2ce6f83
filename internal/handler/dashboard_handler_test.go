package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/service"
	"github.com/dompetku/dompetku-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newDashboardHandlerFixture() (*DashboardHandler, *testutil.MockTransactionRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	reportService := service.NewReportService(transactionRepo)
	return NewDashboardHandler(reportService), transactionRepo
}

func TestGetSummary_ExplicitPeriod(t *testing.T) {
	e := echo.New()
	handler, transactionRepo := newDashboardHandlerFixture()

	userID := int32(1)
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(5000000),
		Type:   domain.TransactionTypeIncome,
		Date:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: 2, UserID: userID, CategoryID: 2,
		Amount: decimal.NewFromInt(450000),
		Type:   domain.TransactionTypeExpense,
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?month=3&year=2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var summary domain.DashboardSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		t.Fatalf("Failed to unmarshal summary: %v", err)
	}

	if summary.Period.Month != 3 || summary.Period.Year != 2025 {
		t.Errorf("Expected period 3/2025, got %d/%d", summary.Period.Month, summary.Period.Year)
	}
	if !summary.CurrentMonth.Balance.Equal(decimal.NewFromInt(4550000)) {
		t.Errorf("Expected balance 4550000, got %s", summary.CurrentMonth.Balance.String())
	}
	if len(summary.RecentTransactions) != 2 {
		t.Errorf("Expected 2 recent transactions, got %d", len(summary.RecentTransactions))
	}
}

func TestGetSummary_InvalidMonth(t *testing.T) {
	e := echo.New()
	handler, _ := newDashboardHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?month=14&year=2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, 1)

	if err := handler.GetSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}
}

func TestGetMonthlyReport_TwelveEntries(t *testing.T) {
	e := echo.New()
	handler, transactionRepo := newDashboardHandlerFixture()

	userID := int32(1)
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: userID, CategoryID: 1,
		Amount: decimal.NewFromInt(100000),
		Type:   domain.TransactionTypeExpense,
		Date:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/monthly-report?year=2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, userID)

	if err := handler.GetMonthlyReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var report domain.MonthlyReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("Failed to unmarshal report: %v", err)
	}

	if report.Year != 2025 {
		t.Errorf("Expected year 2025, got %d", report.Year)
	}
	if len(report.MonthlyData) != 12 {
		t.Fatalf("Expected 12 entries, got %d", len(report.MonthlyData))
	}
	if !report.MonthlyData[5].Expense.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("Expected June expense 100000, got %s", report.MonthlyData[5].Expense.String())
	}
}

func TestGetMonthlyReport_BadYear(t *testing.T) {
	e := echo.New()
	handler, _ := newDashboardHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/monthly-report?year=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, 1)

	if err := handler.GetMonthlyReport(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected status 422, got %d", rec.Code)
	}
}
