package handler

import (
	"net/http"
	"strconv"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/middleware"
	"github.com/dompetku/dompetku-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard aggregation HTTP requests
type DashboardHandler struct {
	reportService *service.ReportService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(reportService *service.ReportService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// GetSummary handles GET /dashboard/summary
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	// The period defaults to the server's current calendar month, resolved
	// here once for the whole summary.
	period := domain.CurrentPeriod()
	if v := c.QueryParam("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return NewValidationError(c, "Validation failed", fieldError("month", "The month must be between 1 and 12"))
		}
		period.Month = month
	}
	if v := c.QueryParam("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < domain.MinBudgetYear {
			return NewValidationError(c, "Validation failed", fieldError("year", "The year must be 2000 or later"))
		}
		period.Year = year
	}

	summary, err := h.reportService.GetSummary(userID, period)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to build dashboard summary")
		return NewInternalError(c, "Failed to build dashboard summary")
	}

	return NewSuccessResponse(c, http.StatusOK, summary)
}

// GetMonthlyReport handles GET /dashboard/monthly-report
func (h *DashboardHandler) GetMonthlyReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	year := domain.CurrentPeriod().Year
	if v := c.QueryParam("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < domain.MinBudgetYear {
			return NewValidationError(c, "Validation failed", fieldError("year", "The year must be 2000 or later"))
		}
		year = parsed
	}

	report, err := h.reportService.GetMonthlyReport(userID, year)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Int("year", year).Msg("Failed to build monthly report")
		return NewInternalError(c, "Failed to build monthly report")
	}

	return NewSuccessResponse(c, http.StatusOK, report)
}
