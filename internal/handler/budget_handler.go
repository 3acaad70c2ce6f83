package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/middleware"
	"github.com/dompetku/dompetku-backend/internal/service"
	"github.com/dompetku/dompetku-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	publisher     websocket.EventPublisher
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, publisher websocket.EventPublisher) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		publisher:     publisher,
	}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	CategoryID int32  `json:"category_id"`
	Amount     string `json:"amount"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	CategoryID *int32  `json:"category_id,omitempty"`
	Amount     *string `json:"amount,omitempty"`
	Month      *int    `json:"month,omitempty"`
	Year       *int    `json:"year,omitempty"`
}

// CreateBudget handles POST /budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if req.CategoryID <= 0 {
		return NewValidationError(c, "Validation failed", fieldError("category_id", "The category_id field is required"))
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Validation failed", fieldError("amount", "The amount must be a valid number"))
	}

	budget, err := h.budgetService.CreateBudget(userID, service.CreateBudgetInput{
		CategoryID: req.CategoryID,
		Amount:     amount,
		Month:      req.Month,
		Year:       req.Year,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBudgetExists) {
			return NewConflictError(c, "Budget already exists for this category and period")
		}
		if resp := budgetErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	h.publisher.Publish(userID, websocket.BudgetCreated(budget))

	return NewMessageResponse(c, http.StatusCreated, "Budget created successfully", budget)
}

// GetBudgets handles GET /budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	period, err := parseOptionalPeriod(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	// The income total always covers a single period: the requested one, or
	// the current month when listing everything.
	incomePeriod := domain.CurrentPeriod()
	if period != nil {
		incomePeriod = *period
	}

	list, err := h.budgetService.GetBudgets(userID, period, incomePeriod)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to list budgets")
		return NewInternalError(c, "Failed to list budgets")
	}

	return NewSuccessResponse(c, http.StatusOK, list)
}

// GetBudget handles GET /budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Budget not found")
	}

	budget, err := h.budgetService.GetBudget(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}

	return NewSuccessResponse(c, http.StatusOK, budget)
}

// UpdateBudget handles PUT /budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Budget not found")
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateBudgetInput{
		CategoryID: req.CategoryID,
		Month:      req.Month,
		Year:       req.Year,
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Validation failed", fieldError("amount", "The amount must be a valid number"))
		}
		input.Amount = &amount
	}

	budget, err := h.budgetService.UpdateBudget(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if resp := budgetErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	h.publisher.Publish(userID, websocket.BudgetUpdated(budget))

	return NewMessageResponse(c, http.StatusOK, "Budget updated successfully", budget)
}

// DeleteBudget handles DELETE /budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Budget not found")
	}

	if err := h.budgetService.DeleteBudget(userID, id); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	h.publisher.Publish(userID, websocket.BudgetDeleted(map[string]int32{"id": id}))

	return NewMessageResponse(c, http.StatusOK, "Budget deleted successfully", nil)
}

// budgetErrorResponse maps shared budget input errors to responses. Returns
// nil for errors it does not recognize.
func budgetErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", fieldError("amount", "The amount must be a non-negative number"))
	case errors.Is(err, domain.ErrInvalidMonth):
		return NewValidationError(c, "Validation failed", fieldError("month", "The month must be between 1 and 12"))
	case errors.Is(err, domain.ErrInvalidYear):
		return NewValidationError(c, "Validation failed", fieldError("year", "The year must be 2000 or later"))
	case errors.Is(err, domain.ErrCategoryNotOwned):
		return NewForbiddenError(c, "Category not found or not belongs to you")
	}
	return nil
}

// parseOptionalPeriod reads month and year query parameters. Both or neither
// must be present.
func parseOptionalPeriod(c echo.Context) (*domain.Period, error) {
	monthParam := c.QueryParam("month")
	yearParam := c.QueryParam("year")
	if monthParam == "" && yearParam == "" {
		return nil, nil
	}
	if monthParam == "" || yearParam == "" {
		return nil, errors.New("month and year must be provided together")
	}

	month, err := strconv.Atoi(monthParam)
	if err != nil || month < 1 || month > 12 {
		return nil, errors.New("month must be between 1 and 12")
	}
	year, err := strconv.Atoi(yearParam)
	if err != nil || year < domain.MinBudgetYear {
		return nil, errors.New("year must be 2000 or later")
	}

	return &domain.Period{Month: month, Year: year}, nil
}
