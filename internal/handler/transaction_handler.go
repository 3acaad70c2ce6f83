package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/middleware"
	"github.com/dompetku/dompetku-backend/internal/service"
	"github.com/dompetku/dompetku-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	receiptService     *service.ReceiptService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, receiptService *service.ReceiptService, publisher websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		receiptService:     receiptService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	CategoryID  int32   `json:"category_id"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date"`
}

// UpdateTransactionRequest represents the update transaction request body
type UpdateTransactionRequest struct {
	CategoryID  *int32  `json:"category_id,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	Type        *string `json:"type,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	var req CreateTransactionRequest
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

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return NewValidationError(c, "Validation failed", fieldError("date", "The date must be in YYYY-MM-DD format"))
	}

	transaction, err := h.transactionService.CreateTransaction(userID, service.CreateTransactionInput{
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Type:        domain.TransactionType(req.Type),
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	h.publisher.Publish(userID, websocket.TransactionCreated(transaction))

	return NewMessageResponse(c, http.StatusCreated, "Transaction created successfully", transaction)
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	transactions, err := h.transactionService.GetTransactions(userID, filters)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	return NewSuccessResponse(c, http.StatusOK, transactions)
}

// GetTransaction handles GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Transaction not found")
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return NewSuccessResponse(c, http.StatusOK, transaction)
}

// UpdateTransaction handles PUT /transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Transaction not found")
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.UpdateTransactionInput{
		CategoryID:  req.CategoryID,
		Description: req.Description,
	}

	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return NewValidationError(c, "Validation failed", fieldError("amount", "The amount must be a valid number"))
		}
		input.Amount = &amount
	}
	if req.Type != nil {
		parsed := domain.TransactionType(*req.Type)
		input.Type = &parsed
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return NewValidationError(c, "Validation failed", fieldError("date", "The date must be in YYYY-MM-DD format"))
		}
		input.Date = &date
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	h.publisher.Publish(userID, websocket.TransactionUpdated(transaction))

	return NewMessageResponse(c, http.StatusOK, "Transaction updated successfully", transaction)
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Transaction not found")
	}

	if err := h.transactionService.DeleteTransaction(userID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	h.publisher.Publish(userID, websocket.TransactionDeleted(map[string]int32{"id": id}))

	return NewMessageResponse(c, http.StatusOK, "Transaction deleted successfully", nil)
}

// UploadReceipt handles POST /transactions/:id/receipt
func (h *TransactionHandler) UploadReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}
	if !h.receiptService.IsEnabled() {
		return NewValidationError(c, "Receipt storage is not configured", nil)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Transaction not found")
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	fileHeader, err := c.FormFile("receipt")
	if err != nil {
		return NewValidationError(c, "Validation failed", fieldError("receipt", "The receipt file is required"))
	}
	if fileHeader.Size > service.MaxReceiptSize {
		return NewValidationError(c, "Validation failed", fieldError("receipt", service.ErrReceiptTooLarge.Error()))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return NewValidationError(c, "Validation failed", fieldError("receipt", "The receipt file could not be read"))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxReceiptSize+1))
	if err != nil {
		return NewValidationError(c, "Validation failed", fieldError("receipt", "The receipt file could not be read"))
	}

	key, err := h.receiptService.Upload(c.Request().Context(), userID, id, data, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptTooLarge),
			errors.Is(err, service.ErrReceiptInvalidFormat),
			errors.Is(err, service.ErrReceiptInvalidData):
			return NewValidationError(c, "Validation failed", fieldError("receipt", err.Error()))
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to store receipt")
		return NewInternalError(c, "Failed to store receipt")
	}

	// Replace, not accumulate: drop the previous object once the new one is in.
	if transaction.ReceiptKey != nil {
		if err := h.receiptService.Delete(c.Request().Context(), *transaction.ReceiptKey); err != nil {
			log.Warn().Err(err).Str("key", *transaction.ReceiptKey).Msg("Failed to delete replaced receipt")
		}
	}

	updated, err := h.transactionService.SetReceipt(userID, id, &key)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to attach receipt")
		return NewInternalError(c, "Failed to attach receipt")
	}

	h.publisher.Publish(userID, websocket.TransactionUpdated(updated))

	return NewMessageResponse(c, http.StatusOK, "Receipt uploaded successfully", updated)
}

// GetReceipt handles GET /transactions/:id/receipt
func (h *TransactionHandler) GetReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}
	if !h.receiptService.IsEnabled() {
		return NewValidationError(c, "Receipt storage is not configured", nil)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Transaction not found")
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}
	if transaction.ReceiptKey == nil {
		return NewNotFoundError(c, "Receipt not found")
	}

	url, err := h.receiptService.URL(c.Request().Context(), *transaction.ReceiptKey)
	if err != nil {
		log.Error().Err(err).Str("key", *transaction.ReceiptKey).Msg("Failed to presign receipt URL")
		return NewInternalError(c, "Failed to generate receipt URL")
	}

	return NewSuccessResponse(c, http.StatusOK, map[string]string{"url": url})
}

// DeleteReceipt handles DELETE /transactions/:id/receipt
func (h *TransactionHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}
	if !h.receiptService.IsEnabled() {
		return NewValidationError(c, "Receipt storage is not configured", nil)
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Transaction not found")
	}

	transaction, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}
	if transaction.ReceiptKey == nil {
		return NewNotFoundError(c, "Receipt not found")
	}

	if err := h.receiptService.Delete(c.Request().Context(), *transaction.ReceiptKey); err != nil {
		log.Error().Err(err).Str("key", *transaction.ReceiptKey).Msg("Failed to delete receipt object")
		return NewInternalError(c, "Failed to delete receipt")
	}

	updated, err := h.transactionService.SetReceipt(userID, id, nil)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Int32("transaction_id", id).Msg("Failed to detach receipt")
		return NewInternalError(c, "Failed to detach receipt")
	}

	h.publisher.Publish(userID, websocket.TransactionUpdated(updated))

	return NewMessageResponse(c, http.StatusOK, "Receipt deleted successfully", updated)
}

// transactionErrorResponse maps shared transaction input errors to responses.
// Returns nil for errors it does not recognize.
func transactionErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", fieldError("amount", "The amount must be a non-negative number"))
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", fieldError("type", "The type must be income or expense"))
	case errors.Is(err, domain.ErrInvalidDate):
		return NewValidationError(c, "Validation failed", fieldError("date", "The date must be a valid date"))
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return NewValidationError(c, "Validation failed", fieldError("description", "The description may not be greater than 1000 characters"))
	case errors.Is(err, domain.ErrCategoryNotOwned):
		return NewForbiddenError(c, "Category not found or not belongs to you")
	}
	return nil
}

// parseTransactionFilters builds filters from query parameters. All filters
// are optional and combine conjunctively.
func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{}

	if t := c.QueryParam("type"); t != "" {
		parsed := domain.TransactionType(t)
		if !domain.ValidTransactionType(parsed) {
			return nil, errors.New("type must be income or expense")
		}
		filters.Type = &parsed
	}
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, errors.New("category_id must be an integer")
		}
		categoryID := int32(id)
		filters.CategoryID = &categoryID
	}
	if v := c.QueryParam("start_date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("start_date must be in YYYY-MM-DD format")
		}
		filters.StartDate = &date
	}
	if v := c.QueryParam("end_date"); v != "" {
		date, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("end_date must be in YYYY-MM-DD format")
		}
		filters.EndDate = &date
	}
	if v := c.QueryParam("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return nil, errors.New("month must be between 1 and 12")
		}
		filters.Month = &month
	}
	if v := c.QueryParam("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("year must be an integer")
		}
		filters.Year = &year
	}

	return filters, nil
}
