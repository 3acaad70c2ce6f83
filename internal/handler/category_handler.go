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
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	publisher       websocket.EventPublisher
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService, publisher websocket.EventPublisher) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		publisher:       publisher,
	}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// UpdateCategoryRequest represents the update category request body
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Type  *string `json:"type,omitempty"`
	Icon  *string `json:"icon,omitempty"`
	Color *string `json:"color,omitempty"`
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(userID, service.CreateCategoryInput{
		Name:  req.Name,
		Type:  domain.TransactionType(req.Type),
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", fieldError("name", "The name field is required"))
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", fieldError("name", "The name may not be greater than 255 characters"))
		}
		if errors.Is(err, domain.ErrInvalidTransactionType) {
			return NewValidationError(c, "Validation failed", fieldError("type", "The type must be income or expense"))
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to create category")
		return NewInternalError(c, "Failed to create category")
	}

	h.publisher.Publish(userID, websocket.CategoryCreated(category))

	return NewMessageResponse(c, http.StatusCreated, "Category created successfully", category)
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	var categoryType *domain.TransactionType
	if t := c.QueryParam("type"); t != "" {
		parsed := domain.TransactionType(t)
		if !domain.ValidTransactionType(parsed) {
			return NewValidationError(c, "Validation failed", fieldError("type", "The type must be income or expense"))
		}
		categoryType = &parsed
	}

	categories, err := h.categoryService.GetCategories(userID, categoryType)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}

	return NewSuccessResponse(c, http.StatusOK, categories)
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Category not found")
	}

	category, err := h.categoryService.GetCategory(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("category_id", id).Msg("Failed to get category")
		return NewInternalError(c, "Failed to get category")
	}

	return NewSuccessResponse(c, http.StatusOK, category)
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Category not found")
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var categoryType *domain.TransactionType
	if req.Type != nil {
		parsed := domain.TransactionType(*req.Type)
		categoryType = &parsed
	}

	category, err := h.categoryService.UpdateCategory(userID, id, service.UpdateCategoryInput{
		Name:  req.Name,
		Type:  categoryType,
		Icon:  req.Icon,
		Color: req.Color,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", fieldError("name", "The name field is required"))
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", fieldError("name", "The name may not be greater than 255 characters"))
		}
		if errors.Is(err, domain.ErrInvalidTransactionType) {
			return NewValidationError(c, "Validation failed", fieldError("type", "The type must be income or expense"))
		}
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("category_id", id).Msg("Failed to update category")
		return NewInternalError(c, "Failed to update category")
	}

	h.publisher.Publish(userID, websocket.CategoryUpdated(category))

	return NewMessageResponse(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewNotFoundError(c, "Category not found")
	}

	if err := h.categoryService.DeleteCategory(userID, id); err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Int32("category_id", id).Msg("Failed to delete category")
		return NewInternalError(c, "Failed to delete category")
	}

	h.publisher.Publish(userID, websocket.CategoryDeleted(map[string]int32{"id": id}))

	return NewMessageResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

// parseIDParam parses the :id path parameter
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}
