package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint answers with
type APIResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// NewSuccessResponse writes a success envelope with the given payload
func NewSuccessResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Data:    data,
	})
}

// NewMessageResponse writes a success envelope with a message and optional payload
func NewMessageResponse(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewValidationError writes a 422 envelope with per-field error lists
func NewValidationError(c echo.Context, message string, errors map[string][]string) error {
	return c.JSON(http.StatusUnprocessableEntity, APIResponse{
		Success: false,
		Message: message,
		Errors:  errors,
	})
}

// NewNotFoundError writes a 404 envelope
func NewNotFoundError(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, APIResponse{
		Success: false,
		Message: message,
	})
}

// NewForbiddenError writes a 403 envelope
func NewForbiddenError(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, APIResponse{
		Success: false,
		Message: message,
	})
}

// NewConflictError writes a 409 envelope
func NewConflictError(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, APIResponse{
		Success: false,
		Message: message,
	})
}

// NewUnauthorizedError writes a 401 envelope
func NewUnauthorizedError(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, APIResponse{
		Success: false,
		Message: message,
	})
}

// NewInternalError writes a 500 envelope
func NewInternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Message: message,
	})
}

// fieldError builds a single-field validation error map
func fieldError(field, message string) map[string][]string {
	return map[string][]string{field: {message}}
}
