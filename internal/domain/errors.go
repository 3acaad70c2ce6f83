package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrBudgetNotFound      = errors.New("budget not found")

	// ErrCategoryNotOwned is the single signal for both "category does not
	// exist" and "category belongs to another user". The two cases are never
	// distinguished to callers.
	ErrCategoryNotOwned = errors.New("category not found or not belongs to you")

	ErrBudgetExists = errors.New("budget already exists for this category and period")

	ErrInvalidAmount          = errors.New("amount must be a non-negative number")
	ErrInvalidTransactionType = errors.New("type must be income or expense")
	ErrInvalidDate            = errors.New("date must be a valid calendar date")
	ErrInvalidMonth           = errors.New("month must be between 1 and 12")
	ErrInvalidYear            = errors.New("year must be 2000 or later")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrDescriptionTooLong     = errors.New("description exceeds maximum length")

	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")
)

// Validation constants
const (
	MaxCategoryNameLength = 255
	MaxDescriptionLength  = 1000
	MinBudgetYear         = 2000
)
