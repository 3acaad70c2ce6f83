package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/middleware"
	"github.com/dompetku/dompetku-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	authService *service.AuthService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(authService *service.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

// UpdateProfileRequest represents the update profile request body
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	user, err := h.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to get profile")
		return NewInternalError(c, "Failed to get profile")
	}

	return NewSuccessResponse(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Unauthenticated")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return NewValidationError(c, "Validation failed", fieldError("name", "The name field is required"))
	}
	if len(name) > domain.MaxCategoryNameLength {
		return NewValidationError(c, "Validation failed", fieldError("name", "The name may not be greater than 255 characters"))
	}

	user, err := h.authService.UpdateName(userID, name)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to update profile")
		return NewInternalError(c, "Failed to update profile")
	}

	return NewMessageResponse(c, http.StatusOK, "Profile updated successfully", user)
}
