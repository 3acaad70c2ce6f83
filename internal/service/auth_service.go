package service

import (
	"errors"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AuthService resolves authenticated identities to local user records
type AuthService struct {
	userRepo        domain.UserRepository
	categoryService *CategoryService
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, categoryService *CategoryService) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		categoryService: categoryService,
	}
}

// GetOrCreateUser looks up the user for an Auth0 subject, provisioning a new
// record (with the default category set) on first sight.
func (s *AuthService) GetOrCreateUser(auth0ID, email string, name *string) (*domain.User, error) {
	user, err := s.userRepo.GetByAuth0ID(auth0ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user, err = s.userRepo.Create(&domain.User{
		Auth0ID: auth0ID,
		Email:   email,
		Name:    name,
	})
	if err != nil {
		return nil, err
	}

	// Seed failure leaves the user with an empty category list; not fatal.
	if err := s.categoryService.SeedDefaults(user.ID); err != nil {
		log.Warn().Err(err).Int32("user_id", user.ID).Msg("Failed to seed default categories")
	}

	log.Info().Int32("user_id", user.ID).Str("email", email).Msg("User provisioned")
	return user, nil
}

// GetProfile retrieves a user's own record
func (s *AuthService) GetProfile(userID int32) (*domain.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateName updates the user's display name
func (s *AuthService) UpdateName(userID int32, name string) (*domain.User, error) {
	return s.userRepo.UpdateName(userID, name)
}
