package service

import (
	"math/rand"
	"strings"

	"github.com/dompetku/dompetku-backend/internal/domain"
)

// CategoryService handles category business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// categoryPalette supplies icon/color pairs for categories created without
// explicit ones
var categoryPalette = []struct {
	Icon  string
	Color string
}{
	{"🏷️", "#10B981"},
	{"💰", "#8B5CF6"},
	{"🛒", "#EF4444"},
	{"📦", "#F59E0B"},
	{"🎯", "#06B6D4"},
	{"📌", "#EC4899"},
	{"⭐", "#6366F1"},
	{"💡", "#64748B"},
}

type seedCategory struct {
	Name  string
	Icon  string
	Color string
	Type  domain.TransactionType
}

// defaultCategories is the starter set seeded for every new user
var defaultCategories = []seedCategory{
	{"Gaji", "💼", "#10B981", domain.TransactionTypeIncome},
	{"Bonus", "🎁", "#8B5CF6", domain.TransactionTypeIncome},
	{"Freelance", "💻", "#06B6D4", domain.TransactionTypeIncome},
	{"Lainnya", "💰", "#14B8A6", domain.TransactionTypeIncome},

	{"Makanan", "🍔", "#EF4444", domain.TransactionTypeExpense},
	{"Transportasi", "🚗", "#F59E0B", domain.TransactionTypeExpense},
	{"Belanja", "🛒", "#EC4899", domain.TransactionTypeExpense},
	{"Hiburan", "🎬", "#A855F7", domain.TransactionTypeExpense},
	{"Tagihan", "📱", "#6366F1", domain.TransactionTypeExpense},
	{"Lainnya", "💸", "#64748B", domain.TransactionTypeExpense},
}

// CreateCategoryInput holds the input for creating a category
type CreateCategoryInput struct {
	Name  string
	Type  domain.TransactionType
	Icon  *string
	Color *string
}

// CreateCategory creates a category. Icon and color fall back to a random
// palette entry when omitted.
func (s *CategoryService) CreateCategory(userID int32, input CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !domain.ValidTransactionType(input.Type) {
		return nil, domain.ErrInvalidTransactionType
	}

	pick := categoryPalette[rand.Intn(len(categoryPalette))]
	icon := pick.Icon
	color := pick.Color
	if input.Icon != nil && *input.Icon != "" {
		icon = *input.Icon
	}
	if input.Color != nil && *input.Color != "" {
		color = *input.Color
	}

	return s.categoryRepo.Create(&domain.Category{
		UserID: userID,
		Name:   name,
		Type:   input.Type,
		Icon:   icon,
		Color:  color,
	})
}

// SeedDefaults creates the default category set for a newly provisioned user
func (s *CategoryService) SeedDefaults(userID int32) error {
	categories := make([]*domain.Category, len(defaultCategories))
	for i, c := range defaultCategories {
		categories[i] = &domain.Category{
			UserID: userID,
			Name:   c.Name,
			Type:   c.Type,
			Icon:   c.Icon,
			Color:  c.Color,
		}
	}
	return s.categoryRepo.CreateBatch(categories)
}

// GetCategories lists a user's categories, optionally filtered by type
func (s *CategoryService) GetCategories(userID int32, categoryType *domain.TransactionType) ([]*domain.Category, error) {
	return s.categoryRepo.GetAllByUser(userID, categoryType)
}

// GetCategory retrieves a single category scoped to its owner
func (s *CategoryService) GetCategory(userID int32, id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(userID, id)
}

// UpdateCategoryInput holds a partial update; nil fields are left untouched
type UpdateCategoryInput struct {
	Name  *string
	Type  *domain.TransactionType
	Icon  *string
	Color *string
}

// UpdateCategory replaces only the supplied fields
func (s *CategoryService) UpdateCategory(userID int32, id int32, input UpdateCategoryInput) (*domain.Category, error) {
	var name *string
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, domain.ErrNameRequired
		}
		if len(trimmed) > domain.MaxCategoryNameLength {
			return nil, domain.ErrNameTooLong
		}
		name = &trimmed
	}
	if input.Type != nil && !domain.ValidTransactionType(*input.Type) {
		return nil, domain.ErrInvalidTransactionType
	}

	return s.categoryRepo.Update(userID, id, &domain.UpdateCategoryData{
		Name:  name,
		Type:  input.Type,
		Icon:  input.Icon,
		Color: input.Color,
	})
}

// DeleteCategory removes a category scoped to its owner
func (s *CategoryService) DeleteCategory(userID int32, id int32) error {
	return s.categoryRepo.Delete(userID, id)
}
