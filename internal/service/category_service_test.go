package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/testutil"
)

func TestCreateCategory_Success(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(categoryRepo)

	icon := "🍔"
	color := "#EF4444"
	category, err := svc.CreateCategory(1, CreateCategoryInput{
		Name:  "  Makanan  ",
		Type:  domain.TransactionTypeExpense,
		Icon:  &icon,
		Color: &color,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if category.Name != "Makanan" {
		t.Errorf("Expected trimmed name 'Makanan', got %q", category.Name)
	}
	if category.Icon != "🍔" || category.Color != "#EF4444" {
		t.Errorf("Expected explicit icon/color to be kept, got %s %s", category.Icon, category.Color)
	}
}

func TestCreateCategory_PaletteFallback(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(categoryRepo)

	category, err := svc.CreateCategory(1, CreateCategoryInput{
		Name: "Langganan",
		Type: domain.TransactionTypeExpense,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if category.Icon == "" || category.Color == "" {
		t.Error("Expected palette icon and color when none supplied")
	}

	found := false
	for _, p := range categoryPalette {
		if p.Icon == category.Icon && p.Color == category.Color {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected icon/color pair from the palette, got %s %s", category.Icon, category.Color)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(categoryRepo)

	if _, err := svc.CreateCategory(1, CreateCategoryInput{Name: "   ", Type: domain.TransactionTypeExpense}); !errors.Is(err, domain.ErrNameRequired) {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}

	long := strings.Repeat("a", domain.MaxCategoryNameLength+1)
	if _, err := svc.CreateCategory(1, CreateCategoryInput{Name: long, Type: domain.TransactionTypeExpense}); !errors.Is(err, domain.ErrNameTooLong) {
		t.Errorf("Expected ErrNameTooLong, got %v", err)
	}

	if _, err := svc.CreateCategory(1, CreateCategoryInput{Name: "Ok", Type: "transfer"}); !errors.Is(err, domain.ErrInvalidTransactionType) {
		t.Errorf("Expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestSeedDefaults(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(categoryRepo)

	userID := int32(7)
	if err := svc.SeedDefaults(userID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	all, err := svc.GetCategories(userID, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("Expected 10 default categories, got %d", len(all))
	}

	income := 0
	expense := 0
	for _, c := range all {
		switch c.Type {
		case domain.TransactionTypeIncome:
			income++
		case domain.TransactionTypeExpense:
			expense++
		}
		if c.Icon == "" || c.Color == "" {
			t.Errorf("Expected seeded category %q to carry icon and color", c.Name)
		}
	}
	if income != 4 || expense != 6 {
		t.Errorf("Expected 4 income and 6 expense categories, got %d and %d", income, expense)
	}
}

func TestGetCategories_TypeFilter(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(categoryRepo)

	userID := int32(1)
	if err := svc.SeedDefaults(userID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expenseType := domain.TransactionTypeExpense
	expenses, err := svc.GetCategories(userID, &expenseType)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(expenses) != 6 {
		t.Errorf("Expected 6 expense categories, got %d", len(expenses))
	}
	for _, c := range expenses {
		if c.Type != domain.TransactionTypeExpense {
			t.Errorf("Expected only expense categories, got %s", c.Type)
		}
	}
}

func TestUpdateCategory(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(categoryRepo)

	userID := int32(1)
	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: userID, Name: "Makanan", Type: domain.TransactionTypeExpense, Icon: "🍔", Color: "#EF4444",
	})

	name := "Makanan & Minuman"
	updated, err := svc.UpdateCategory(userID, 1, UpdateCategoryInput{Name: &name})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if updated.Name != "Makanan & Minuman" {
		t.Errorf("Expected updated name, got %q", updated.Name)
	}
	if updated.Icon != "🍔" {
		t.Errorf("Expected untouched icon, got %s", updated.Icon)
	}

	// Other users cannot update it
	if _, err := svc.UpdateCategory(2, 1, UpdateCategoryInput{Name: &name}); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound for another user, got %v", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	categoryRepo := testutil.NewMockCategoryRepository()
	svc := NewCategoryService(categoryRepo)

	categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Makanan", Type: domain.TransactionTypeExpense,
	})

	if err := svc.DeleteCategory(2, 1); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Errorf("Expected ErrCategoryNotFound for another user, got %v", err)
	}
	if err := svc.DeleteCategory(1, 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(categoryRepo.Categories) != 0 {
		t.Error("Expected category removed")
	}
}
