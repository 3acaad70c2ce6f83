package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/dompetku/dompetku-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users  map[string]*domain.User
	ByID   map[int32]*domain.User
	NextID int32
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[string]*domain.User),
		ByID:   make(map[int32]*domain.User),
		NextID: 1,
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id int32) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	user.ID = m.NextID
	m.NextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// UpdateName updates only the user's display name
func (m *MockUserRepository) UpdateName(id int32, name string) (*domain.User, error) {
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	user.UpdatedAt = time.Now()
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	category.ID = m.NextID
	m.NextID++
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// CreateBatch creates multiple categories
func (m *MockCategoryRepository) CreateBatch(categories []*domain.Category) error {
	for _, c := range categories {
		if _, err := m.Create(c); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a category scoped to its owner
func (m *MockCategoryRepository) GetByID(userID int32, id int32) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.UserID != userID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// GetAllByUser lists a user's categories, optionally filtered by type
func (m *MockCategoryRepository) GetAllByUser(userID int32, categoryType *domain.TransactionType) ([]*domain.Category, error) {
	var result []*domain.Category
	for _, c := range m.Categories {
		if c.UserID != userID {
			continue
		}
		if categoryType != nil && c.Type != *categoryType {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update replaces only the supplied fields
func (m *MockCategoryRepository) Update(userID int32, id int32, data *domain.UpdateCategoryData) (*domain.Category, error) {
	category, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if data.Name != nil {
		category.Name = *data.Name
	}
	if data.Type != nil {
		category.Type = *data.Type
	}
	if data.Icon != nil {
		category.Icon = *data.Icon
	}
	if data.Color != nil {
		category.Color = *data.Color
	}
	category.UpdatedAt = time.Now()
	return category, nil
}

// Delete removes a category scoped to its owner
func (m *MockCategoryRepository) Delete(userID int32, id int32) error {
	if _, err := m.GetByID(userID, id); err != nil {
		return err
	}
	delete(m.Categories, id)
	return nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32
	clock        time.Time
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
		clock:        time.Now(),
	}
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	transaction.ID = m.NextID
	m.NextID++
	// Monotonic created_at so recency ordering is deterministic in tests
	m.clock = m.clock.Add(time.Second)
	transaction.CreatedAt = m.clock
	transaction.UpdatedAt = m.clock
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction scoped to its owner
func (m *MockTransactionRepository) GetByID(userID int32, id int32) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// GetByUser lists transactions with conjunctive optional filters, newest first
func (m *MockTransactionRepository) GetByUser(userID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for _, t := range m.Transactions {
		if t.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.Type != nil && t.Type != *filters.Type {
				continue
			}
			if filters.CategoryID != nil && t.CategoryID != *filters.CategoryID {
				continue
			}
			if filters.StartDate != nil && t.Date.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && t.Date.After(*filters.EndDate) {
				continue
			}
			if filters.Month != nil && int(t.Date.Month()) != *filters.Month {
				continue
			}
			if filters.Year != nil && t.Date.Year() != *filters.Year {
				continue
			}
		}
		result = append(result, t)
	}
	sortByRecency(result)
	return result, nil
}

// GetRecent lists the newest transactions up to limit
func (m *MockTransactionRepository) GetRecent(userID int32, limit int) ([]*domain.Transaction, error) {
	result, err := m.GetByUser(userID, nil)
	if err != nil {
		return nil, err
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Update replaces only the supplied fields
func (m *MockTransactionRepository) Update(userID int32, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	transaction, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if data.CategoryID != nil {
		transaction.CategoryID = *data.CategoryID
	}
	if data.Amount != nil {
		transaction.Amount = *data.Amount
	}
	if data.Type != nil {
		transaction.Type = *data.Type
	}
	if data.Description != nil {
		if *data.Description == "" {
			transaction.Description = nil
		} else {
			transaction.Description = data.Description
		}
	}
	if data.Date != nil {
		transaction.Date = *data.Date
	}
	transaction.UpdatedAt = time.Now()
	return transaction, nil
}

// Delete removes a transaction scoped to its owner
func (m *MockTransactionRepository) Delete(userID int32, id int32) error {
	if _, err := m.GetByID(userID, id); err != nil {
		return err
	}
	delete(m.Transactions, id)
	return nil
}

// SetReceiptKey attaches or clears the stored receipt reference
func (m *MockTransactionRepository) SetReceiptKey(userID int32, id int32, key *string) error {
	transaction, err := m.GetByID(userID, id)
	if err != nil {
		return err
	}
	transaction.ReceiptKey = key
	transaction.UpdatedAt = time.Now()
	return nil
}

// SumByType sums amounts for one type, optionally scoped to a period
func (m *MockTransactionRepository) SumByType(userID int32, transactionType domain.TransactionType, period *domain.Period) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range m.Transactions {
		if t.UserID != userID || t.Type != transactionType {
			continue
		}
		if period != nil && !period.Contains(t.Date) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

// GroupByCategory sums amounts per category for one type and period, largest first
func (m *MockTransactionRepository) GroupByCategory(userID int32, transactionType domain.TransactionType, period domain.Period) ([]*domain.CategoryTotal, error) {
	byCategory := make(map[int32]*domain.CategoryTotal)
	for _, t := range m.Transactions {
		if t.UserID != userID || t.Type != transactionType || !period.Contains(t.Date) {
			continue
		}
		entry, ok := byCategory[t.CategoryID]
		if !ok {
			entry = &domain.CategoryTotal{CategoryID: t.CategoryID, Total: decimal.Zero, Category: t.Category}
			byCategory[t.CategoryID] = entry
		}
		entry.Total = entry.Total.Add(t.Amount)
	}

	result := make([]*domain.CategoryTotal, 0, len(byCategory))
	for _, entry := range byCategory {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Total.GreaterThan(result[j].Total) })
	return result, nil
}

// MonthlyTotals sums income and expense per calendar month of a year. Months
// without transactions are absent, matching the grouped query.
func (m *MockTransactionRepository) MonthlyTotals(userID int32, year int) ([]*domain.MonthlyTotal, error) {
	byMonth := make(map[int]*domain.MonthlyTotal)
	for _, t := range m.Transactions {
		if t.UserID != userID || t.Date.Year() != year {
			continue
		}
		month := int(t.Date.Month())
		entry, ok := byMonth[month]
		if !ok {
			entry = &domain.MonthlyTotal{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[month] = entry
		}
		switch t.Type {
		case domain.TransactionTypeIncome:
			entry.Income = entry.Income.Add(t.Amount)
		case domain.TransactionTypeExpense:
			entry.Expense = entry.Expense.Add(t.Amount)
		}
	}

	result := make([]*domain.MonthlyTotal, 0, len(byMonth))
	for _, entry := range byMonth {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result, nil
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	m.Transactions[transaction.ID] = transaction
	if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
}

// sortByRecency orders by date desc, then created_at desc
func sortByRecency(transactions []*domain.Transaction) {
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.After(transactions[j].Date)
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = m.NextID
	m.NextID++
	budget.CreatedAt = time.Now()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget scoped to its owner
func (m *MockBudgetRepository) GetByID(userID int32, id int32) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.UserID != userID {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// GetByUser lists budgets, optionally scoped to one period
func (m *MockBudgetRepository) GetByUser(userID int32, period *domain.Period) ([]*domain.Budget, error) {
	var result []*domain.Budget
	for _, b := range m.Budgets {
		if b.UserID != userID {
			continue
		}
		if period != nil && (b.Month != period.Month || b.Year != period.Year) {
			continue
		}
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetFirstByCategory returns the lowest-ID budget row for the category,
// irrespective of month and year
func (m *MockBudgetRepository) GetFirstByCategory(userID int32, categoryID int32) (*domain.Budget, error) {
	var first *domain.Budget
	for _, b := range m.Budgets {
		if b.UserID != userID || b.CategoryID != categoryID {
			continue
		}
		if first == nil || b.ID < first.ID {
			first = b
		}
	}
	if first == nil {
		return nil, domain.ErrBudgetNotFound
	}
	return first, nil
}

// ExistsForPeriod reports whether a budget exists for (category, month, year)
func (m *MockBudgetRepository) ExistsForPeriod(userID int32, categoryID int32, period domain.Period) (bool, error) {
	for _, b := range m.Budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month == period.Month && b.Year == period.Year {
			return true, nil
		}
	}
	return false, nil
}

// AddUsed increments the consumption counter
func (m *MockBudgetRepository) AddUsed(id int32, amount decimal.Decimal) error {
	budget, ok := m.Budgets[id]
	if !ok {
		return domain.ErrBudgetNotFound
	}
	budget.Used = budget.Used.Add(amount)
	budget.UpdatedAt = time.Now()
	return nil
}

// Update replaces only the supplied fields. Used is never touched.
func (m *MockBudgetRepository) Update(userID int32, id int32, data *domain.UpdateBudgetData) (*domain.Budget, error) {
	budget, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if data.CategoryID != nil {
		budget.CategoryID = *data.CategoryID
	}
	if data.Amount != nil {
		budget.Amount = *data.Amount
	}
	if data.Month != nil {
		budget.Month = *data.Month
	}
	if data.Year != nil {
		budget.Year = *data.Year
	}
	budget.UpdatedAt = time.Now()
	return budget, nil
}

// Delete removes a budget scoped to its owner
func (m *MockBudgetRepository) Delete(userID int32, id int32) error {
	if _, err := m.GetByID(userID, id); err != nil {
		return err
	}
	delete(m.Budgets, id)
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.Budgets[budget.ID] = budget
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
}

// MockPublisher records published events (implements websocket.EventPublisher)
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	UserID int32
	Event  websocket.Event
}

// NewMockPublisher creates a new MockPublisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event
func (m *MockPublisher) Publish(userID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// EventTypes returns the recorded event type strings in order
func (m *MockPublisher) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}

// MockReceiptRepository is an in-memory implementation of storage.ReceiptRepository
type MockReceiptRepository struct {
	Objects map[string][]byte
}

// NewMockReceiptRepository creates a new MockReceiptRepository
func NewMockReceiptRepository() *MockReceiptRepository {
	return &MockReceiptRepository{Objects: make(map[string][]byte)}
}

// Upload stores the object in memory
func (m *MockReceiptRepository) Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(data); err != nil {
		return err
	}
	m.Objects[key] = buf.Bytes()
	return nil
}

// Delete removes the object
func (m *MockReceiptRepository) Delete(ctx context.Context, key string) error {
	if _, ok := m.Objects[key]; !ok {
		return fmt.Errorf("object not found: %s", key)
	}
	delete(m.Objects, key)
	return nil
}

// PresignedURL returns a deterministic fake URL
func (m *MockReceiptRepository) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if _, ok := m.Objects[key]; !ok {
		return "", fmt.Errorf("object not found: %s", key)
	}
	return "https://storage.example.test/" + key, nil
}
