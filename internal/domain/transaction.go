package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ValidTransactionType reports whether t is one of the known types.
func ValidTransactionType(t TransactionType) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type Transaction struct {
	ID          int32           `json:"id"`
	UserID      int32           `json:"user_id"`
	CategoryID  int32           `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Description *string         `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	ReceiptKey  *string         `json:"receipt_key,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Category is the joined snapshot of the owning category. Populated on
	// reads; ignored on writes.
	Category *Category `json:"category,omitempty"`
}

// TransactionFilters are conjunctive and independently optional.
type TransactionFilters struct {
	Type       *TransactionType
	CategoryID *int32
	StartDate  *time.Time
	EndDate    *time.Time
	Month      *int
	Year       *int
}

// UpdateTransactionData carries a partial transaction update. Nil fields keep
// their prior values.
type UpdateTransactionData struct {
	CategoryID  *int32
	Amount      *decimal.Decimal
	Type        *TransactionType
	Description *string
	Date        *time.Time
}

// CategoryTotal is one row of a per-category aggregation.
type CategoryTotal struct {
	CategoryID int32           `json:"category_id"`
	Total      decimal.Decimal `json:"total"`
	Category   *Category       `json:"category,omitempty"`
}

// MonthlyTotal holds income/expense sums for one calendar month of a year.
type MonthlyTotal struct {
	Month   int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(userID int32, id int32) (*Transaction, error)
	GetByUser(userID int32, filters *TransactionFilters) ([]*Transaction, error)
	GetRecent(userID int32, limit int) ([]*Transaction, error)
	Update(userID int32, id int32, data *UpdateTransactionData) (*Transaction, error)
	Delete(userID int32, id int32) error
	SetReceiptKey(userID int32, id int32, key *string) error

	// Aggregations. A nil period means all time.
	SumByType(userID int32, transactionType TransactionType, period *Period) (decimal.Decimal, error)
	GroupByCategory(userID int32, transactionType TransactionType, period Period) ([]*CategoryTotal, error)
	MonthlyTotals(userID int32, year int) ([]*MonthlyTotal, error)
}
