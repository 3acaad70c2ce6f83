package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Budget struct {
	ID         int32           `json:"id"`
	UserID     int32           `json:"user_id"`
	CategoryID int32           `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
	Used       decimal.Decimal `json:"used"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Category *Category `json:"category,omitempty"`
}

// Remaining is amount minus used. It may be negative: over-budget is
// representable, not an error.
func (b *Budget) Remaining() decimal.Decimal {
	return b.Amount.Sub(b.Used)
}

// Percentage is used/amount*100, or zero when the cap is zero.
func (b *Budget) Percentage() decimal.Decimal {
	if !b.Amount.IsPositive() {
		return decimal.Zero
	}
	return b.Used.Div(b.Amount).Mul(decimal.NewFromInt(100))
}

// UpdateBudgetData carries a partial budget update. Nil fields keep their
// prior values. Used is never updatable directly.
type UpdateBudgetData struct {
	CategoryID *int32
	Amount     *decimal.Decimal
	Month      *int
	Year       *int
}

type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(userID int32, id int32) (*Budget, error)
	GetByUser(userID int32, period *Period) ([]*Budget, error)

	// GetFirstByCategory returns the first budget row for the category,
	// irrespective of month and year. Used by the expense side effect, which
	// deliberately ignores the transaction's own period.
	GetFirstByCategory(userID int32, categoryID int32) (*Budget, error)

	ExistsForPeriod(userID int32, categoryID int32, period Period) (bool, error)

	// AddUsed increments used by amount in a single atomic statement.
	AddUsed(id int32, amount decimal.Decimal) error

	Update(userID int32, id int32, data *UpdateBudgetData) (*Budget, error)
	Delete(userID int32, id int32) error
}
