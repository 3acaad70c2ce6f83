package postgres

import (
	"context"
	"fmt"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetSelect = `
	SELECT b.id, b.user_id, b.category_id, b.amount, b.used, b.month, b.year,
	       b.created_at, b.updated_at,
	       c.id, c.user_id, c.name, c.type, c.icon, c.color, c.created_at, c.updated_at
	FROM budgets b
	JOIN categories c ON c.id = b.category_id`

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var c domain.Category
	var amount, used pgtype.Numeric

	err := row.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &amount, &used, &b.Month, &b.Year,
		&b.CreatedAt, &b.UpdatedAt,
		&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}

	b.Amount = pgNumericToDecimal(amount)
	b.Used = pgNumericToDecimal(used)
	b.Category = &c
	return &b, nil
}

// Create inserts a new budget with used = 0
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(budget.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var id int32
	err = r.pool.QueryRow(ctx,
		`INSERT INTO budgets (user_id, category_id, amount, month, year)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		budget.UserID, budget.CategoryID, amount, budget.Month, budget.Year).Scan(&id)
	if err != nil {
		return nil, err
	}

	return r.GetByID(budget.UserID, id)
}

// GetByID retrieves a budget with its category, scoped to its owner
func (r *BudgetRepository) GetByID(userID int32, id int32) (*domain.Budget, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		budgetSelect+` WHERE b.user_id = $1 AND b.id = $2`, userID, id)
	return scanBudget(row)
}

// GetByUser retrieves budgets for a user, optionally scoped to one period
func (r *BudgetRepository) GetByUser(userID int32, period *domain.Period) ([]*domain.Budget, error) {
	ctx := context.Background()

	query := budgetSelect + ` WHERE b.user_id = $1`
	args := []interface{}{userID}
	if period != nil {
		args = append(args, period.Month, period.Year)
		query += ` AND b.month = $2 AND b.year = $3`
	}
	query += ` ORDER BY b.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// GetFirstByCategory returns the first budget row for a category regardless
// of month and year. The expense side effect depends on this exact behavior.
func (r *BudgetRepository) GetFirstByCategory(userID int32, categoryID int32) (*domain.Budget, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		budgetSelect+` WHERE b.user_id = $1 AND b.category_id = $2 ORDER BY b.id LIMIT 1`,
		userID, categoryID)
	return scanBudget(row)
}

// ExistsForPeriod reports whether a budget already exists for the
// (user, category, month, year) tuple
func (r *BudgetRepository) ExistsForPeriod(userID int32, categoryID int32, period domain.Period) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM budgets
			WHERE user_id = $1 AND category_id = $2 AND month = $3 AND year = $4
		 )`, userID, categoryID, period.Month, period.Year).Scan(&exists)
	return exists, err
}

// AddUsed increments a budget's used amount in a single atomic statement so
// concurrent expense creations cannot lose updates
func (r *BudgetRepository) AddUsed(id int32, amount decimal.Decimal) error {
	ctx := context.Background()

	num, err := decimalToPgNumeric(amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET used = used + $2, updated_at = now() WHERE id = $1`,
		id, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

// Update applies a partial update; nil fields keep their prior values.
// The used counter is never touched here.
func (r *BudgetRepository) Update(userID int32, id int32, data *domain.UpdateBudgetData) (*domain.Budget, error) {
	ctx := context.Background()

	var amount *pgtype.Numeric
	if data.Amount != nil {
		num, err := decimalToPgNumeric(*data.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
		amount = &num
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE budgets SET
			category_id = COALESCE($3, category_id),
			amount = COALESCE($4, amount),
			month = COALESCE($5, month),
			year = COALESCE($6, year),
			updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, id, data.CategoryID, amount, data.Month, data.Year)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBudgetNotFound
	}

	return r.GetByID(userID, id)
}

// Delete removes a budget scoped to its owner
func (r *BudgetRepository) Delete(userID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM budgets WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}
