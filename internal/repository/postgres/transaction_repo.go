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

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionSelect = `
	SELECT t.id, t.user_id, t.category_id, t.amount, t.type, t.description,
	       t.date, t.receipt_key, t.created_at, t.updated_at,
	       c.id, c.user_id, c.name, c.type, c.icon, c.color, c.created_at, c.updated_at
	FROM transactions t
	JOIN categories c ON c.id = t.category_id`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var c domain.Category
	var amount pgtype.Numeric
	var date pgtype.Date

	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &amount, &t.Type, &t.Description,
		&date, &t.ReceiptKey, &t.CreatedAt, &t.UpdatedAt,
		&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	t.Amount = pgNumericToDecimal(amount)
	t.Date = date.Time
	t.Category = &c
	return &t, nil
}

// Create inserts a new transaction. The joined category snapshot is attached
// by the caller, which has already resolved it for the ownership check.
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	date := pgtype.Date{Time: transaction.Date, Valid: true}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, category_id, amount, type, description, date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		transaction.UserID, transaction.CategoryID, amount, string(transaction.Type),
		transaction.Description, date)

	created := *transaction
	if err := row.Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetByID retrieves a transaction with its category snapshot, scoped to its owner
func (r *TransactionRepository) GetByID(userID int32, id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		transactionSelect+` WHERE t.user_id = $1 AND t.id = $2`, userID, id)
	return scanTransaction(row)
}

// GetByUser retrieves transactions for a user with optional conjunctive
// filters, ordered by date descending then creation time descending.
func (r *TransactionRepository) GetByUser(userID int32, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	ctx := context.Background()

	query := transactionSelect + ` WHERE t.user_id = $1`
	args := []interface{}{userID}

	if filters != nil {
		if filters.Type != nil {
			args = append(args, string(*filters.Type))
			query += fmt.Sprintf(" AND t.type = $%d", len(args))
		}
		if filters.CategoryID != nil {
			args = append(args, *filters.CategoryID)
			query += fmt.Sprintf(" AND t.category_id = $%d", len(args))
		}
		if filters.StartDate != nil {
			args = append(args, pgtype.Date{Time: *filters.StartDate, Valid: true})
			query += fmt.Sprintf(" AND t.date >= $%d", len(args))
		}
		if filters.EndDate != nil {
			args = append(args, pgtype.Date{Time: *filters.EndDate, Valid: true})
			query += fmt.Sprintf(" AND t.date <= $%d", len(args))
		}
		if filters.Month != nil && filters.Year != nil {
			args = append(args, *filters.Month)
			query += fmt.Sprintf(" AND EXTRACT(MONTH FROM t.date) = $%d", len(args))
			args = append(args, *filters.Year)
			query += fmt.Sprintf(" AND EXTRACT(YEAR FROM t.date) = $%d", len(args))
		}
	}

	query += ` ORDER BY t.date DESC, t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetRecent retrieves the most recently dated transactions for a user
func (r *TransactionRepository) GetRecent(userID int32, limit int) ([]*domain.Transaction, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		transactionSelect+`
		 WHERE t.user_id = $1
		 ORDER BY t.date DESC, t.created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Update applies a partial update; nil fields keep their prior values
func (r *TransactionRepository) Update(userID int32, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	ctx := context.Background()

	var amount *pgtype.Numeric
	if data.Amount != nil {
		num, err := decimalToPgNumeric(*data.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount: %w", err)
		}
		amount = &num
	}

	var transactionType *string
	if data.Type != nil {
		t := string(*data.Type)
		transactionType = &t
	}

	var date *pgtype.Date
	if data.Date != nil {
		d := pgtype.Date{Time: *data.Date, Valid: true}
		date = &d
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET
			category_id = COALESCE($3, category_id),
			amount = COALESCE($4, amount),
			type = COALESCE($5, type),
			description = COALESCE($6, description),
			date = COALESCE($7, date),
			updated_at = now()
		 WHERE user_id = $1 AND id = $2`,
		userID, id, data.CategoryID, amount, transactionType, data.Description, date)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrTransactionNotFound
	}

	return r.GetByID(userID, id)
}

// Delete removes a transaction scoped to its owner
func (r *TransactionRepository) Delete(userID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SetReceiptKey stores or clears the receipt object key for a transaction
func (r *TransactionRepository) SetReceiptKey(userID int32, id int32, key *string) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`UPDATE transactions SET receipt_key = $3, updated_at = now()
		 WHERE user_id = $1 AND id = $2`, userID, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SumByType sums transaction amounts by type, optionally scoped to a period
func (r *TransactionRepository) SumByType(userID int32, transactionType domain.TransactionType, period *domain.Period) (decimal.Decimal, error) {
	ctx := context.Background()

	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE user_id = $1 AND type = $2`
	args := []interface{}{userID, string(transactionType)}
	if period != nil {
		args = append(args, period.Month, period.Year)
		query += ` AND EXTRACT(MONTH FROM date) = $3 AND EXTRACT(YEAR FROM date) = $4`
	}

	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// GroupByCategory sums amounts per category for a period, joined with the
// category details, ordered by total descending
func (r *TransactionRepository) GroupByCategory(userID int32, transactionType domain.TransactionType, period domain.Period) ([]*domain.CategoryTotal, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT t.category_id, SUM(t.amount) AS total,
		        c.id, c.user_id, c.name, c.type, c.icon, c.color, c.created_at, c.updated_at
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = $1 AND t.type = $2
		   AND EXTRACT(MONTH FROM t.date) = $3 AND EXTRACT(YEAR FROM t.date) = $4
		 GROUP BY t.category_id, c.id
		 ORDER BY total DESC`,
		userID, string(transactionType), period.Month, period.Year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.CategoryTotal
	for rows.Next() {
		var row domain.CategoryTotal
		var c domain.Category
		var total pgtype.Numeric
		err := rows.Scan(
			&row.CategoryID, &total,
			&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		row.Total = pgNumericToDecimal(total)
		row.Category = &c
		result = append(result, &row)
	}
	return result, rows.Err()
}

// MonthlyTotals returns income/expense sums grouped by calendar month for a
// year. Months with no transactions are absent; callers zero-fill.
func (r *TransactionRepository) MonthlyTotals(userID int32, year int) ([]*domain.MonthlyTotal, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx,
		`SELECT EXTRACT(MONTH FROM date)::int AS month,
		        COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0) AS income,
		        COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0) AS expense
		 FROM transactions
		 WHERE user_id = $1 AND EXTRACT(YEAR FROM date) = $2
		 GROUP BY 1
		 ORDER BY 1`, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.MonthlyTotal
	for rows.Next() {
		var row domain.MonthlyTotal
		var income, expense pgtype.Numeric
		if err := rows.Scan(&row.Month, &income, &expense); err != nil {
			return nil, err
		}
		row.Income = pgNumericToDecimal(income)
		row.Expense = pgNumericToDecimal(expense)
		result = append(result, &row)
	}
	return result, rows.Err()
}
