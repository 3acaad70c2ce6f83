package postgres

import (
	"context"

	"github.com/dompetku/dompetku-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, name, type, icon, color, created_at, updated_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, type, icon, color)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+categoryColumns,
		category.UserID, category.Name, string(category.Type), category.Icon, category.Color)
	return scanCategory(row)
}

// CreateBatch inserts multiple categories atomically (used for the default seed set)
func (r *CategoryRepository) CreateBatch(categories []*domain.Category) error {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, c := range categories {
		_, err := tx.Exec(ctx,
			`INSERT INTO categories (user_id, name, type, icon, color)
			 VALUES ($1, $2, $3, $4, $5)`,
			c.UserID, c.Name, string(c.Type), c.Icon, c.Color)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a category by ID scoped to its owner
func (r *CategoryRepository) GetByID(userID int32, id int32) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = $1 AND id = $2`,
		userID, id)
	return scanCategory(row)
}

// GetAllByUser retrieves all categories for a user, optionally filtered by type
func (r *CategoryRepository) GetAllByUser(userID int32, categoryType *domain.TransactionType) ([]*domain.Category, error) {
	ctx := context.Background()

	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id = $1`
	args := []interface{}{userID}
	if categoryType != nil {
		query += ` AND type = $2`
		args = append(args, string(*categoryType))
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Update applies a partial update; nil fields keep their prior values
func (r *CategoryRepository) Update(userID int32, id int32, data *domain.UpdateCategoryData) (*domain.Category, error) {
	ctx := context.Background()

	var categoryType *string
	if data.Type != nil {
		t := string(*data.Type)
		categoryType = &t
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE categories SET
			name = COALESCE($3, name),
			type = COALESCE($4, type),
			icon = COALESCE($5, icon),
			color = COALESCE($6, color),
			updated_at = now()
		 WHERE user_id = $1 AND id = $2
		 RETURNING `+categoryColumns,
		userID, id, data.Name, categoryType, data.Icon, data.Color)
	return scanCategory(row)
}

// Delete removes a category scoped to its owner
func (r *CategoryRepository) Delete(userID int32, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM categories WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
