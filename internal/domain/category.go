package domain

import "time"

type Category struct {
	ID        int32           `json:"id"`
	UserID    int32           `json:"user_id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Icon      string          `json:"icon"`
	Color     string          `json:"color"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UpdateCategoryData carries a partial category update. Nil fields keep their
// prior values.
type UpdateCategoryData struct {
	Name  *string
	Type  *TransactionType
	Icon  *string
	Color *string
}

type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	CreateBatch(categories []*Category) error
	GetByID(userID int32, id int32) (*Category, error)
	GetAllByUser(userID int32, categoryType *TransactionType) ([]*Category, error)
	Update(userID int32, id int32, data *UpdateCategoryData) (*Category, error)
	Delete(userID int32, id int32) error
}
