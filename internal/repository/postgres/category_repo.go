package postgres

import (
	"context"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
)

// CategoryRepo implements CategoryRepository using PostgreSQL.
type CategoryRepo struct{ db *DB }

// NewCategoryRepo constructs a category repository.
func NewCategoryRepo(db *DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List returns categories in creation order.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, created_at FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create inserts a category; names are unique.
func (r *CategoryRepo) Create(ctx context.Context, name string) (*model.Category, error) {
	const q = `INSERT INTO categories (name) VALUES ($1) RETURNING id, name, created_at`
	var c model.Category
	err := r.db.Pool.QueryRow(ctx, q, name).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if isUniqueViolation(err) {
		return nil, errs.ErrDuplicateIdentity
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
