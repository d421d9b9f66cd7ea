package postgres

import (
	"context"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CommentRepo implements CommentRepository using PostgreSQL.
type CommentRepo struct{ db *DB }

// NewCommentRepo constructs a comment repository.
func NewCommentRepo(db *DB) *CommentRepo { return &CommentRepo{db: db} }

// Create inserts a comment row.
func (r *CommentRepo) Create(ctx context.Context, blogID int64, userID uuid.UUID, content string) (*model.Comment, error) {
	const q = `
INSERT INTO comments (blog_id, user_id, content)
VALUES ($1, $2, $3)
RETURNING id, blog_id, user_id, content, created_at`
	var c model.Comment
	if err := r.db.Pool.QueryRow(ctx, q, blogID, userID, content).Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByBlog returns the comments of a blog ordered by creation time ascending.
func (r *CommentRepo) ListByBlog(ctx context.Context, blogID int64) ([]model.Comment, error) {
	const q = `
SELECT id, blog_id, user_id, content, created_at
FROM comments
WHERE blog_id=$1
ORDER BY created_at ASC`
	rows, err := r.db.Pool.Query(ctx, q, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err = rows.Scan(&c.ID, &c.BlogID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a comment by ID.
func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Count returns the exact number of comments.
func (r *CommentRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db.Pool, `SELECT COUNT(*) FROM comments`)
}

// CountByUser groups comments by author.
func (r *CommentRepo) CountByUser(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT user_id, COUNT(*) FROM comments GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[uuid.UUID]int{}
	for rows.Next() {
		var (
			id uuid.UUID
			n  int64
		)
		if err = rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = int(n)
	}
	return out, rows.Err()
}
