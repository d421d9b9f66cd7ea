package postgres

import (
	"context"
	"errors"

	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// LikeRepo implements LikeRepository using PostgreSQL.
type LikeRepo struct{ db *DB }

// NewLikeRepo constructs a like repository.
func NewLikeRepo(db *DB) *LikeRepo { return &LikeRepo{db: db} }

// Toggle deletes the (blog, user) pair if it exists, otherwise inserts it.
// Both branches run in one transaction and the insert relies on the unique
// (blog_id, user_id) constraint, so concurrent toggles never create a duplicate.
func (r *LikeRepo) Toggle(ctx context.Context, blogID int64, userID uuid.UUID) (action model.LikeAction, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const del = `DELETE FROM likes WHERE blog_id=$1 AND user_id=$2 RETURNING id`
	const ins = `INSERT INTO likes (blog_id, user_id) VALUES ($1,$2) ON CONFLICT (blog_id, user_id) DO NOTHING`

	var likeID int64
	scanErr := tx.QueryRow(ctx, del, blogID, userID).Scan(&likeID)
	switch {
	case scanErr == nil:
		return model.Unliked, nil
	case errors.Is(scanErr, pgx.ErrNoRows):
		if _, err = tx.Exec(ctx, ins, blogID, userID); err != nil {
			return "", err
		}
		return model.Liked, nil
	default:
		return "", scanErr
	}
}
