package postgres

import (
	"context"
	"errors"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// AuthUserRepo implements AuthUserRepository using PostgreSQL.
type AuthUserRepo struct{ db *DB }

// NewAuthUserRepo constructs a managed-auth credential repository.
func NewAuthUserRepo(db *DB) *AuthUserRepo { return &AuthUserRepo{db: db} }

// Create inserts a new credential row.
func (r *AuthUserRepo) Create(ctx context.Context, u *model.AuthUser) error {
	const q = `
INSERT INTO auth_users (id, email, pwd_hash, salt)
VALUES ($1, $2, $3, $4)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Email, u.PwdHash, u.Salt)
	if isUniqueViolation(err) {
		return errs.ErrDuplicateIdentity
	}
	return err
}

// GetByEmail selects credentials by email.
func (r *AuthUserRepo) GetByEmail(ctx context.Context, email string) (*model.AuthUser, error) {
	const q = `
SELECT id, email, pwd_hash, salt, created_at
FROM auth_users WHERE email=$1`
	return r.getOne(ctx, q, email)
}

// GetByID selects credentials by ID.
func (r *AuthUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AuthUser, error) {
	const q = `
SELECT id, email, pwd_hash, salt, created_at
FROM auth_users WHERE id=$1`
	return r.getOne(ctx, q, id)
}

func (r *AuthUserRepo) getOne(ctx context.Context, q string, arg any) (*model.AuthUser, error) {
	var u model.AuthUser
	if err := r.db.Pool.QueryRow(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PwdHash, &u.Salt, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
