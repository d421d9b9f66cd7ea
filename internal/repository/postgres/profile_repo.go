package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

const profileCols = `id, email, username, password, avatar_url, role, created_at`

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// Create inserts a new profile row; ID is generated when empty.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	if p.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		p.ID = id
	}
	const q = `
INSERT INTO profiles (id, email, username, password, avatar_url, role)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`
	var created time.Time
	err := r.db.Pool.QueryRow(ctx, q, p.ID, p.Email, p.Username, nullable(p.PwdHash), p.AvatarURL, string(p.Role)).Scan(&created)
	if isUniqueViolation(err) {
		return duplicateIdentity(err)
	}
	if err != nil {
		return err
	}
	p.CreatedAt = created
	return nil
}

// Upsert inserts the profile or overwrites email, username, avatar and role of an existing row.
func (r *ProfileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	const q = `
INSERT INTO profiles (id, email, username, avatar_url, role)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
SET email = EXCLUDED.email, username = EXCLUDED.username, avatar_url = EXCLUDED.avatar_url, role = EXCLUDED.role`
	_, err := r.db.Pool.Exec(ctx, q, p.ID, p.Email, p.Username, p.AvatarURL, string(p.Role))
	if isUniqueViolation(err) {
		return duplicateIdentity(err)
	}
	return err
}

// GetByID selects a profile by ID.
func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileCols+` FROM profiles WHERE id=$1`, id)
}

// GetByEmail selects a profile by email.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileCols+` FROM profiles WHERE email=$1`, email)
}

// GetByUsername selects a profile by username.
func (r *ProfileRepo) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileCols+` FROM profiles WHERE username=$1`, username)
}

// ListByIDs selects the profiles whose id is in ids.
func (r *ProfileRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return r.list(ctx, `SELECT `+profileCols+` FROM profiles WHERE id = ANY($1::uuid[])`, strs)
}

// List selects every profile.
func (r *ProfileRepo) List(ctx context.Context) ([]model.Profile, error) {
	return r.list(ctx, `SELECT `+profileCols+` FROM profiles ORDER BY created_at DESC`)
}

// Update changes the non-nil fields of upd and returns the updated row.
// An empty AvatarURL clears the avatar.
func (r *ProfileRepo) Update(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	var role *string
	if upd.Role != nil {
		s := string(*upd.Role)
		role = &s
	}
	const q = `
UPDATE profiles
SET email = COALESCE($2, email),
    username = COALESCE($3, username),
    avatar_url = CASE WHEN $4::text IS NULL THEN avatar_url ELSE NULLIF($4::text, '') END,
    role = COALESCE($5, role)
WHERE id = $1
RETURNING ` + profileCols
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, q, id, upd.Email, upd.Username, upd.AvatarURL, role))
	if isUniqueViolation(err) {
		return nil, duplicateIdentity(err)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a profile by ID.
func (r *ProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM profiles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Count returns the exact number of profiles.
func (r *ProfileRepo) Count(ctx context.Context) (int64, error) {
	return count(ctx, r.db.Pool, `SELECT COUNT(*) FROM profiles`)
}

func (r *ProfileRepo) getOne(ctx context.Context, q string, arg any) (*model.Profile, error) {
	p, err := scanProfile(r.db.Pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepo) list(ctx context.Context, q string, args ...any) ([]model.Profile, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var (
		p    model.Profile
		pwd  *string
		role string
	)
	if err := row.Scan(&p.ID, &p.Email, &p.Username, &pwd, &p.AvatarURL, &role, &p.CreatedAt); err != nil {
		return nil, err
	}
	if pwd != nil {
		p.PwdHash = *pwd
	}
	p.Role = model.Role(role)
	return &p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
