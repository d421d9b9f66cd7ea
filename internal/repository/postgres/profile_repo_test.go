package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

var profileRowCols = []string{"id", "email", "username", "password", "avatar_url", "role", "created_at"}

func TestProfileRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()
	now := time.Now()

	p := &model.Profile{Email: "a@b.c", Username: "alice", PwdHash: "$2a$10$hash", Role: model.RoleUser}
	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs(pgxmock.AnyArg(), "a@b.c", "alice", pgxmock.AnyArg(), pgxmock.AnyArg(), "user").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	require.NoError(t, r.Create(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)
	require.Equal(t, now, p.CreatedAt)

	dup := &model.Profile{Email: "a@b.c", Username: "alice2", Role: model.RoleUser}
	mock.ExpectQuery(`INSERT INTO profiles`).
		WithArgs(pgxmock.AnyArg(), "a@b.c", "alice2", pgxmock.AnyArg(), pgxmock.AnyArg(), "user").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "profiles_email_key"})
	err := r.Create(ctx, dup)
	require.ErrorIs(t, err, errs.ErrDuplicateIdentity)
	require.Contains(t, err.Error(), "profiles_email_key")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Upsert(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`INSERT INTO profiles .* ON CONFLICT \(id\) DO UPDATE`).
		WithArgs(id, "admin@x.io", "Admin", pgxmock.AnyArg(), "admin").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Upsert(context.Background(), &model.Profile{
		ID: id, Email: "admin@x.io", Username: model.AdminUsername, Role: model.RoleAdmin,
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_GetByEmail(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	hash := "$2a$10$hash"

	mock.ExpectQuery(`SELECT id, email, username, password, avatar_url, role, created_at FROM profiles WHERE email=\$1`).
		WithArgs("u@x.io").
		WillReturnRows(pgxmock.NewRows(profileRowCols).
			AddRow(id, "u@x.io", "u", &hash, (*string)(nil), "user", time.Now()))
	p, err := r.GetByEmail(ctx, "u@x.io")
	require.NoError(t, err)
	require.Equal(t, id, p.ID)
	require.Equal(t, hash, p.PwdHash)
	require.Equal(t, model.RoleUser, p.Role)
	require.Nil(t, p.AvatarURL)

	mock.ExpectQuery(`FROM profiles WHERE email=\$1`).
		WithArgs("none@x.io").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByEmail(ctx, "none@x.io")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestProfileRepo_ListByIDs(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()

	got, err := r.ListByIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, got)

	a, b := uuid.Must(uuid.NewV4()), uuid.Must(uuid.NewV4())
	avatar := "https://img/a.png"
	mock.ExpectQuery(`FROM profiles WHERE id = ANY\(\$1::uuid\[\]\)`).
		WithArgs([]string{a.String(), b.String()}).
		WillReturnRows(pgxmock.NewRows(profileRowCols).
			AddRow(a, "a@x.io", "a", (*string)(nil), &avatar, "user", time.Now()))
	got, err = r.ListByIDs(ctx, []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, avatar, *got[0].AvatarURL)
}

func TestProfileRepo_Update(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())
	name := "renamed"

	mock.ExpectQuery(`UPDATE profiles`).
		WithArgs(id, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileRowCols).
			AddRow(id, "u@x.io", name, (*string)(nil), (*string)(nil), "user", time.Now()))
	p, err := r.Update(ctx, id, model.ProfileUpdate{Username: &name})
	require.NoError(t, err)
	require.Equal(t, name, p.Username)

	mock.ExpectQuery(`UPDATE profiles`).
		WithArgs(id, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Update(ctx, id, model.ProfileUpdate{Username: &name})
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(`UPDATE profiles`).
		WithArgs(id, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err = r.Update(ctx, id, model.ProfileUpdate{Username: &name})
	require.ErrorIs(t, err, errs.ErrDuplicateIdentity)
}

func TestProfileRepo_Update_ClearsAvatar(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	id := uuid.Must(uuid.NewV4())
	empty := ""

	mock.ExpectQuery(`avatar_url = CASE WHEN \$4::text IS NULL THEN avatar_url ELSE NULLIF\(\$4::text, ''\) END`).
		WithArgs(id, pgxmock.AnyArg(), pgxmock.AnyArg(), &empty, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(profileRowCols).
			AddRow(id, "u@x.io", "user1", (*string)(nil), (*string)(nil), "user", time.Now()))

	p, err := r.Update(context.Background(), id, model.ProfileUpdate{AvatarURL: &empty})
	require.NoError(t, err)
	require.Nil(t, p.AvatarURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Delete_And_Count(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewProfileRepo(db)
	ctx := context.Background()
	id := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`DELETE FROM profiles WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	require.NoError(t, r.Delete(ctx, id))

	mock.ExpectExec(`DELETE FROM profiles WHERE id=\$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	require.ErrorIs(t, r.Delete(ctx, id), errs.ErrNotFound)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM profiles`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	n, err := r.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
}
