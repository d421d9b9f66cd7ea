package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/model"
)

// Identity is the {id, email} pair of the signed-in actor.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is the resolved current actor: an *AdminSession backed by the
// managed-auth service, or a *UserSession backed by the local profile snapshot.
type Session interface {
	User() Identity
	Profile() model.Profile
	IsAdmin() bool
	session()
}

// AdminSession is a managed-auth session of the admin account.
type AdminSession struct {
	Auth    model.AuthSession
	Account model.Profile
}

func (s *AdminSession) User() Identity         { return Identity{ID: s.Auth.UserID, Email: s.Auth.Email} }
func (s *AdminSession) Profile() model.Profile { return s.Account }
func (s *AdminSession) IsAdmin() bool          { return true }
func (s *AdminSession) session()               {}

// UserSession is a custom-auth session restored from the profile snapshot.
type UserSession struct {
	Account model.Profile
}

func (s *UserSession) User() Identity         { return Identity{ID: s.Account.ID, Email: s.Account.Email} }
func (s *UserSession) Profile() model.Profile { return s.Account }
func (s *UserSession) IsAdmin() bool          { return false }
func (s *UserSession) session()               {}

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromCtx extracts the session stored by WithSession.
func SessionFromCtx(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s != nil
}

// RequireSession fails with errs.ErrUnauthorized when s is nil.
func RequireSession(s Session) error {
	if s == nil {
		return errs.ErrUnauthorized
	}
	return nil
}

// RequireAdmin additionally requires a managed admin session whose email
// is adminEmail.
func RequireAdmin(s Session, adminEmail string) error {
	if err := RequireSession(s); err != nil {
		return err
	}
	if !s.IsAdmin() || adminEmail == "" || !strings.EqualFold(s.User().Email, adminEmail) {
		return errs.ErrForbidden
	}
	return nil
}
