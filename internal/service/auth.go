// Package service holds the client core: sessions, content, the admin
// dashboard and the people directory.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/and161185/boolog/internal/crypto"
	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/limiter"
	"github.com/and161185/boolog/internal/localstore"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/repository"
	"github.com/and161185/boolog/internal/validate"
)

// ManagedAuth is the hosted identity API used for the admin account.
type ManagedAuth interface {
	SignInWithPassword(ctx context.Context, email, password string) (*model.AuthSession, error)
	// GetSession returns nil without error when no session is active.
	GetSession(ctx context.Context) (*model.AuthSession, error)
	SignOut(ctx context.Context) error
}

// AuthService resolves and changes the current actor across both identity sources.
type AuthService interface {
	// SignUp registers a regular user.
	SignUp(ctx context.Context, email, password, username string) (*model.Profile, error)
	// SignIn routes the admin email to managed auth and everyone else to the profile table.
	SignIn(ctx context.Context, email, password string) (Session, error)
	// SignOut ends both session forms. It never fails.
	SignOut(ctx context.Context)
	// CheckSession restores the current session, nil when there is none.
	CheckSession(ctx context.Context) (Session, error)
	// UpdateProfile applies a partial profile change.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error)
}

type AuthServiceImpl struct {
	profiles   repository.ProfileRepository
	managed    ManagedAuth
	store      localstore.Store
	lim        limiter.Limiter
	adminEmail string
	val        *validate.Validator
	log        *zap.Logger
}

// NewAuthService constructs AuthService. lim may be nil to disable lockout.
func NewAuthService(profiles repository.ProfileRepository, managed ManagedAuth, store localstore.Store,
	lim limiter.Limiter, adminEmail string, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{
		profiles:   profiles,
		managed:    managed,
		store:      store,
		lim:        lim,
		adminEmail: normEmail(adminEmail),
		val:        validate.New(),
		log:        log.Named("auth"),
	}
}

type signUpInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
	Username string `validate:"required,min=3,max=32"`
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *AuthServiceImpl) isAdminEmail(email string) bool {
	return s.adminEmail != "" && normEmail(email) == s.adminEmail
}

func isReservedUsername(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), model.AdminUsername)
}

// reservedIdentity rejects a normalised update that would take over the
// admin email or display name.
func reservedIdentity(adminEmail string, upd model.ProfileUpdate) error {
	if upd.Email != nil && adminEmail != "" && *upd.Email == adminEmail {
		return fmt.Errorf("%w: email", errs.ErrReservedIdentity)
	}
	if upd.Username != nil && isReservedUsername(*upd.Username) {
		return fmt.Errorf("%w: username", errs.ErrReservedIdentity)
	}
	return nil
}

// SignUp hashes the password with bcrypt and inserts a profile with role user.
// The admin email and the admin display name are reserved.
func (s *AuthServiceImpl) SignUp(ctx context.Context, email, password, username string) (*model.Profile, error) {
	if s.isAdminEmail(email) {
		return nil, errs.ErrReservedIdentity
	}
	if isReservedUsername(username) {
		return nil, fmt.Errorf("%w: username", errs.ErrReservedIdentity)
	}
	in := signUpInput{Email: normEmail(email), Password: password, Username: strings.TrimSpace(username)}
	if err := s.val.Struct(in); err != nil {
		return nil, err
	}
	hash, err := pkgcrypto.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	p := &model.Profile{Email: in.Email, Username: in.Username, PwdHash: hash, Role: model.RoleUser}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, gatewayErr("sign up", err)
	}
	s.log.Info("profile registered", zap.Stringer("id", p.ID))
	return p, nil
}

// SignIn authenticates email and password.
func (s *AuthServiceImpl) SignIn(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: empty email/password", errs.ErrValidation)
	}
	if s.isAdminEmail(email) {
		return s.signInAdmin(ctx, email, password)
	}
	return s.signInUser(ctx, normEmail(email), password)
}

func (s *AuthServiceImpl) signInAdmin(ctx context.Context, email, password string) (Session, error) {
	email = normEmail(email)
	if err := s.admit(ctx, email); err != nil {
		return nil, err
	}
	auth, err := s.managed.SignInWithPassword(ctx, email, password)
	if errors.Is(err, errs.ErrInvalidCredentials) {
		return nil, s.rejected(ctx, email)
	}
	if err != nil {
		return nil, gatewayErr("admin sign in", err)
	}
	s.accepted(ctx, email)
	sess := s.adminSession(ctx, auth)
	if err := s.store.Delete(localstore.KeyProfile); err != nil {
		s.log.Warn("drop stale profile snapshot", zap.Error(err))
	}
	s.log.Info("admin signed in", zap.Stringer("id", auth.UserID))
	return sess, nil
}

// adminSession makes sure the admin is present in the profile table so
// authorship joins resolve; a failed upsert is only logged.
func (s *AuthServiceImpl) adminSession(ctx context.Context, auth *model.AuthSession) *AdminSession {
	p := model.Profile{
		ID:       auth.UserID,
		Email:    auth.Email,
		Username: model.AdminUsername,
		Role:     model.RoleAdmin,
	}
	if err := s.profiles.Upsert(ctx, &p); err != nil {
		s.log.Warn("ensure admin profile", zap.Stringer("id", auth.UserID), zap.Error(err))
	}
	return &AdminSession{Auth: *auth, Account: p}
}

func (s *AuthServiceImpl) signInUser(ctx context.Context, email, password string) (Session, error) {
	if err := s.admit(ctx, email); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return nil, gatewayErr("sign in", err)
	}
	if err != nil || !pkgcrypto.ComparePassword(p.PwdHash, password) {
		return nil, s.rejected(ctx, email)
	}

	s.accepted(ctx, email)
	if err := s.managed.SignOut(ctx); err != nil {
		s.log.Warn("drop managed session", zap.Error(err))
	}
	if err := s.saveSnapshot(*p); err != nil {
		return nil, err
	}
	s.log.Info("user signed in", zap.Stringer("id", p.ID))
	return &UserSession{Account: *p}, nil
}

// admit consults the lockout before any credential check.
func (s *AuthServiceImpl) admit(ctx context.Context, email string) error {
	if s.lim == nil {
		return nil
	}
	ok, _, err := s.lim.Allow(ctx, email)
	if err != nil {
		return gatewayErr("sign in", err)
	}
	if !ok {
		return errs.ErrRateLimited
	}
	return nil
}

// rejected records a failed attempt and returns the error the caller sees.
func (s *AuthServiceImpl) rejected(ctx context.Context, email string) error {
	if s.lim != nil {
		blocked, _, err := s.lim.Failure(ctx, email)
		if err != nil {
			s.log.Warn("record failed sign in", zap.Error(err))
		} else if blocked {
			return errs.ErrRateLimited
		}
	}
	return errs.ErrInvalidCredentials
}

func (s *AuthServiceImpl) accepted(ctx context.Context, email string) {
	if s.lim == nil {
		return
	}
	if err := s.lim.Success(ctx, email); err != nil {
		s.log.Warn("reset sign in counters", zap.Error(err))
	}
}

// SignOut clears the managed session and the local snapshot; failures are logged.
func (s *AuthServiceImpl) SignOut(ctx context.Context) {
	if err := s.managed.SignOut(ctx); err != nil {
		s.log.Warn("managed sign out", zap.Error(err))
	}
	if err := s.store.Delete(localstore.KeyProfile); err != nil {
		s.log.Warn("clear profile snapshot", zap.Error(err))
	}
}

// CheckSession prefers an active managed session, then the local snapshot.
func (s *AuthServiceImpl) CheckSession(ctx context.Context) (Session, error) {
	auth, err := s.managed.GetSession(ctx)
	if err != nil {
		s.log.Warn("managed session lookup", zap.Error(err))
	}
	if auth != nil {
		return s.adminSession(ctx, auth), nil
	}

	snap, ok, err := s.loadSnapshot()
	if err != nil || !ok {
		return nil, err
	}
	latest, err := s.profiles.GetByID(ctx, snap.ID)
	if err != nil {
		s.log.Warn("refresh profile snapshot, using stale copy", zap.Stringer("id", snap.ID), zap.Error(err))
		return &UserSession{Account: snap}, nil
	}
	if err := s.saveSnapshot(*latest); err != nil {
		s.log.Warn("persist refreshed snapshot", zap.Error(err))
	}
	return &UserSession{Account: *latest}, nil
}

// UpdateProfile changes email, username or avatar of id. Role changes go
// through the admin dashboard instead, and the admin email and display
// name cannot be claimed.
func (s *AuthServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: empty id", errs.ErrValidation)
	}
	if upd.Role != nil {
		return nil, fmt.Errorf("%w: role cannot be changed here", errs.ErrValidation)
	}
	if err := validateProfileUpdate(s.val, &upd); err != nil {
		return nil, err
	}
	if err := reservedIdentity(s.adminEmail, upd); err != nil {
		return nil, err
	}
	p, err := s.profiles.Update(ctx, id, upd)
	if err != nil {
		return nil, gatewayErr("update profile", err)
	}
	if snap, ok, _ := s.loadSnapshot(); ok && snap.ID == id {
		if err := s.saveSnapshot(*p); err != nil {
			s.log.Warn("persist updated snapshot", zap.Error(err))
		}
	}
	return p, nil
}

func validateProfileUpdate(v *validate.Validator, upd *model.ProfileUpdate) error {
	if upd.Email != nil {
		e := normEmail(*upd.Email)
		upd.Email = &e
		if err := v.Var("email", e, "required,email"); err != nil {
			return err
		}
	}
	if upd.Username != nil {
		u := strings.TrimSpace(*upd.Username)
		upd.Username = &u
		if err := v.Var("username", u, "required,min=3,max=32"); err != nil {
			return err
		}
	}
	if upd.AvatarURL != nil && *upd.AvatarURL != "" {
		if err := v.Var("avatar_url", *upd.AvatarURL, "url"); err != nil {
			return err
		}
	}
	if upd.Role != nil && *upd.Role != model.RoleAdmin && *upd.Role != model.RoleUser {
		return fmt.Errorf("%w: role: oneof", errs.ErrValidation)
	}
	return nil
}

// saveSnapshot persists p; the password hash is never serialised.
func (s *AuthServiceImpl) saveSnapshot(p model.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.store.Put(localstore.KeyProfile, b)
}

// loadSnapshot reads the local profile. A corrupt snapshot is deleted and
// reported as absent.
func (s *AuthServiceImpl) loadSnapshot() (model.Profile, bool, error) {
	raw, err := s.store.Get(localstore.KeyProfile)
	if errors.Is(err, errs.ErrNotFound) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, err
	}
	var p model.Profile
	if err := json.Unmarshal(raw, &p); err != nil || p.ID == uuid.Nil {
		s.log.Warn("discard corrupt profile snapshot")
		if derr := s.store.Delete(localstore.KeyProfile); derr != nil {
			return model.Profile{}, false, derr
		}
		return model.Profile{}, false, nil
	}
	return p, true, nil
}
