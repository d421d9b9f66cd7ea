// Package managedauth is the hosted identity service used for the admin
// account. Credentials live in auth_users (Argon2id with a per-user salt),
// sessions are HS256 JWTs persisted in the local store.
package managedauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/and161185/boolog/internal/crypto"
	"github.com/and161185/boolog/internal/errs"
	"github.com/and161185/boolog/internal/localstore"
	"github.com/and161185/boolog/internal/model"
	"github.com/and161185/boolog/internal/repository"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Client signs managed accounts in and out.
type Client struct {
	users   repository.AuthUserRepository
	store   localstore.Store
	signKey []byte
	ttl     time.Duration
	now     func() time.Time
}

// New constructs a Client. ttl is the session lifetime.
func New(users repository.AuthUserRepository, store localstore.Store, signKey []byte, ttl time.Duration) *Client {
	return &Client{users: users, store: store, signKey: signKey, ttl: ttl, now: time.Now}
}

// Provision creates a managed account with a fresh salt.
func (c *Client) Provision(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return uuid.Nil, fmt.Errorf("%w: empty email/password", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return uuid.Nil, err
	}
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		return uuid.Nil, err
	}
	u := &model.AuthUser{
		ID:      id,
		Email:   email,
		PwdHash: pkgcrypto.DeriveKey(password, salt),
		Salt:    salt,
	}
	if err := c.users.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// SignInWithPassword verifies credentials, issues a session and persists its token.
// Unknown email and wrong password both yield errs.ErrInvalidCredentials.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*model.AuthSession, error) {
	u, err := c.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !pkgcrypto.VerifyKey(password, u.Salt, u.PwdHash) {
		return nil, errs.ErrInvalidCredentials
	}

	sess, err := c.issue(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	if err := c.store.Put(localstore.KeyAuthToken, []byte(sess.Token)); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return sess, nil
}

// GetSession returns the current session, or nil when there is none.
// An expired or tampered token is discarded.
func (c *Client) GetSession(_ context.Context) (*model.AuthSession, error) {
	raw, err := c.store.Get(localstore.KeyAuthToken)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess, err := c.parse(string(raw))
	if err != nil {
		if derr := c.store.Delete(localstore.KeyAuthToken); derr != nil {
			return nil, derr
		}
		return nil, nil
	}
	return sess, nil
}

// SignOut drops the persisted session.
func (c *Client) SignOut(_ context.Context) error {
	return c.store.Delete(localstore.KeyAuthToken)
}

func (c *Client) issue(userID uuid.UUID, email string) (*model.AuthSession, error) {
	now := c.now()
	exp := now.Add(c.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(c.signKey)
	if err != nil {
		return nil, err
	}
	return &model.AuthSession{UserID: userID, Email: email, Token: signed, ExpiresAt: exp}, nil
}

func (c *Client) parse(token string) (*model.AuthSession, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(token, &cl, func(*jwt.Token) (any, error) { return c.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, err
	}
	id, err := uuid.FromString(cl.Subject)
	if err != nil {
		return nil, err
	}
	return &model.AuthSession{UserID: id, Email: cl.Email, Token: token, ExpiresAt: cl.ExpiresAt.Time}, nil
}
