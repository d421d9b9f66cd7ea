// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/boolog/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepository provides CRUD access to the profiles table.
type ProfileRepository interface {
	// Create inserts a new profile and fills ID and CreatedAt.
	Create(ctx context.Context, p *model.Profile) error
	// Upsert inserts or overwrites the profile keyed by ID.
	Upsert(ctx context.Context, p *model.Profile) error
	// GetByID loads a profile by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// GetByEmail loads a profile by email.
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	// GetByUsername loads a profile by its public username.
	GetByUsername(ctx context.Context, username string) (*model.Profile, error)
	// ListByIDs returns the profiles among ids that exist, in no particular order.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error)
	// List returns every profile.
	List(ctx context.Context) ([]model.Profile, error)
	// Update applies a partial change and returns the updated row.
	Update(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (*model.Profile, error)
	// Delete removes a profile.
	Delete(ctx context.Context, id uuid.UUID) error
	// Count returns the exact number of profiles.
	Count(ctx context.Context) (int64, error)
}

// AuthUserRepository stores managed-auth credentials.
type AuthUserRepository interface {
	// Create inserts a new credential row.
	Create(ctx context.Context, u *model.AuthUser) error
	// GetByEmail loads credentials by email.
	GetByEmail(ctx context.Context, email string) (*model.AuthUser, error)
	// GetByID loads credentials by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.AuthUser, error)
}
