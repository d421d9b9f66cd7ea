// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates empty or malformed input rejected before any gateway call.
	ErrValidation = errors.New("validation")

	// ErrInvalidCredentials indicates failed sign-in on either identity path.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrDuplicateIdentity indicates a unique constraint violation on email or username.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrReservedIdentity indicates an attempt to claim the admin email or display name.
	ErrReservedIdentity = fmt.Errorf("%w: reserved for admin", ErrDuplicateIdentity)

	// ErrFetch indicates any other gateway rejection.
	ErrFetch = errors.New("gateway request failed")

	// ErrUnauthorized indicates that the operation needs an active session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates that the active session is not the admin.
	ErrForbidden = errors.New("access denied")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
