// Package limiter throttles repeated failed sign-ins per account.
package limiter

import (
	"context"
	"time"
)

// Limiter controls login attempts and temporary lockouts for one email.
type Limiter interface {
	// Allow reports whether a login is currently allowed and the remaining lock time.
	Allow(ctx context.Context, email string) (bool, time.Duration, error)
	// Success resets counters after a successful login.
	Success(ctx context.Context, email string) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, email string) (bool, time.Duration, error)
}
