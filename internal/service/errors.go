package service

import (
	"errors"
	"fmt"

	"github.com/and161185/boolog/internal/errs"
)

// gatewayErr wraps a repository failure for op. Known kinds pass through;
// anything else becomes errs.ErrFetch.
func gatewayErr(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound),
		errors.Is(err, errs.ErrDuplicateIdentity),
		errors.Is(err, errs.ErrValidation):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, errs.ErrFetch, err)
	}
}
