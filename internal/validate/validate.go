// Package validate wraps go-playground/validator and maps failures to errs.ErrValidation.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/boolog/internal/errs"
)

// Validator checks struct tags and single values.
type Validator struct{ v *validator.Validate }

// New returns a Validator with required-struct checks enabled.
func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Struct validates s and returns an error wrapping errs.ErrValidation that names the failing fields.
func (v *Validator) Struct(s any) error {
	return wrap(v.v.Struct(s))
}

// Var validates a single value against tag, using name in the error.
func (v *Validator) Var(name string, value any, tag string) error {
	if err := v.v.Var(value, tag); err != nil {
		return fmt.Errorf("%w: %s: %s", errs.ErrValidation, name, firstTag(err))
	}
	return nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %w", errs.ErrValidation, err)
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", errs.ErrValidation, strings.Join(fields, ", "))
}

func firstTag(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].Tag()
	}
	return err.Error()
}
