package localstore

import (
	"fmt"

	"github.com/and161185/boolog/internal/errs"
)

// Theme is the persisted colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	DefaultTheme = ThemeDark
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeLight, ThemeDark:
		return t, nil
	}
	return "", fmt.Errorf("%w: theme must be light or dark", errs.ErrValidation)
}

// LoadTheme returns the stored theme, DefaultTheme when none or unreadable.
func LoadTheme(s Store) Theme {
	b, err := s.Get(KeyTheme)
	if err != nil {
		return DefaultTheme
	}
	t, err := ParseTheme(string(b))
	if err != nil {
		return DefaultTheme
	}
	return t
}

// SaveTheme persists t.
func SaveTheme(s Store, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return s.Put(KeyTheme, []byte(t))
}

// Toggle flips the stored theme and returns the new value.
func Toggle(s Store) (Theme, error) {
	next := ThemeDark
	if LoadTheme(s) == ThemeDark {
		next = ThemeLight
	}
	if err := SaveTheme(s, next); err != nil {
		return "", err
	}
	return next, nil
}
