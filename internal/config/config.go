// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/and161185/boolog/internal/validate"
)

// Config holds every setting of the client core.
type Config struct {
	AdminEmail    string        `validate:"required,email"`
	DSN           string        `validate:"required"`
	SigningKey    string        `validate:"required,min=16"`
	AuthTTL       time.Duration `validate:"gt=0"`
	StateDir      string        `validate:"required"`
	LogLevel      string        `validate:"oneof=debug info warn error"`
	LoginWindow   time.Duration `validate:"gt=0"`
	LoginMaxFails int           `validate:"gt=0"`
	LoginBlockFor time.Duration `validate:"gt=0"`
}

// Environment variable names.
const (
	EnvAdminEmail    = "BOOLOG_ADMIN_EMAIL"
	EnvDSN           = "BOOLOG_DSN"
	EnvSigningKey    = "BOOLOG_AUTH_SIGNING_KEY"
	EnvAuthTTL       = "BOOLOG_AUTH_TTL"
	EnvStateDir      = "BOOLOG_STATE_DIR"
	EnvLogLevel      = "BOOLOG_LOG_LEVEL"
	EnvLoginWindow   = "BOOLOG_LOGIN_WINDOW"
	EnvLoginMaxFails = "BOOLOG_LOGIN_MAX_FAILS"
	EnvLoginBlock    = "BOOLOG_LOGIN_BLOCK"
)

// Load reads envFile (if it exists) into the process environment without
// overriding variables already set, then builds and validates a Config.
// An empty envFile skips the file step.
func Load(envFile string, v *validate.Validator) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load environment from %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv, v)
}

// FromEnv builds a Config from lookup.
func FromEnv(lookup func(string) (string, bool), v *validate.Validator) (*Config, error) {
	get := func(k string) string {
		s, _ := lookup(k)
		return strings.TrimSpace(s)
	}

	cfg := &Config{
		AdminEmail: strings.ToLower(get(EnvAdminEmail)),
		DSN:        get(EnvDSN),
		SigningKey: get(EnvSigningKey),
		StateDir:   get(EnvStateDir),
		LogLevel:   strings.ToLower(get(EnvLogLevel)),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.StateDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}
		cfg.StateDir = filepath.Join(dir, "boolog")
	}

	var err error
	if cfg.AuthTTL, err = duration(get(EnvAuthTTL), time.Hour); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvAuthTTL, err)
	}
	if cfg.LoginWindow, err = duration(get(EnvLoginWindow), 15*time.Minute); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLoginWindow, err)
	}
	if cfg.LoginBlockFor, err = duration(get(EnvLoginBlock), 15*time.Minute); err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLoginBlock, err)
	}
	cfg.LoginMaxFails = 5
	if s := get(EnvLoginMaxFails); s != "" {
		if cfg.LoginMaxFails, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLoginMaxFails, err)
		}
	}

	if err := v.Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func duration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}
