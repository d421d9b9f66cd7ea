// Package crypto holds the two password schemes in use: Argon2id for
// managed-auth credentials and bcrypt for profile passwords.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for managed-auth credentials.
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024 // KiB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32

	// SaltLen is the salt size generated by NewSalt.
	SaltLen = 16
)

// NewSalt returns SaltLen cryptographically secure random bytes.
func NewSalt() ([]byte, error) {
	b := make([]byte, SaltLen)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeriveKey returns the Argon2id key of password under salt.
func DeriveKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyKey reports whether password derives to expected under salt.
func VerifyKey(password string, salt, expected []byte) bool {
	return subtle.ConstantTimeCompare(DeriveKey(password, salt), expected) == 1
}
