// Package crypto provides credential hashing for user passwords.
package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when an empty password is submitted for hashing.
var ErrEmptyPassword = errors.New("password must not be empty")

// PasswordHasher hashes and verifies user credentials. The stored value is
// opaque to callers; only Verify can interpret it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hashed, plaintext string) bool
}

// bcryptHasher implements PasswordHasher using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewPasswordHasher creates a bcrypt-backed PasswordHasher with the default cost.
func NewPasswordHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash hashes a plaintext password.
func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash.
func (h *bcryptHasher) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

// Ensure bcryptHasher implements PasswordHasher at compile time.
var _ PasswordHasher = (*bcryptHasher)(nil)
