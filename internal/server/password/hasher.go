// Package password provides one-way password hashing and verification over
// bcrypt. Plaintext passwords are never stored or logged.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Hasher hashes plaintext passwords and verifies candidates against stored
// digests.
type Hasher interface {
	// Hash produces a salted digest of the plaintext.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches the stored digest.
	Verify(plaintext, digest string) bool
}

// BcryptHasher implements Hasher with bcrypt at the given cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a BcryptHasher. Non-positive cost falls back to
// the bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
