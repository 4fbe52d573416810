// Package auth — password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is deliberately slow, which makes brute-forcing stolen hashes
// expensive. It also generates and embeds a random salt per hash, so no
// separate salt column is needed, and the work factor ("cost") is tunable.
//
// NEVER store secrets in plain text or with fast hashes (MD5, SHA-256).
// bcrypt at cost 12 takes ~250ms — negligible for login, brutal for attackers.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
// Rule of thumb: pick the cost so hashing takes ~200-300ms on production
// hardware.
const DefaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// The cost is injected rather than hard-coded so the original board's
// BCRYPT_COST environment override keeps working, and so tests can use
// bcrypt.MinCost without paying ~250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the given cost.
// Costs outside bcrypt's valid range fall back to DefaultCost.
func NewPasswordService(cost int) *PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext secret with bcrypt.
//
// The output is a self-contained string (version, cost, salt, digest) that
// is stored directly in the users table. Hashing happens here, as an
// explicit step of Register/secret change — not as a hidden persistence
// hook.
//
// Returns an error if the plaintext is longer than 72 bytes (a bcrypt
// limit; it would otherwise truncate silently).
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext secret matches a stored bcrypt hash.
// Returns nil on match. bcrypt compares in constant time, so this is safe
// against timing attacks.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
