// Package password implements the account password policy, one-way hashing
// and reset-token generation. Plaintext passwords never leave this package.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength and MaxLength bound accepted password lengths.
	MinLength = 12
	MaxLength = 20

	hashCost = 12

	resetTokenBytes = 32
	resetTokenTTL   = 10 * time.Minute
)

// ErrPolicy is returned when a password violates the account policy.
var ErrPolicy = errors.New("password must be 12-20 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character")

// Validate checks a plaintext password against the account policy:
// 12-20 characters with at least one upper, one lower, one digit and one
// symbol.
func Validate(password string) error {
	if len(password) < MinLength || len(password) > MaxLength {
		return ErrPolicy
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune("@$!%*?&#^()-_=+[]{};:,.<>/", r):
			symbol = true
		}
	}

	if !upper || !lower || !digit || !symbol {
		return ErrPolicy
	}
	return nil
}

// Hash derives a one-way bcrypt hash from a plaintext password.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash. bcrypt's
// comparison is constant-time over the derived key.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewResetToken generates a password-reset token. The plain token is
// returned for delivery; only its SHA-256 hex digest is stored, together
// with a 10 minute expiry.
func NewResetToken() (plain string, digest string, expiresAt time.Time, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate reset token: %w", err)
	}

	plain = hex.EncodeToString(buf)
	sum := sha256.Sum256([]byte(plain))
	return plain, hex.EncodeToString(sum[:]), time.Now().Add(resetTokenTTL), nil
}

// HashResetToken returns the stored digest form of a presented reset token.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
