package auth

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 12

// symbols is the punctuation set that satisfies the special-character rule.
const symbols = `!@#$%^&*(),.?":{}|<>`

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, falling back to
// DefaultBcryptCost when cost is outside bcrypt's accepted range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("password is empty")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare reports whether plaintext matches hash. A malformed hash is a mismatch.
func (h *PasswordHasher) Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// StrengthResult lists every rule a password failed.
type StrengthResult struct {
	IsValid bool
	Errors  []string
}

// ValidateStrength checks length, character classes and symbols.
func ValidateStrength(plaintext string) StrengthResult {
	var (
		hasUpper, hasLower, hasDigit, hasSymbol bool
		errs                                    []string
	)
	for _, r := range plaintext {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(symbols, r):
			hasSymbol = true
		}
	}
	if utf8.RuneCountInString(plaintext) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain at least one number")
	}
	if !hasSymbol {
		errs = append(errs, "Password must contain at least one special character")
	}
	return StrengthResult{IsValid: len(errs) == 0, Errors: errs}
}
