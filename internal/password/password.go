package password

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used in production.
const defaultCost = 12

// maxLength is bcrypt's input limit; longer passwords are silently
// truncated by the library, so reject them up front.
const maxLength = 72

// minLength is the signup policy minimum.
const minLength = 9

// symbols is the set accepted as the policy's required special character.
const symbols = "!@#$%^&*()-_=+[]{}|;:'\",.<>/?`~\\"

// ErrHashFailed is returned for any hashing failure. It carries no detail
// on purpose; plaintext material must never leak into errors or logs.
var ErrHashFailed = errors.New("failed to hash password")

// Service hashes and verifies user credentials with bcrypt.
type Service struct {
	cost int
}

// NewService creates a Service with the default work factor.
func NewService() *Service {
	return &Service{cost: defaultCost}
}

// NewServiceWithCost creates a Service with a custom work factor. Tests use
// the bcrypt minimum to avoid the production hashing latency.
func NewServiceWithCost(cost int) *Service {
	return &Service{cost: cost}
}

// Hash returns the bcrypt hash of plaintext. The output embeds salt and
// cost, so it can be stored as-is.
func (s *Service) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxLength {
		return "", ErrHashFailed
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), s.cost)
	if err != nil {
		return "", ErrHashFailed
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches the stored hash. Any internal
// error, including a malformed hash, fails closed.
func (s *Service) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// IsSecure reports whether plaintext satisfies the signup policy: at least
// nine characters with one lowercase letter, one uppercase letter, one
// digit and one symbol. Pure check, no side effects.
func (s *Service) IsSecure(plaintext string) bool {
	if utf8.RuneCountInString(plaintext) < minLength {
		return false
	}

	var lower, upper, digit, symbol bool
	for _, r := range plaintext {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(symbols, r):
			symbol = true
		}
	}

	return lower && upper && digit && symbol
}
