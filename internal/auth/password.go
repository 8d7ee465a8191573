package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the production bcrypt work factor (about 250ms per hash on
// current server hardware).
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer input would otherwise be
// truncated silently.
const MaxPasswordBytes = 72

var (
	// ErrPasswordTooLong is returned by Hash for input over MaxPasswordBytes.
	ErrPasswordTooLong = fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordBytes)

	// ErrPasswordMismatch is returned by Verify when the password is wrong.
	ErrPasswordMismatch = errors.New("auth: invalid password")
)

// PasswordService hashes and verifies passwords with bcrypt. The cost is a
// field so tests can drop to bcrypt.MinCost.
type PasswordService struct {
	cost int
}

// NewPasswordService returns a PasswordService using DefaultCost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: DefaultCost}
}

// NewPasswordServiceForTest returns a PasswordService with the given cost.
// Pass bcrypt.MinCost (4) from tests in other packages. Never use it in
// production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the self-describing bcrypt hash ($2a$<cost>$<salt><hash>) of
// plaintext.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash. The comparison is constant
// time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
