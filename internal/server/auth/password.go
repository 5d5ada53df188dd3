package auth

import (
	"errors"

	"github.com/dmitrijs2005/dreamsync/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, common.ErrorInvalidArgument
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash []byte, password string) error {
	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return common.ErrorUnauthorized
	}
	return err
}
