// Package password hashes and verifies login passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "bloodlink/pkg/domain-errors"
)

// MinLength is the shortest accepted password.
const MinLength = 8

// Hash creates a bcrypt hash of the provided password.
func Hash(password string) (string, error) {
	if len(password) < MinLength {
		return "", dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks a plaintext password against a bcrypt hash.
func Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
