package models

import (
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

// Account is a login identity. The role decides which profile the account
// owns (donor or hospital) and which endpoints it may call.
//
// Invariants:
//   - Email is unique, stored lowercase
//   - Role is immutable after registration
//   - PasswordHash is never empty and never serialized
type Account struct {
	ID           domain.AccountID `json:"id"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"`
	Role         domain.Role      `json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAccount constructs an account, enforcing registration invariants.
// The caller provides an already-hashed password.
func NewAccount(id domain.AccountID, email, passwordHash string, role domain.Role, now time.Time) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a valid email is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "role must be donor or hospital")
	}

	return &Account{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Clone returns a copy so store callers never alias shared state.
func (a *Account) Clone() *Account {
	out := *a
	return &out
}
