package models

import (
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
)

// Location is a hospital's site. Coordinates are optional; hospitals without
// them cannot run proximity-ranked donor searches but everything else works.
type Location struct {
	Coordinates *geo.Point `json:"coordinates,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
}

// Hospital is the aggregate root for a hospital profile.
//
// Invariants:
//   - AccountID references exactly one account; one hospital profile per
//     account
//   - CreatedAt is immutable after construction
type Hospital struct {
	ID        domain.HospitalID `json:"id"`
	AccountID domain.AccountID  `json:"-"`

	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	License string `json:"license,omitempty"`

	Location Location `json:"location"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewHospital constructs a hospital profile, enforcing registration
// invariants.
func NewHospital(id domain.HospitalID, accountID domain.AccountID, name, email, phone, license string, loc Location, now time.Time) (*Hospital, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "hospital name cannot be empty")
	}
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "hospital phone cannot be empty")
	}

	return &Hospital{
		ID:        id,
		AccountID: accountID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		License:   license,
		Location:  loc,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Clone returns a deep copy so store callers never alias shared state.
func (h *Hospital) Clone() *Hospital {
	out := *h
	if h.Location.Coordinates != nil {
		c := *h.Location.Coordinates
		out.Location.Coordinates = &c
	}
	return &out
}
