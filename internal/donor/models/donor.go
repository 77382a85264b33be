package models

import (
	"strings"
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
)

// Location is a donor's geographic position. Coordinates are optional; donors
// without them are excluded from proximity queries but still listed otherwise.
type Location struct {
	Coordinates *geo.Point `json:"coordinates,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
}

// Donor is the aggregate root for a donor profile.
//
// Invariants:
//   - BloodType is one of the eight supported values and immutable after
//     registration
//   - AccountID references exactly one account; one donor profile per account
//   - Age is between 18 and 65 at registration
//   - CreatedAt is immutable after construction
type Donor struct {
	ID        domain.DonorID   `json:"id"`
	AccountID domain.AccountID `json:"-"`

	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	BloodType domain.BloodType `json:"blood_type"`
	Age       int              `json:"age"`

	IsAvailable bool     `json:"is_available"`
	Location    Location `json:"location"`

	LastDonated       *time.Time `json:"last_donated,omitempty"`
	TotalDonations    int        `json:"total_donations"`
	MedicalConditions string     `json:"medical_conditions"`
	EmergencyContact  string     `json:"emergency_contact,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDonor constructs a donor profile, enforcing registration invariants.
// New donors start available with no donation history.
func NewDonor(id domain.DonorID, accountID domain.AccountID, name, email, phone string, bloodType domain.BloodType, age int, loc Location, now time.Time) (*Donor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor name cannot be empty")
	}
	if phone == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor phone cannot be empty")
	}
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "blood type must be one of the eight supported values")
	}
	if age < 18 || age > 65 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor age must be between 18 and 65")
	}

	return &Donor{
		ID:                id,
		AccountID:         accountID,
		Name:              name,
		Email:             email,
		Phone:             phone,
		BloodType:         bloodType,
		Age:               age,
		IsAvailable:       true,
		Location:          loc,
		MedicalConditions: "None",
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ApplyToggle flips availability and reports the new value.
func (d *Donor) ApplyToggle(now time.Time) bool {
	d.IsAvailable = !d.IsAvailable
	d.UpdatedAt = now
	return d.IsAvailable
}

// ProfileUpdate is a partial update of contact, location, and medical fields.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Phone             *string
	Address           *string
	City              *string
	State             *string
	Coordinates       *geo.Point
	LastDonated       *time.Time
	MedicalConditions *string
	EmergencyContact  *string
}

// ApplyProfileUpdate mutates the updatable fields and always refreshes
// UpdatedAt, even for an empty update.
func (d *Donor) ApplyProfileUpdate(u ProfileUpdate, now time.Time) {
	if u.Phone != nil {
		d.Phone = *u.Phone
	}
	if u.Address != nil {
		d.Location.Address = *u.Address
	}
	if u.City != nil {
		d.Location.City = *u.City
	}
	if u.State != nil {
		d.Location.State = *u.State
	}
	if u.Coordinates != nil {
		c := *u.Coordinates
		d.Location.Coordinates = &c
	}
	if u.LastDonated != nil {
		t := *u.LastDonated
		d.LastDonated = &t
	}
	if u.MedicalConditions != nil {
		d.MedicalConditions = *u.MedicalConditions
	}
	if u.EmergencyContact != nil {
		d.EmergencyContact = *u.EmergencyContact
	}
	d.UpdatedAt = now
}

// Clone returns a deep copy so store callers never alias shared state.
func (d *Donor) Clone() *Donor {
	out := *d
	if d.Location.Coordinates != nil {
		c := *d.Location.Coordinates
		out.Location.Coordinates = &c
	}
	if d.LastDonated != nil {
		t := *d.LastDonated
		out.LastDonated = &t
	}
	return &out
}
