package models

import (
	"time"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

// Urgency grades a blood request.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency validates against the closed urgency set.
func ParseUrgency(raw string) (Urgency, error) {
	switch Urgency(raw) {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return Urgency(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "urgency must be low, medium, or high")
	}
}

func (u Urgency) String() string { return string(u) }

// BloodRequest records a hospital's need for blood units.
//
// Invariants:
//   - Units is positive
//   - A fulfilled request stays fulfilled; FulfilledAt is set exactly once
//   - HospitalID is immutable and scopes every lookup
type BloodRequest struct {
	ID         domain.RequestID  `json:"id"`
	HospitalID domain.HospitalID `json:"hospital_id"`

	BloodType domain.BloodType `json:"blood_type"`
	Units     int              `json:"units"`
	Urgency   Urgency          `json:"urgency"`
	Notes     string           `json:"notes,omitempty"`

	IsFulfilled bool       `json:"is_fulfilled"`
	FulfilledAt *time.Time `json:"fulfilled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBloodRequest constructs an open request, enforcing creation invariants.
func NewBloodRequest(id domain.RequestID, hospitalID domain.HospitalID, bloodType domain.BloodType, units int, urgency Urgency, notes string, now time.Time) (*BloodRequest, error) {
	if !bloodType.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "blood type must be one of the eight supported values")
	}
	if units <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "units must be positive")
	}
	if _, err := ParseUrgency(string(urgency)); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "urgency must be low, medium, or high")
	}

	return &BloodRequest{
		ID:         id,
		HospitalID: hospitalID,
		BloodType:  bloodType,
		Units:      units,
		Urgency:    urgency,
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanFulfill reports whether the request is still open.
func (r *BloodRequest) CanFulfill() error {
	if r.IsFulfilled {
		return dErrors.New(dErrors.CodeConflict, "blood request is already fulfilled")
	}
	return nil
}

// ApplyFulfill marks the request fulfilled. Callers must check CanFulfill
// first, inside the store's lock.
func (r *BloodRequest) ApplyFulfill(now time.Time) {
	r.IsFulfilled = true
	r.FulfilledAt = &now
	r.UpdatedAt = now
}

// Clone returns a deep copy so store callers never alias shared state.
func (r *BloodRequest) Clone() *BloodRequest {
	out := *r
	if r.FulfilledAt != nil {
		t := *r.FulfilledAt
		out.FulfilledAt = &t
	}
	return &out
}
