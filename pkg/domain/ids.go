package domain

import (
	"github.com/google/uuid"

	dErrors "bloodlink/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time: a RequestID can
// never be passed where a DonorID is expected. Construct via the Parse
// functions at trust boundaries; they reject empty, malformed, and nil UUIDs.
type (
	AccountID  uuid.UUID
	DonorID    uuid.UUID
	HospitalID uuid.UUID
	RequestID  uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

func ParseAccountID(s string) (AccountID, error) {
	u, err := parseUUID(s, "account id")
	return AccountID(u), err
}

func ParseDonorID(s string) (DonorID, error) {
	u, err := parseUUID(s, "donor id")
	return DonorID(u), err
}

func ParseHospitalID(s string) (HospitalID, error) {
	u, err := parseUUID(s, "hospital id")
	return HospitalID(u), err
}

func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s, "request id")
	return RequestID(u), err
}

func (id AccountID) String() string  { return uuid.UUID(id).String() }
func (id DonorID) String() string    { return uuid.UUID(id).String() }
func (id HospitalID) String() string { return uuid.UUID(id).String() }
func (id RequestID) String() string  { return uuid.UUID(id).String() }

func (id AccountID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DonorID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id HospitalID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps typed IDs rendering as canonical UUID strings in JSON
// payloads and log attributes.

func (id AccountID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id DonorID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id HospitalID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RequestID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *AccountID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *DonorID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *HospitalID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *RequestID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}
