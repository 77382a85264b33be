package domain

import dErrors "bloodlink/pkg/domain-errors"

// BloodType is one of the eight ABO/Rh blood types.
// Invariant: the value is one of the supported constants; immutable once
// assigned to a donor.
//
// Usage: construct via ParseBloodType at trust boundaries to enforce the
// closed set; direct casting bypasses validation.
type BloodType string

const (
	APositive  BloodType = "A+"
	ANegative  BloodType = "A-"
	BPositive  BloodType = "B+"
	BNegative  BloodType = "B-"
	ABPositive BloodType = "AB+"
	ABNegative BloodType = "AB-"
	OPositive  BloodType = "O+"
	ONegative  BloodType = "O-"
)

// AllBloodTypes lists the supported types in ascending byte order
// (A+ A- AB+ AB- B+ B- O+ O-), used for deterministic iteration in dashboard
// breakdowns and compatibility inversion.
var AllBloodTypes = []BloodType{
	APositive, ANegative, ABPositive, ABNegative,
	BPositive, BNegative, OPositive, ONegative,
}

// validBloodTypes is the single source of truth for the closed set.
var validBloodTypes = map[BloodType]bool{
	APositive: true, ANegative: true,
	BPositive: true, BNegative: true,
	ABPositive: true, ABNegative: true,
	OPositive: true, ONegative: true,
}

// ParseBloodType constructs a BloodType from external input.
//
// Errors: returns CodeValidation when the value is empty or outside the eight
// supported types. Unknown values are rejected, never treated as a singleton
// compatibility class.
func ParseBloodType(s string) (BloodType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "blood type is required")
	}
	bt := BloodType(s)
	if !bt.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "unknown blood type "+s)
	}
	return bt, nil
}

// IsValid reports whether the blood type is one of the eight supported values.
func (bt BloodType) IsValid() bool {
	return validBloodTypes[bt]
}

func (bt BloodType) String() string {
	return string(bt)
}
