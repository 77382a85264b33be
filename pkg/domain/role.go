package domain

import dErrors "bloodlink/pkg/domain-errors"

// Role identifies what kind of profile an account owns.
type Role string

const (
	RoleDonor    Role = "donor"
	RoleHospital Role = "hospital"
)

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleDonor:
		return RoleDonor, nil
	case RoleHospital:
		return RoleHospital, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "role is required")
	default:
		return "", dErrors.New(dErrors.CodeValidation, "unknown role "+s)
	}
}

func (r Role) String() string {
	return string(r)
}
