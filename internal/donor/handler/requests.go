package handler

import (
	"strings"
	"time"

	"bloodlink/internal/donor/models"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
)

// UpdateProfileRequest is the HTTP request body for PUT /donors/profile.
// All fields are optional; absent fields leave the profile untouched.
type UpdateProfileRequest struct {
	Phone             *string  `json:"phone"`
	Address           *string  `json:"address"`
	City              *string  `json:"city"`
	State             *string  `json:"state"`
	Longitude         *float64 `json:"longitude"`
	Latitude          *float64 `json:"latitude"`
	LastDonated       *string  `json:"last_donated"`
	MedicalConditions *string  `json:"medical_conditions"`
	EmergencyContact  *string  `json:"emergency_contact"`

	// Parsed values (populated by Validate)
	parsedLastDonated *time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if r.Phone != nil {
		trimmed := strings.TrimSpace(*r.Phone)
		if trimmed == "" {
			return dErrors.New(dErrors.CodeValidation, "phone cannot be blank")
		}
		r.Phone = &trimmed
	}

	// Coordinates travel as a pair or not at all.
	if (r.Longitude == nil) != (r.Latitude == nil) {
		return dErrors.New(dErrors.CodeValidation, "longitude and latitude must be provided together")
	}
	if r.Longitude != nil {
		if *r.Longitude < -180 || *r.Longitude > 180 {
			return dErrors.New(dErrors.CodeValidation, "longitude must be between -180 and 180")
		}
		if *r.Latitude < -90 || *r.Latitude > 90 {
			return dErrors.New(dErrors.CodeValidation, "latitude must be between -90 and 90")
		}
	}

	if r.LastDonated != nil {
		t, err := time.Parse(time.RFC3339, *r.LastDonated)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "last_donated must be an RFC 3339 timestamp")
		}
		r.parsedLastDonated = &t
	}

	return nil
}

// ToProfileUpdate converts the validated request into the domain update.
func (r *UpdateProfileRequest) ToProfileUpdate() models.ProfileUpdate {
	update := models.ProfileUpdate{
		Phone:             r.Phone,
		Address:           r.Address,
		City:              r.City,
		State:             r.State,
		LastDonated:       r.parsedLastDonated,
		MedicalConditions: r.MedicalConditions,
		EmergencyContact:  r.EmergencyContact,
	}
	if r.Longitude != nil && r.Latitude != nil {
		update.Coordinates = &geo.Point{Longitude: *r.Longitude, Latitude: *r.Latitude}
	}
	return update
}
