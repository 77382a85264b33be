package handler

import (
	"strings"

	"bloodlink/internal/account/service"
	donormodels "bloodlink/internal/donor/models"
	donorservice "bloodlink/internal/donor/service"
	hospitalmodels "bloodlink/internal/hospital/models"
	hospitalservice "bloodlink/internal/hospital/service"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/geo"
)

// DonorProfileRequest is the nested donor payload on registration.
type DonorProfileRequest struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	BloodType string   `json:"blood_type"`
	Age       int      `json:"age"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`

	parsedBloodType domain.BloodType
}

// HospitalProfileRequest is the nested hospital payload on registration.
type HospitalProfileRequest struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	License   string   `json:"license"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// RegisterRequest is the HTTP request body for POST /auth/register. Exactly
// one of Donor and Hospital must match the declared role; deeper profile
// invariants (age bounds, required names) are enforced by the services.
type RegisterRequest struct {
	Email    string                  `json:"email"`
	Password string                  `json:"password"`
	Role     string                  `json:"role"`
	Donor    *DonorProfileRequest    `json:"donor"`
	Hospital *HospitalProfileRequest `json:"hospital"`

	parsedRole domain.Role
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}

	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return err
	}
	r.parsedRole = role

	if r.Donor != nil {
		bt, err := domain.ParseBloodType(r.Donor.BloodType)
		if err != nil {
			return err
		}
		r.Donor.parsedBloodType = bt
		if err := validateCoordinates(r.Donor.Longitude, r.Donor.Latitude); err != nil {
			return err
		}
	}
	if r.Hospital != nil {
		if err := validateCoordinates(r.Hospital.Longitude, r.Hospital.Latitude); err != nil {
			return err
		}
	}
	return nil
}

// ToRegisterInput converts the validated request into the service input.
func (r *RegisterRequest) ToRegisterInput() service.RegisterInput {
	in := service.RegisterInput{
		Email:    r.Email,
		Password: r.Password,
		Role:     r.parsedRole,
	}
	if r.Donor != nil {
		in.Donor = &donorservice.RegisterInput{
			Name:      r.Donor.Name,
			Phone:     r.Donor.Phone,
			BloodType: r.Donor.parsedBloodType,
			Age:       r.Donor.Age,
			Location: donormodels.Location{
				Coordinates: pointFrom(r.Donor.Longitude, r.Donor.Latitude),
				Address:     r.Donor.Address,
				City:        r.Donor.City,
				State:       r.Donor.State,
			},
		}
	}
	if r.Hospital != nil {
		in.Hospital = &hospitalservice.RegisterInput{
			Name:    r.Hospital.Name,
			Phone:   r.Hospital.Phone,
			License: r.Hospital.License,
			Location: hospitalmodels.Location{
				Coordinates: pointFrom(r.Hospital.Longitude, r.Hospital.Latitude),
				Address:     r.Hospital.Address,
				City:        r.Hospital.City,
				State:       r.Hospital.State,
			},
		}
	}
	return in
}

// LoginRequest is the HTTP request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

func validateCoordinates(longitude, latitude *float64) error {
	if (longitude == nil) != (latitude == nil) {
		return dErrors.New(dErrors.CodeValidation, "longitude and latitude must be provided together")
	}
	if longitude != nil {
		if *longitude < -180 || *longitude > 180 {
			return dErrors.New(dErrors.CodeValidation, "longitude must be between -180 and 180")
		}
		if *latitude < -90 || *latitude > 90 {
			return dErrors.New(dErrors.CodeValidation, "latitude must be between -90 and 90")
		}
	}
	return nil
}

func pointFrom(longitude, latitude *float64) *geo.Point {
	if longitude == nil || latitude == nil {
		return nil
	}
	return &geo.Point{Longitude: *longitude, Latitude: *latitude}
}
