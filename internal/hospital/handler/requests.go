package handler

import (
	"strings"

	"bloodlink/internal/hospital/models"
	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

// CreateRequestRequest is the HTTP request body for POST /hospitals/requests.
type CreateRequestRequest struct {
	BloodType string `json:"blood_type"`
	Units     int    `json:"units"`
	Urgency   string `json:"urgency"`
	Notes     string `json:"notes"`

	// Parsed values (populated by Validate)
	parsedBloodType domain.BloodType
	parsedUrgency   models.Urgency
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateRequestRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	bloodType, err := domain.ParseBloodType(strings.TrimSpace(r.BloodType))
	if err != nil {
		return err
	}
	r.parsedBloodType = bloodType

	if r.Units <= 0 {
		return dErrors.New(dErrors.CodeValidation, "units must be a positive integer")
	}

	r.Urgency = strings.TrimSpace(r.Urgency)
	if r.Urgency == "" {
		r.Urgency = string(models.UrgencyMedium)
	}
	urgency, err := models.ParseUrgency(r.Urgency)
	if err != nil {
		return err
	}
	r.parsedUrgency = urgency

	if len(r.Notes) > 1000 {
		return dErrors.New(dErrors.CodeValidation, "notes must be at most 1000 characters")
	}
	return nil
}

// ParsedBloodType returns the blood type parsed during Validate.
func (r *CreateRequestRequest) ParsedBloodType() domain.BloodType { return r.parsedBloodType }

// ParsedUrgency returns the urgency parsed during Validate.
func (r *CreateRequestRequest) ParsedUrgency() models.Urgency { return r.parsedUrgency }
