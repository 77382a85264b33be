package handler

import (
	"time"

	donorhandler "bloodlink/internal/donor/handler"
	donormodels "bloodlink/internal/donor/models"
	"bloodlink/internal/hospital/models"
)

// HospitalResponse is the HTTP representation of a hospital profile.
type HospitalResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	License   string           `json:"license,omitempty"`
	Location  LocationResponse `json:"location"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// LocationResponse is the location portion of a hospital response.
type LocationResponse struct {
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
}

// RequestResponse is the HTTP representation of a blood request.
type RequestResponse struct {
	ID          string     `json:"id"`
	BloodType   string     `json:"blood_type"`
	Units       int        `json:"units"`
	Urgency     string     `json:"urgency"`
	Notes       string     `json:"notes,omitempty"`
	IsFulfilled bool       `json:"is_fulfilled"`
	FulfilledAt *time.Time `json:"fulfilled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateRequestResponse pairs the recorded request with the donors matched
// for it at creation time.
type CreateRequestResponse struct {
	Request       *RequestResponse              `json:"request"`
	MatchedDonors []*donorhandler.DonorResponse `json:"matched_donors"`
}

// FromHospital converts a domain hospital to its HTTP representation.
func FromHospital(h *models.Hospital) *HospitalResponse {
	resp := &HospitalResponse{
		ID:        h.ID.String(),
		Name:      h.Name,
		Email:     h.Email,
		Phone:     h.Phone,
		License:   h.License,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
		Location: LocationResponse{
			Address: h.Location.Address,
			City:    h.Location.City,
			State:   h.Location.State,
		},
	}
	if h.Location.Coordinates != nil {
		lon, lat := h.Location.Coordinates.Longitude, h.Location.Coordinates.Latitude
		resp.Location.Longitude = &lon
		resp.Location.Latitude = &lat
	}
	return resp
}

// FromRequest converts a domain blood request to its HTTP representation.
func FromRequest(r *models.BloodRequest) *RequestResponse {
	return &RequestResponse{
		ID:          r.ID.String(),
		BloodType:   r.BloodType.String(),
		Units:       r.Units,
		Urgency:     r.Urgency.String(),
		Notes:       r.Notes,
		IsFulfilled: r.IsFulfilled,
		FulfilledAt: r.FulfilledAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// FromRequests converts a request slice, preserving order.
func FromRequests(requests []*models.BloodRequest) []*RequestResponse {
	out := make([]*RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, FromRequest(r))
	}
	return out
}

func matchedDonors(donors []*donormodels.Donor) []*donorhandler.DonorResponse {
	return donorhandler.FromDonors(donors)
}
