package handler

import (
	"time"

	"bloodlink/internal/donor/models"
	"bloodlink/pkg/domain"
)

// DonorResponse is the HTTP representation of a donor profile.
type DonorResponse struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Email             string           `json:"email"`
	Phone             string           `json:"phone"`
	BloodType         string           `json:"blood_type"`
	Age               int              `json:"age"`
	IsAvailable       bool             `json:"is_available"`
	Location          LocationResponse `json:"location"`
	LastDonated       *time.Time       `json:"last_donated,omitempty"`
	TotalDonations    int              `json:"total_donations"`
	MedicalConditions string           `json:"medical_conditions,omitempty"`
	EmergencyContact  string           `json:"emergency_contact,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// LocationResponse is the location portion of a donor response.
type LocationResponse struct {
	Longitude *float64 `json:"longitude,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
}

// CompatibilityResponse lists both directions of the compatibility relation
// for a blood type.
type CompatibilityResponse struct {
	BloodType   string   `json:"blood_type"`
	CanDonateTo []string `json:"can_donate_to"`
	CanTakeFrom []string `json:"can_take_from"`
}

// FromDonor converts a domain donor to its HTTP representation.
func FromDonor(d *models.Donor) *DonorResponse {
	resp := &DonorResponse{
		ID:                d.ID.String(),
		Name:              d.Name,
		Email:             d.Email,
		Phone:             d.Phone,
		BloodType:         d.BloodType.String(),
		Age:               d.Age,
		IsAvailable:       d.IsAvailable,
		LastDonated:       d.LastDonated,
		TotalDonations:    d.TotalDonations,
		MedicalConditions: d.MedicalConditions,
		EmergencyContact:  d.EmergencyContact,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		Location: LocationResponse{
			Address: d.Location.Address,
			City:    d.Location.City,
			State:   d.Location.State,
		},
	}
	if d.Location.Coordinates != nil {
		lon, lat := d.Location.Coordinates.Longitude, d.Location.Coordinates.Latitude
		resp.Location.Longitude = &lon
		resp.Location.Latitude = &lat
	}
	return resp
}

// FromDonors converts a donor slice, preserving order.
func FromDonors(donors []*models.Donor) []*DonorResponse {
	out := make([]*DonorResponse, 0, len(donors))
	for _, d := range donors {
		out = append(out, FromDonor(d))
	}
	return out
}

func bloodTypeStrings(types []domain.BloodType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, t.String())
	}
	return out
}
