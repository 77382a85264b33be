package handler

import (
	"time"

	"bloodlink/internal/account/models"
	"bloodlink/internal/account/service"
	donorhandler "bloodlink/internal/donor/handler"
	hospitalhandler "bloodlink/internal/hospital/handler"
	"bloodlink/pkg/platform/audit"
)

// AccountResponse is the HTTP representation of an account. The password
// hash never leaves the service layer.
type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse pairs a signed token with its account for register and login.
type AuthResponse struct {
	Token   string           `json:"token"`
	Account *AccountResponse `json:"account"`
}

// MeResponse pairs the account with its role profile for /auth/me. Exactly
// one profile field is set for a populated account; both are omitted when the
// profile row is missing.
type MeResponse struct {
	Account  *AccountResponse                  `json:"account"`
	Donor    *donorhandler.DonorResponse       `json:"donor,omitempty"`
	Hospital *hospitalhandler.HospitalResponse `json:"hospital,omitempty"`
}

// FromMeResult converts the service result into its response form.
func FromMeResult(result *service.MeResult) *MeResponse {
	resp := &MeResponse{Account: FromAccount(result.Account)}
	if result.Donor != nil {
		resp.Donor = donorhandler.FromDonor(result.Donor)
	}
	if result.Hospital != nil {
		resp.Hospital = hospitalhandler.FromHospital(result.Hospital)
	}
	return resp
}

// EventResponse is the HTTP representation of one audit event.
type EventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	BloodType string    `json:"blood_type,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// ActivityResponse wraps the event list with its count.
type ActivityResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

// FromEvents converts audit events into the activity response.
func FromEvents(events []audit.Event) *ActivityResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			Timestamp: e.Timestamp,
			Action:    e.Action,
			BloodType: e.BloodType,
			Subject:   e.Subject,
			Detail:    e.Detail,
		})
	}
	return &ActivityResponse{Events: out, Count: len(out)}
}

// FromAccount converts an account model into its response form.
func FromAccount(account *models.Account) *AccountResponse {
	return &AccountResponse{
		ID:        account.ID.String(),
		Email:     account.Email,
		Role:      string(account.Role),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}
