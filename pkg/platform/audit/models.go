// Package audit captures key domain actions for traceability. Events are
// emitted from services, stored for per-account listing, and optionally fanned
// out to a Kafka sink for downstream consumers.
package audit

import (
	"time"

	"bloodlink/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time        `json:"timestamp"`
	AccountID domain.AccountID `json:"account_id"`
	Action    string           `json:"action"`
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string `json:"request_id,omitempty"`
	// BloodType is set for events about a specific blood type (registration,
	// blood requests).
	BloodType string `json:"blood_type,omitempty"`
	// Subject identifies the affected record (donor, hospital, or request id)
	// as a string to keep the event schema stable across entity types.
	Subject string `json:"subject,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Action is the closed set of emitted audit actions.
type Action string

const (
	EventAccountCreated      Action = "account_created"
	EventLoginSucceeded      Action = "login_succeeded"
	EventDonorRegistered     Action = "donor_registered"
	EventAvailabilityToggled Action = "availability_toggled"
	EventProfileUpdated      Action = "profile_updated"
	EventHospitalRegistered  Action = "hospital_registered"
	EventRequestCreated      Action = "request_created"
	EventRequestFulfilled    Action = "request_fulfilled"
)
