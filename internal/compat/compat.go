// Package compat holds the fixed blood-type compatibility relation.
//
// The relation is declared once as data and never mutated at runtime; the
// inverse direction is derived mechanically at init so the two can't drift.
package compat

import (
	"sort"

	"bloodlink/pkg/domain"
	dErrors "bloodlink/pkg/domain-errors"
)

// ErrUnknownBloodType is returned when a lookup receives a value outside the
// eight supported types. Callers that parse input with domain.ParseBloodType
// never see it.
var ErrUnknownBloodType = dErrors.New(dErrors.CodeValidation, "unknown blood type")

// donorToRecipients maps a donor's blood type to every type it may donate to
// (universal donor/receiver rules). Single source of truth for both lookup
// directions.
var donorToRecipients = map[domain.BloodType][]domain.BloodType{
	domain.ONegative: {
		domain.APositive, domain.ANegative, domain.BPositive, domain.BNegative,
		domain.ABPositive, domain.ABNegative, domain.OPositive, domain.ONegative,
	},
	domain.OPositive:  {domain.APositive, domain.BPositive, domain.ABPositive, domain.OPositive},
	domain.ANegative:  {domain.APositive, domain.ANegative, domain.ABPositive, domain.ABNegative},
	domain.APositive:  {domain.APositive, domain.ABPositive},
	domain.BNegative:  {domain.BPositive, domain.BNegative, domain.ABPositive, domain.ABNegative},
	domain.BPositive:  {domain.BPositive, domain.ABPositive},
	domain.ABNegative: {domain.ABPositive, domain.ABNegative},
	domain.ABPositive: {domain.ABPositive},
}

// recipientToDonors is the derived inverse: recipient type to every type that
// may donate to it. Built once at package init by scanning the forward map.
var recipientToDonors = invert(donorToRecipients)

func invert(forward map[domain.BloodType][]domain.BloodType) map[domain.BloodType][]domain.BloodType {
	inverse := make(map[domain.BloodType][]domain.BloodType, len(forward))
	for _, donor := range domain.AllBloodTypes {
		for _, recipient := range forward[donor] {
			inverse[recipient] = append(inverse[recipient], donor)
		}
	}
	for recipient := range inverse {
		sort.Slice(inverse[recipient], func(i, j int) bool {
			return inverse[recipient][i] < inverse[recipient][j]
		})
	}
	return inverse
}

// CompatibleRecipients returns the blood types a donor of donorType may give
// to. The returned slice is a copy; callers may reorder it freely.
func CompatibleRecipients(donorType domain.BloodType) ([]domain.BloodType, error) {
	recipients, ok := donorToRecipients[donorType]
	if !ok {
		return nil, ErrUnknownBloodType
	}
	out := make([]domain.BloodType, len(recipients))
	copy(out, recipients)
	return out, nil
}

// CompatibleDonors returns every blood type that may donate to recipientType,
// sorted ascending. The returned slice is a copy.
func CompatibleDonors(recipientType domain.BloodType) ([]domain.BloodType, error) {
	donors, ok := recipientToDonors[recipientType]
	if !ok {
		return nil, ErrUnknownBloodType
	}
	out := make([]domain.BloodType, len(donors))
	copy(out, donors)
	return out, nil
}

// CanDonate reports whether a donor of donorType may give to recipientType.
// Unknown values on either side report false.
func CanDonate(donorType, recipientType domain.BloodType) bool {
	for _, r := range donorToRecipients[donorType] {
		if r == recipientType {
			return true
		}
	}
	return false
}
