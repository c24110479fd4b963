package models

import (
	"gorm.io/gorm"
)

// PartyType tags which directory a message participant belongs to.
type PartyType string

const (
	PartyPatient  PartyType = "patient"
	PartyProvider PartyType = "provider"
)

// ValidPartyType reports whether s is one of the two recognized party types.
// Matching is case-sensitive.
func ValidPartyType(s string) bool {
	return s == string(PartyPatient) || s == string(PartyProvider)
}

// PartyRef identifies a patient or provider. The type tag travels with the
// numeric id everywhere so that Patient #7 and Provider #7 can never be
// conflated.
type PartyRef struct {
	Type PartyType `json:"type"`
	ID   uint      `json:"id"`
}

// Party is a resolved directory entry for a patient or provider.
type Party struct {
	Ref         PartyRef `json:"ref"`
	DisplayName string   `json:"displayName"`
}

// ResolveParty looks up the directory named by ref.Type and returns the
// matching record. Deactivated entries still resolve; historical messages
// keep working after a patient or provider is deactivated.
// Returns gorm.ErrRecordNotFound for an unknown type or a missing id.
func ResolveParty(db *gorm.DB, ref PartyRef) (*Party, error) {
	switch ref.Type {
	case PartyPatient:
		var patient Patient
		if err := db.First(&patient, "patient_id = ?", ref.ID).Error; err != nil {
			return nil, err
		}
		return &Party{Ref: ref, DisplayName: patient.FullName()}, nil
	case PartyProvider:
		var provider Provider
		if err := db.First(&provider, "provider_id = ?", ref.ID).Error; err != nil {
			return nil, err
		}
		return &Party{Ref: ref, DisplayName: provider.FullName()}, nil
	}
	return nil, gorm.ErrRecordNotFound
}
