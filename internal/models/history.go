package models

import (
	"time"
)

// AllergySeverity grades how dangerous an allergy is.
type AllergySeverity string

const (
	SeverityMild            AllergySeverity = "Mild"
	SeverityModerate        AllergySeverity = "Moderate"
	SeveritySevere          AllergySeverity = "Severe"
	SeverityLifeThreatening AllergySeverity = "Life-threatening"
)

// Allergy is a recorded patient allergy.
type Allergy struct {
	AllergyID uint            `gorm:"primaryKey;column:allergy_id" json:"allergyId"`
	PatientID uint            `gorm:"not null;index" json:"patientId"`
	Allergen  string          `gorm:"size:200;not null" json:"allergen"`
	Reaction  string          `gorm:"size:500" json:"reaction,omitempty"`
	Severity  AllergySeverity `gorm:"size:20;index" json:"severity"`
	IsActive  bool            `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// PastMedicalHistory is one prior condition on a patient's chart.
type PastMedicalHistory struct {
	HistoryID     uint       `gorm:"primaryKey;column:history_id" json:"historyId"`
	PatientID     uint       `gorm:"not null;index" json:"patientId"`
	Condition     string     `gorm:"size:300;not null" json:"condition"`
	DiagnosedDate *time.Time `json:"diagnosedDate,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// TableName keeps the plural-free table name used by the original schema.
func (PastMedicalHistory) TableName() string {
	return "past_medical_history"
}

// SurgicalHistory is one prior surgery on a patient's chart.
type SurgicalHistory struct {
	SurgeryID   uint       `gorm:"primaryKey;column:surgery_id" json:"surgeryId"`
	PatientID   uint       `gorm:"not null;index" json:"patientId"`
	Procedure   string     `gorm:"size:300;not null" json:"procedure"`
	SurgeryDate *time.Time `json:"surgeryDate,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TableName keeps the original schema's table name.
func (SurgicalHistory) TableName() string {
	return "surgical_history"
}

// FamilyHistory is one family-member condition on a patient's chart.
type FamilyHistory struct {
	FamilyHistoryID uint      `gorm:"primaryKey;column:family_history_id" json:"familyHistoryId"`
	PatientID       uint      `gorm:"not null;index" json:"patientId"`
	Relationship    string    `gorm:"size:100" json:"relationship"`
	Condition       string    `gorm:"size:300;not null" json:"condition"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName keeps the original schema's table name.
func (FamilyHistory) TableName() string {
	return "family_history"
}

// SocialHistory captures lifestyle factors for a patient.
type SocialHistory struct {
	SocialHistoryID uint      `gorm:"primaryKey;column:social_history_id" json:"socialHistoryId"`
	PatientID       uint      `gorm:"not null;index" json:"patientId"`
	TobaccoUse      string    `gorm:"size:100" json:"tobaccoUse,omitempty"`
	AlcoholUse      string    `gorm:"size:100" json:"alcoholUse,omitempty"`
	DrugUse         string    `gorm:"size:100" json:"drugUse,omitempty"`
	Occupation      string    `gorm:"size:200" json:"occupation,omitempty"`
	Notes           string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName keeps the original schema's table name.
func (SocialHistory) TableName() string {
	return "social_history"
}
