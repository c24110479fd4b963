package models

import (
	"time"
)

// PrescriptionStatus tracks the lifecycle of a prescription.
type PrescriptionStatus string

const (
	PrescriptionActive       PrescriptionStatus = "Active"
	PrescriptionPending      PrescriptionStatus = "Pending"
	PrescriptionCompleted    PrescriptionStatus = "Completed"
	PrescriptionDiscontinued PrescriptionStatus = "Discontinued"
	PrescriptionCancelled    PrescriptionStatus = "Cancelled"
)

// Prescription is a medication order for a patient, optionally tied to the
// encounter it was written in.
type Prescription struct {
	PrescriptionID  uint               `gorm:"primaryKey;column:prescription_id" json:"prescriptionId"`
	PatientID       uint               `gorm:"not null;index" json:"patientId"`
	ProviderID      uint               `gorm:"not null;index" json:"providerId"`
	EncounterID     *uint              `gorm:"index" json:"encounterId,omitempty"`
	MedicationName  string             `gorm:"size:300;not null" json:"medicationName"`
	Dosage          string             `gorm:"size:200" json:"dosage"`
	Frequency       string             `gorm:"size:200" json:"frequency"`
	Duration        string             `gorm:"size:200" json:"duration,omitempty"`
	Quantity        *int               `json:"quantity,omitempty"`
	Refills         *int               `json:"refills,omitempty"`
	Route           string             `gorm:"size:100" json:"route,omitempty"`
	Instructions    string             `gorm:"type:text" json:"instructions,omitempty"`
	PharmacyName    string             `gorm:"size:200" json:"pharmacyName,omitempty"`
	PharmacyAddress string             `gorm:"size:500" json:"pharmacyAddress,omitempty"`
	PharmacyPhone   string             `gorm:"size:20" json:"pharmacyPhone,omitempty"`
	PrescribedDate  time.Time          `gorm:"index" json:"prescribedDate"`
	StartDate       *time.Time         `json:"startDate,omitempty"`
	EndDate         *time.Time         `json:"endDate,omitempty"`
	Status          PrescriptionStatus `gorm:"size:20;index" json:"status"`
	Notes           string             `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`

	Patient   *Patient   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Provider  *Provider  `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Encounter *Encounter `gorm:"foreignKey:EncounterID" json:"encounter,omitempty"`
}
