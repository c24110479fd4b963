package models

import (
	"fmt"
	"time"
)

// Gender values accepted for patient demographics.
const (
	GenderMale    = "Male"
	GenderFemale  = "Female"
	GenderOther   = "Other"
	GenderUnknown = "Unknown"
)

// Patient represents an entry in the patient registry.
type Patient struct {
	PatientID     uint       `gorm:"primaryKey;column:patient_id" json:"patientId"`
	FirstName     string     `gorm:"size:100;not null" json:"firstName"`
	LastName      string     `gorm:"size:100;not null;index" json:"lastName"`
	MiddleName    string     `gorm:"size:100" json:"middleName,omitempty"`
	DateOfBirth   time.Time  `json:"dateOfBirth"`
	Gender        string     `gorm:"size:20" json:"gender"`
	AddressStreet string     `gorm:"size:255" json:"addressStreet,omitempty"`
	AddressCity   string     `gorm:"size:100" json:"addressCity,omitempty"`
	AddressState  string     `gorm:"size:50" json:"addressState,omitempty"`
	AddressZip    string     `gorm:"size:20" json:"addressZip,omitempty"`
	PhoneNumber   string     `gorm:"size:20" json:"phoneNumber,omitempty"`
	Email         string     `gorm:"size:255" json:"email,omitempty"`
	IsActive      bool       `gorm:"default:true;index" json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Relations (not always preloaded)
	Encounters        []Encounter            `gorm:"foreignKey:PatientID" json:"encounters,omitempty"`
	EmergencyContacts []EmergencyContact     `gorm:"foreignKey:PatientID" json:"emergencyContacts,omitempty"`
	Insurance         []InsuranceInformation `gorm:"foreignKey:PatientID" json:"insurance,omitempty"`
	Allergies         []Allergy              `gorm:"foreignKey:PatientID" json:"allergies,omitempty"`
	Prescriptions     []Prescription         `gorm:"foreignKey:PatientID" json:"prescriptions,omitempty"`
	Devices           []Device               `gorm:"foreignKey:PatientID" json:"devices,omitempty"`
}

// FullName returns the patient's display name.
func (p *Patient) FullName() string {
	return fmt.Sprintf("%s %s", p.FirstName, p.LastName)
}

// EmergencyContact is a person to reach on a patient's behalf.
type EmergencyContact struct {
	ContactID    uint      `gorm:"primaryKey;column:contact_id" json:"contactId"`
	PatientID    uint      `gorm:"not null;index" json:"patientId"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	Relationship string    `gorm:"size:100" json:"relationship,omitempty"`
	PhoneNumber  string    `gorm:"size:20" json:"phoneNumber,omitempty"`
	Email        string    `gorm:"size:255" json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
