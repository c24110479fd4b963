package models

import (
	"time"
)

// EncounterStatus represents the status of an encounter.
type EncounterStatus string

const (
	EncounterScheduled  EncounterStatus = "Scheduled"
	EncounterInProgress EncounterStatus = "In Progress"
	EncounterCompleted  EncounterStatus = "Completed"
	EncounterCancelled  EncounterStatus = "Cancelled"
)

// EncounterType classifies how the patient was seen.
type EncounterType string

const (
	EncounterInpatient  EncounterType = "Inpatient"
	EncounterOutpatient EncounterType = "Outpatient"
	EncounterEmergency  EncounterType = "Emergency"
	EncounterTelehealth EncounterType = "Telehealth"
	EncounterFollowUp   EncounterType = "Follow-up"
)

// Encounter is a single patient visit. It aggregates the clinical
// documentation recorded during the visit: chief complaints, vital signs,
// diagnoses, examination, impression, treatment plan and prescriptions.
type Encounter struct {
	EncounterID   uint            `gorm:"primaryKey;column:encounter_id" json:"encounterId"`
	PatientID     uint            `gorm:"not null;index" json:"patientId"`
	ProviderID    uint            `gorm:"not null;index" json:"providerId"`
	DepartmentID  uint            `gorm:"not null;index" json:"departmentId"`
	EncounterDate time.Time       `gorm:"index" json:"encounterDate"`
	EncounterType EncounterType   `gorm:"size:20" json:"encounterType"`
	Status        EncounterStatus `gorm:"size:20;default:'In Progress';index" json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	// Relations
	Patient             *Patient             `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Provider            *Provider            `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Department          *Department          `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	ChiefComplaints     []ChiefComplaint     `gorm:"foreignKey:EncounterID" json:"chiefComplaints,omitempty"`
	VitalSigns          []VitalSign          `gorm:"foreignKey:EncounterID" json:"vitalSigns,omitempty"`
	Diagnoses           []Diagnosis          `gorm:"foreignKey:EncounterID" json:"diagnoses,omitempty"`
	Prescriptions       []Prescription       `gorm:"foreignKey:EncounterID" json:"prescriptions,omitempty"`
	PhysicalExamination *PhysicalExamination `gorm:"foreignKey:EncounterID" json:"physicalExamination,omitempty"`
	ClinicalImpression  *ClinicalImpression  `gorm:"foreignKey:EncounterID" json:"clinicalImpression,omitempty"`
	TreatmentPlan       *TreatmentPlan       `gorm:"foreignKey:EncounterID" json:"treatmentPlan,omitempty"`
}

// ChiefComplaint is the patient's stated reason for the visit.
type ChiefComplaint struct {
	ComplaintID uint      `gorm:"primaryKey;column:complaint_id" json:"complaintId"`
	EncounterID uint      `gorm:"not null;index" json:"encounterId"`
	Complaint   string    `gorm:"type:text;not null" json:"complaint"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PhysicalExamination holds the exam findings for an encounter.
type PhysicalExamination struct {
	ExamID      uint      `gorm:"primaryKey;column:exam_id" json:"examId"`
	EncounterID uint      `gorm:"not null;uniqueIndex" json:"encounterId"`
	Findings    string    `gorm:"type:text" json:"findings,omitempty"`
	Notes       string    `gorm:"type:text" json:"notes,omitempty"`
	ExaminedBy  uint      `json:"examinedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ClinicalImpression is the provider's assessment for an encounter.
type ClinicalImpression struct {
	ImpressionID uint      `gorm:"primaryKey;column:impression_id" json:"impressionId"`
	EncounterID  uint      `gorm:"not null;uniqueIndex" json:"encounterId"`
	Impression   string    `gorm:"type:text" json:"impression,omitempty"`
	Notes        string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TreatmentPlan documents the plan of care decided during an encounter.
type TreatmentPlan struct {
	PlanID               uint      `gorm:"primaryKey;column:plan_id" json:"planId"`
	EncounterID          uint      `gorm:"not null;uniqueIndex" json:"encounterId"`
	PlanDescription      string    `gorm:"type:text;not null" json:"planDescription"`
	DiagnosticWorkup     string    `gorm:"type:text" json:"diagnosticWorkup,omitempty"`
	TreatmentDetails     string    `gorm:"type:text" json:"treatmentDetails,omitempty"`
	PatientEducation     string    `gorm:"type:text" json:"patientEducation,omitempty"`
	FollowUpInstructions string    `gorm:"type:text" json:"followUpInstructions,omitempty"`
	PreventionMeasures   string    `gorm:"type:text" json:"preventionMeasures,omitempty"`
	CreatedBy            uint      `gorm:"index" json:"createdBy"`
	CreatedAt            time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`

	Encounter *Encounter `gorm:"foreignKey:EncounterID" json:"encounter,omitempty"`
	Creator   *Provider  `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}
