package models

import (
	"time"
)

// DiagnosisType ranks a diagnosis within an encounter.
type DiagnosisType string

const (
	DiagnosisPrimary      DiagnosisType = "Primary"
	DiagnosisSecondary    DiagnosisType = "Secondary"
	DiagnosisDifferential DiagnosisType = "Differential"
)

// DiagnosisStatus tracks whether a diagnosis is still active.
type DiagnosisStatus string

const (
	DiagnosisActive   DiagnosisStatus = "Active"
	DiagnosisResolved DiagnosisStatus = "Resolved"
	DiagnosisRuleOut  DiagnosisStatus = "Rule Out"
)

// Diagnosis is a coded diagnosis recorded against an encounter.
type Diagnosis struct {
	DiagnosisID          uint            `gorm:"primaryKey;column:diagnosis_id" json:"diagnosisId"`
	EncounterID          uint            `gorm:"not null;index" json:"encounterId"`
	DiagnosisDescription string          `gorm:"type:text;not null" json:"diagnosisDescription"`
	ICD10Code            string          `gorm:"column:icd10_code;size:20" json:"icd10Code,omitempty"`
	ICD11Code            string          `gorm:"column:icd11_code;size:20" json:"icd11Code,omitempty"`
	DiagnosisType        DiagnosisType   `gorm:"size:20" json:"diagnosisType"`
	Status               DiagnosisStatus `gorm:"size:20;default:'Active'" json:"status"`
	OnsetDate            *time.Time      `json:"onsetDate,omitempty"`
	ResolvedDate         *time.Time      `json:"resolvedDate,omitempty"`
	Notes                string          `gorm:"type:text" json:"notes,omitempty"`
	DiagnosedBy          uint            `gorm:"index" json:"diagnosedBy"`
	DiagnosedAt          time.Time       `json:"diagnosedAt"`

	Encounter          *Encounter `gorm:"foreignKey:EncounterID" json:"encounter,omitempty"`
	DiagnosingProvider *Provider  `gorm:"foreignKey:DiagnosedBy" json:"diagnosingProvider,omitempty"`
}
