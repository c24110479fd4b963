package models

import (
	"fmt"
	"time"
)

// VitalSign is one set of vital measurements recorded during an encounter.
// All measurements are optional; a reading may carry only the values the
// device or nurse captured.
type VitalSign struct {
	VitalSignsID           uint      `gorm:"primaryKey;column:vital_signs_id" json:"vitalSignsId"`
	EncounterID            uint      `gorm:"not null;index" json:"encounterId"`
	TemperatureValue       *float64  `json:"temperatureValue,omitempty"`
	TemperatureUnit        string    `gorm:"size:2" json:"temperatureUnit,omitempty"`
	BloodPressureSystolic  *int      `json:"bloodPressureSystolic,omitempty"`
	BloodPressureDiastolic *int      `json:"bloodPressureDiastolic,omitempty"`
	HeartRate              *int      `json:"heartRate,omitempty"`
	RespiratoryRate        *int      `json:"respiratoryRate,omitempty"`
	OxygenSaturation       *float64  `json:"oxygenSaturation,omitempty"`
	WeightValue            *float64  `json:"weightValue,omitempty"`
	WeightUnit             string    `gorm:"size:5" json:"weightUnit,omitempty"`
	HeightValue            *float64  `json:"heightValue,omitempty"`
	HeightUnit             string    `gorm:"size:5" json:"heightUnit,omitempty"`
	BMI                    *float64  `gorm:"column:bmi" json:"bmi,omitempty"`
	Notes                  string    `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy             uint      `gorm:"index" json:"recordedBy"`
	RecordedAt             time.Time `json:"recordedAt"`

	Encounter *Encounter `gorm:"foreignKey:EncounterID" json:"encounter,omitempty"`
	Recorder  *Provider  `gorm:"foreignKey:RecordedBy" json:"recorder,omitempty"`
}

// BloodPressure returns the reading formatted as "systolic/diastolic", or an
// empty string when either half is missing.
func (v *VitalSign) BloodPressure() string {
	if v.BloodPressureSystolic == nil || v.BloodPressureDiastolic == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", *v.BloodPressureSystolic, *v.BloodPressureDiastolic)
}
