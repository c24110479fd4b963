package models

import (
	"time"
)

// DeviceType classifies a registered IoT device.
type DeviceType string

const (
	DeviceWatch           DeviceType = "Watch"
	DeviceRing            DeviceType = "Ring"
	DeviceEarClip         DeviceType = "EarClip"
	DeviceAdapter         DeviceType = "Adapter"
	DevicePulseGlucometer DeviceType = "PulseGlucometer"
)

// DeviceStatus tracks whether a device is in service.
type DeviceStatus string

const (
	DeviceActive      DeviceStatus = "Active"
	DeviceInactive    DeviceStatus = "Inactive"
	DeviceMaintenance DeviceStatus = "Maintenance"
	DeviceRetired     DeviceStatus = "Retired"
)

// Device is an IoT device registered to a patient.
type Device struct {
	DeviceID         uint         `gorm:"primaryKey;column:device_id" json:"deviceId"`
	PatientID        uint         `gorm:"not null;index" json:"patientId"`
	DeviceUniqueID   string       `gorm:"size:255;not null;uniqueIndex" json:"deviceUniqueId"`
	DeviceType       DeviceType   `gorm:"size:30;not null" json:"deviceType"`
	DeviceName       string       `gorm:"size:200;not null" json:"deviceName"`
	Manufacturer     string       `gorm:"size:200" json:"manufacturer,omitempty"`
	ModelNumber      string       `gorm:"size:100" json:"modelNumber,omitempty"`
	FirmwareVersion  string       `gorm:"size:50" json:"firmwareVersion,omitempty"`
	Capabilities     string       `gorm:"type:text" json:"capabilities,omitempty"` // JSON array of capability names
	Status           DeviceStatus `gorm:"size:20;default:'Active'" json:"status"`
	BatteryLevel     *int         `json:"batteryLevel,omitempty"`
	LastSync         *time.Time   `json:"lastSync,omitempty"`
	RegistrationDate time.Time    `json:"registrationDate"`
	Notes            string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`

	Patient *Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

// DeviceAPIKey authenticates a device (or device gateway) against the IoT
// intake endpoints. Keys are issued once and can be revoked.
type DeviceAPIKey struct {
	KeyID      uint       `gorm:"primaryKey;column:key_id" json:"keyId"`
	DeviceID   uint       `gorm:"not null;index" json:"deviceId"`
	APIKey     string     `gorm:"column:api_key;size:64;not null;uniqueIndex" json:"apiKey"`
	IsActive   bool       `gorm:"default:true" json:"isActive"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Device *Device `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
}

// DeviceReading is one batch of measurements submitted by a device.
type DeviceReading struct {
	ReadingID              uint      `gorm:"primaryKey;column:reading_id" json:"readingId"`
	DeviceID               uint      `gorm:"not null;index" json:"deviceId"`
	PatientID              uint      `gorm:"not null;index" json:"patientId"`
	HeartRate              *int      `json:"heartRate,omitempty"`
	BloodPressureSystolic  *int      `json:"bloodPressureSystolic,omitempty"`
	BloodPressureDiastolic *int      `json:"bloodPressureDiastolic,omitempty"`
	Temperature            *float64  `json:"temperature,omitempty"`
	TemperatureUnit        string    `gorm:"size:2" json:"temperatureUnit,omitempty"`
	RespiratoryRate        *int      `json:"respiratoryRate,omitempty"`
	OxygenSaturation       *float64  `json:"oxygenSaturation,omitempty"`
	Glucose                *float64  `json:"glucose,omitempty"`
	Weight                 *float64  `json:"weight,omitempty"`
	WeightUnit             string    `gorm:"size:5" json:"weightUnit,omitempty"`
	SignalQuality          *int      `json:"signalQuality,omitempty"`
	MeasuredAt             time.Time `gorm:"index" json:"measuredAt"`
	CreatedAt              time.Time `json:"createdAt"`

	Device *Device `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
}
