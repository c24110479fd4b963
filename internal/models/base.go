package models

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Database connection instance
var DB *gorm.DB

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	DSN string
}

// InitDB initializes the database connection and migrates the schema.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	var err error

	DB, err = gorm.Open(mysql.Open(config.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(DB); err != nil {
		return nil, err
	}

	return DB, nil
}

// Migrate runs AutoMigrate for every model. Tests call this against an
// in-memory SQLite database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserAccount{},
		&RefreshToken{},
		&Patient{},
		&EmergencyContact{},
		&Provider{},
		&Department{},
		&Allergy{},
		&PastMedicalHistory{},
		&SurgicalHistory{},
		&FamilyHistory{},
		&SocialHistory{},
		&Encounter{},
		&ChiefComplaint{},
		&VitalSign{},
		&Diagnosis{},
		&PhysicalExamination{},
		&ClinicalImpression{},
		&TreatmentPlan{},
		&Prescription{},
		&Billing{},
		&BillingItem{},
		&Payment{},
		&InsuranceInformation{},
		&Device{},
		&DeviceAPIKey{},
		&DeviceReading{},
		&Message{},
	)
}
