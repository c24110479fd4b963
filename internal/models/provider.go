package models

import (
	"fmt"
	"time"
)

// Provider represents a care provider in the provider directory.
type Provider struct {
	ProviderID    uint      `gorm:"primaryKey;column:provider_id" json:"providerId"`
	FirstName     string    `gorm:"size:100;not null" json:"firstName"`
	LastName      string    `gorm:"size:100;not null;index" json:"lastName"`
	Specialty     string    `gorm:"size:150" json:"specialty,omitempty"`
	LicenseNumber string    `gorm:"size:50" json:"licenseNumber,omitempty"`
	NPINumber     string    `gorm:"column:npi_number;size:20" json:"npiNumber,omitempty"`
	PhoneNumber   string    `gorm:"size:20" json:"phoneNumber,omitempty"`
	Email         string    `gorm:"size:255" json:"email,omitempty"`
	DepartmentID  *uint     `json:"departmentId,omitempty"`
	IsActive      bool      `gorm:"default:true;index" json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Department *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Encounters []Encounter `gorm:"foreignKey:ProviderID" json:"encounters,omitempty"`
}

// FullName returns the provider's display name.
func (p *Provider) FullName() string {
	return fmt.Sprintf("Dr. %s %s", p.FirstName, p.LastName)
}

// Department is a hospital department providers and encounters belong to.
type Department struct {
	DepartmentID uint      `gorm:"primaryKey;column:department_id" json:"departmentId"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	Description  string    `gorm:"size:500" json:"description,omitempty"`
	Location     string    `gorm:"size:255" json:"location,omitempty"`
	PhoneNumber  string    `gorm:"size:20" json:"phoneNumber,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Providers []Provider `gorm:"foreignKey:DepartmentID" json:"providers,omitempty"`
}
