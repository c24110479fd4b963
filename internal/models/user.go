package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum for login accounts.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleProvider Role = "provider"
	RolePatient  Role = "patient"
)

// UserAccount is a login account. A patient or provider account carries a
// link to its directory record; the messaging endpoints verify that the
// party in the URL matches the party linked here, so identity is no longer
// just whatever appears in the path.
type UserAccount struct {
	AccountID uint       `gorm:"primaryKey;column:account_id" json:"accountId"`
	Email     string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role      Role       `gorm:"size:20;default:'staff'" json:"role"`
	PartyType *PartyType `gorm:"size:20" json:"partyType,omitempty"`
	PartyID   *uint      `json:"partyId,omitempty"`
	IsActive  bool       `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:AccountID" json:"-"`
}

// LinkedParty returns the account's party reference, or false when the
// account is not tied to a patient or provider (admin and staff accounts).
func (u *UserAccount) LinkedParty() (PartyRef, bool) {
	if u.PartyType == nil || u.PartyID == nil {
		return PartyRef{}, false
	}
	return PartyRef{Type: *u.PartyType, ID: *u.PartyID}, true
}

// SetPassword hashes a password and sets it on the account
func (u *UserAccount) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the account's hashed password
func (u *UserAccount) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// AccountSanitized represents the account data that is safe to send in API
// responses.
type AccountSanitized struct {
	AccountID uint       `json:"accountId"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	PartyType *PartyType `json:"partyType,omitempty"`
	PartyID   *uint      `json:"partyId,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Sanitize strips credentials from an account for API responses.
func (u *UserAccount) Sanitize() AccountSanitized {
	return AccountSanitized{
		AccountID: u.AccountID,
		Email:     u.Email,
		Role:      u.Role,
		PartyType: u.PartyType,
		PartyID:   u.PartyID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
