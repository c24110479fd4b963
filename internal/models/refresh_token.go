package models

import (
	"time"
)

// RefreshToken stores a refresh token issued to a login account.
type RefreshToken struct {
	TokenID   uint      `gorm:"primaryKey;column:token_id" json:"tokenId"`
	AccountID uint      `gorm:"not null;index" json:"accountId"`
	Token     string    `gorm:"size:512;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`

	Account *UserAccount `gorm:"foreignKey:AccountID" json:"-"`
}
