package model

import "time"

// APIKey is a secret key a user generates for programmatic access.
// Only a SHA-256 digest is stored; the plaintext key is returned once
// at creation and never shown again.
type APIKey struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	Digest    string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	Revoked   bool      `json:"revoked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
