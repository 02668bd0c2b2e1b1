package model

import "time"

// Link is the core short-link entity stored in Postgres.
//
// Code and Alias share a single namespace: a new alias must not match
// any existing code or alias, and generated codes are checked against
// both columns. Either one resolves a redirect.
type Link struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Code         string     `json:"shortId" gorm:"size:64;uniqueIndex;not null"`
	Alias        *string    `json:"alias,omitempty" gorm:"size:64;uniqueIndex"`
	OriginalURL  string     `json:"originalUrl" gorm:"type:text;not null"`
	OwnerID      *uint      `json:"owner,omitempty" gorm:"index"`
	PasswordHash *string    `json:"-" gorm:"size:128"`
	Enabled      bool       `json:"enabled" gorm:"not null;default:true"`
	ClickCount   int64      `json:"clickCount" gorm:"not null;default:0"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty" gorm:"index"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"-" gorm:"autoUpdateTime"`
}

// Protected reports whether the link is gated behind a password.
func (l *Link) Protected() bool {
	return l.PasswordHash != nil && *l.PasswordHash != ""
}

// Expired reports whether the link's expiry time has passed.
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
