package model

import "time"

// User is an account that can own links. Admins additionally manage
// ad snippets and other users.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:128"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:128;not null"`
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	IsPremium    bool      `json:"isPremium" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
