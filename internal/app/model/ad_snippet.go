package model

import "time"

// AdSnippet is an admin-managed HTML fragment embedded into the
// interstitial page. The HTML is stored verbatim; admins are trusted.
type AdSnippet struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:128;uniqueIndex;not null"`
	HTML      string    `json:"html" gorm:"type:text;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
