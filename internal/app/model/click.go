package model

import "time"

// Click is one recorded visit to a short link. Rows are append-only;
// they are never mutated and only removed when their link is deleted.
type Click struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LinkID    uint      `json:"linkId" gorm:"index;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"index;not null"`
	IP        string    `json:"ip" gorm:"size:64"`
	UserAgent string    `json:"userAgent" gorm:"type:text"`
	Referer   string    `json:"referer" gorm:"type:text"`
	Country   string    `json:"country" gorm:"size:64"`
	Device    string    `json:"device" gorm:"size:32"`
	Browser   string    `json:"browser" gorm:"size:32"`
}

// ClickEvent is the wire form published to NATS JetStream. The
// consumer turns it into a Click row plus a counter increment.
type ClickEvent struct {
	ID        string    `json:"id"`
	LinkID    uint      `json:"link_id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referer   string    `json:"referer"`
	Country   string    `json:"country"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.events"
	ClickConsumerName   = "click-recorder"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
