package models

import "time"

const (
	NotificationMilestone   = "milestone"
	NotificationMaintenance = "maintenance"
)

// Notification records every message handed to the push gateway.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Type        string    `gorm:"size:32" json:"notification_type"`
	ReferenceID string    `gorm:"size:64" json:"reference_id"`
	Title       string    `json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	Delivered   bool      `json:"delivered"`
	CreatedAt   time.Time `json:"created_at"`
}
