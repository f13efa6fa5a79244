package models

import "time"

const (
	SeverityNone   = 0
	SeverityMild   = 1
	SeveritySevere = 2
)

// FoodLog is one feeding event. Severity, notes and CreatedAt may be edited later.
type FoodLog struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserID           uint      `gorm:"index;not null" json:"user_id"`
	StateID          string    `gorm:"size:36;index;not null" json:"state_id"`
	ReactionSeverity int       `gorm:"not null;default:0" json:"reaction_severity"`
	Notes            string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}
