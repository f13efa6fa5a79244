package models

import "time"

type Status string

const (
	StatusToTry    Status = "TO_TRY"
	StatusTrying   Status = "TRYING"
	StatusSafe     Status = "SAFE"
	StatusReaction Status = "REACTION"
)

// Tried reports whether the status counts towards the tried-food total.
func (s Status) Tried() bool {
	return s == StatusSafe || s == StatusTrying
}

// FoodState is the introduction progress of one food for one user.
// It is created lazily by the first log for the (user, food) pair.
type FoodState struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_food_states_user_food,priority:1" json:"user_id"`
	FoodID        uint       `gorm:"not null;uniqueIndex:idx_food_states_user_food,priority:2" json:"food_id"`
	Status        Status     `gorm:"size:16;not null;default:'TO_TRY'" json:"status"`
	ExposureCount int        `gorm:"not null;default:0" json:"exposure_count"`
	LastEaten     *time.Time `json:"last_eaten"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
