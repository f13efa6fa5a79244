package models

import "time"

type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Email           string     `gorm:"size:255;index" json:"email"`
	ParentName      string     `json:"parent_name"`
	BabyName        string     `json:"baby_name"`
	BabyBirthDate   *time.Time `json:"baby_birth_date"`
	ProfilePicture  string     `json:"profile_picture"`
	MilestoneAlerts bool       `gorm:"default:true" json:"milestone_alerts"`
	ReminderAlerts  bool       `gorm:"default:true" json:"reminder_alerts"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
