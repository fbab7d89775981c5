package models

import "time"

const (
	GoalStatusActive     = "active"
	GoalStatusInProgress = "in_progress"
	GoalStatusCompleted  = "completed"
	GoalStatusAbandoned  = "abandoned"

	DefaultGoalCategory = "personal"
)

type Goal struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `json:"description"`
	Category        string     `gorm:"not null;default:personal" json:"category"`
	Deadline        *time.Time `json:"deadline"`
	ProgressPercent int        `gorm:"not null;default:0" json:"progress_percent"`
	Status          string     `gorm:"not null;default:active" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func IsValidGoalStatus(status string) bool {
	switch status {
	case GoalStatusActive, GoalStatusInProgress, GoalStatusCompleted, GoalStatusAbandoned:
		return true
	default:
		return false
	}
}
