package models

import "time"

type FocusSession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	TaskID          *uint      `json:"task_id"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	WasCompleted    bool       `gorm:"not null;default:false" json:"was_completed"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
}

func (session FocusSession) IsActive() bool {
	return session.EndedAt == nil
}
