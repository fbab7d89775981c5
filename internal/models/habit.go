package models

import "time"

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

type Habit struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;index" json:"user_id"`
	Name          string     `gorm:"not null" json:"name"`
	Description   string     `json:"description"`
	Frequency     string     `gorm:"not null;default:daily" json:"frequency"`
	StreakCount   int        `gorm:"not null;default:0" json:"streak_count"`
	BestStreak    int        `gorm:"not null;default:0" json:"best_streak"`
	LastCompleted *time.Time `json:"last_completed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type HabitGoalLink struct {
	HabitID   uint      `gorm:"primaryKey" json:"habit_id"`
	GoalID    uint      `gorm:"primaryKey" json:"goal_id"`
	CreatedAt time.Time `json:"created_at"`
}

func IsValidHabitFrequency(frequency string) bool {
	switch frequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}
