package models

import "time"

const (
	AchievementFirstTask      = "first_task"
	AchievementSevenDayStreak = "seven_day_streak"
	AchievementHundredXP      = "hundred_xp"
	AchievementFirstGoal      = "first_goal"
)

type Achievement struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	UserID          uint      `gorm:"not null;uniqueIndex:uidx_achievement_user_type" json:"-"`
	AchievementType string    `gorm:"not null;uniqueIndex:uidx_achievement_user_type" json:"achievement_type"`
	EarnedAt        time.Time `gorm:"not null" json:"earned_at"`
}
