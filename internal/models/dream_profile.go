package models

import "time"

type DreamProfile struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	VisionStatement    string    `json:"vision_statement"`
	CoreValues         string    `json:"core_values"`
	ThreeYearGoal      string    `json:"three_year_goal"`
	IdentityStatements []string  `gorm:"serializer:json" json:"identity_statements"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Reflection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"not null" json:"content"`
	Mood      string    `json:"mood"`
	Insights  string    `json:"insights"`
	CreatedAt time.Time `json:"created_at"`
}
