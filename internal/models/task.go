package models

import "time"

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	DefaultTaskCategory = "general"
)

type Subtask struct {
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
}

type TaskBreakdown struct {
	Subtasks          []Subtask `json:"subtasks"`
	EstimatedDuration int       `json:"estimated_duration"`
	AIGenerated       bool      `json:"ai_generated"`
}

type Task struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `json:"description"`
	DueDate         *time.Time     `json:"due_date"`
	Priority        string         `gorm:"not null;default:medium" json:"priority"`
	Category        string         `gorm:"not null;default:general" json:"category"`
	Status          string         `gorm:"not null;default:todo" json:"status"`
	Completed       bool           `gorm:"not null;default:false" json:"completed"`
	CompletedAt     *time.Time     `json:"completed_at"`
	DurationMinutes *int           `json:"duration_minutes"`
	AIBreakdown     *TaskBreakdown `gorm:"column:ai_breakdown;serializer:json" json:"ai_breakdown,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type TaskFilter struct {
	Status    string
	Priority  string
	Completed *bool
}

func IsValidTaskPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}
