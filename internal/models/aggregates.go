package models

type XPBalance struct {
	XP    int64 `gorm:"column:xp" json:"xp"`
	Level int   `gorm:"column:level" json:"level"`
}

type LeaderboardEntry struct {
	Rank     int    `gorm:"-" json:"rank"`
	ID       uint   `gorm:"column:id" json:"id"`
	FullName string `gorm:"column:full_name" json:"full_name"`
	XP       int64  `gorm:"column:xp" json:"xp"`
	Level    int    `gorm:"column:level" json:"level"`
}

type HabitStats struct {
	TotalHabits       int64   `gorm:"column:total_habits" json:"total_habits"`
	AverageStreak     float64 `gorm:"column:avg_streak" json:"avg_streak"`
	BestStreakOverall int     `gorm:"column:best_streak_overall" json:"best_streak_overall"`
	ActiveStreaks     int64   `gorm:"column:active_streaks" json:"active_streaks"`
}

type GoalStats struct {
	TotalGoals      int64   `gorm:"column:total_goals" json:"total_goals"`
	CompletedGoals  int64   `gorm:"column:completed_goals" json:"completed_goals"`
	ActiveGoals     int64   `gorm:"column:active_goals" json:"active_goals"`
	AverageProgress float64 `gorm:"column:avg_progress" json:"avg_progress"`
}

type GoalConflict struct {
	Goal1ID    uint   `gorm:"column:goal1_id" json:"goal1_id"`
	Goal1Title string `gorm:"column:goal1_title" json:"goal1_title"`
	Goal2ID    uint   `gorm:"column:goal2_id" json:"goal2_id"`
	Goal2Title string `gorm:"column:goal2_title" json:"goal2_title"`
	Category   string `gorm:"column:category" json:"category"`
}

type TaskDashboardStats struct {
	TotalTasks        int64 `gorm:"column:total_tasks" json:"total_tasks"`
	CompletedTasks    int64 `gorm:"column:completed_tasks" json:"completed_tasks"`
	HighPriorityTasks int64 `gorm:"column:high_priority_tasks" json:"high_priority_tasks"`
	TodoCount         int64 `gorm:"column:todo_count" json:"todo_count"`
	InProgressCount   int64 `gorm:"column:in_progress_count" json:"in_progress_count"`
}

type FocusStats struct {
	TotalSessions     int64   `gorm:"column:total_sessions" json:"total_sessions"`
	CompletedSessions int64   `gorm:"column:completed_sessions" json:"completed_sessions"`
	TotalMinutes      int64   `gorm:"column:total_minutes" json:"total_minutes"`
	AverageDuration   float64 `gorm:"column:avg_duration" json:"avg_duration"`
	CompletionRate    float64 `gorm:"-" json:"completion_rate"`
}
