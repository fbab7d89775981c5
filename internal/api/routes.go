package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)

	me := api.Group("/me", handler.AuthRequired)
	me.Get("", handler.Me)
	me.Post("/password", handler.ChangePassword)
	me.Delete("", handler.DeleteAccount)

	tasks := api.Group("/tasks", handler.AuthRequired)
	tasks.Get("", handler.ListTasks)
	tasks.Post("", handler.CreateTask)
	tasks.Get("/stats", handler.TaskDashboardStats)
	tasks.Get("/ai/schedule", handler.SmartSchedule)
	tasks.Get("/:id", handler.GetTask)
	tasks.Patch("/:id", handler.UpdateTask)
	tasks.Put("/:id", handler.UpdateTask)
	tasks.Delete("/:id", handler.DeleteTask)

	habits := api.Group("/habits", handler.AuthRequired)
	habits.Get("", handler.ListHabits)
	habits.Post("", handler.CreateHabit)
	habits.Get("/due-today", handler.HabitsDueToday)
	habits.Get("/summary", handler.HabitStreakSummary)
	habits.Get("/stats", handler.HabitStats)
	habits.Get("/consistency", handler.HabitWeeklyConsistency)
	habits.Get("/:id", handler.GetHabit)
	habits.Patch("/:id", handler.UpdateHabit)
	habits.Put("/:id", handler.UpdateHabit)
	habits.Delete("/:id", handler.DeleteHabit)
	habits.Post("/:id/complete", handler.CompleteHabit)
	habits.Post("/:id/reset", handler.ResetHabitStreak)

	goals := api.Group("/goals", handler.AuthRequired)
	goals.Get("", handler.ListGoals)
	goals.Post("", handler.CreateGoal)
	goals.Get("/conflicts", handler.GoalConflicts)
	goals.Get("/stats", handler.GoalStats)
	goals.Get("/:id", handler.GetGoal)
	goals.Patch("/:id", handler.UpdateGoal)
	goals.Put("/:id", handler.UpdateGoal)
	goals.Delete("/:id", handler.DeleteGoal)
	goals.Get("/:id/probability", handler.GoalProbability)
	goals.Get("/:id/habits", handler.GoalHabits)
	goals.Post("/:id/habits", handler.LinkGoalHabit)

	focus := api.Group("/focus", handler.AuthRequired)
	focus.Post("/start", handler.StartFocusSession)
	focus.Post("/:id/end", handler.EndFocusSession)
	focus.Get("/active", handler.ActiveFocusSession)
	focus.Get("/history", handler.FocusHistory)
	focus.Get("/stats", handler.FocusStats)
	focus.Get("/streak", handler.FocusStreak)
	focus.Get("/burnout", handler.DetectBurnout)
	focus.Get("/burnout/recovery", handler.BurnoutRecovery)

	gamification := api.Group("/gamification", handler.AuthRequired)
	gamification.Get("/stats", handler.GamificationStats)
	gamification.Get("/achievements", handler.ListAchievements)
	gamification.Post("/achievements/check", handler.CheckAchievements)
	gamification.Get("/leaderboard", handler.Leaderboard)
	gamification.Get("/rank", handler.UserRank)

	analytics := api.Group("/analytics", handler.AuthRequired)
	analytics.Get("/dashboard", handler.AnalyticsDashboard)
	analytics.Get("/completion-rate", handler.TaskCompletionRate)
	analytics.Get("/habit-consistency", handler.HabitConsistency)
	analytics.Get("/weekly-summary", handler.WeeklySummary)
	analytics.Get("/daily-focus", handler.DailyFocusMinutes)
	analytics.Get("/productive-time", handler.MostProductiveTime)
	analytics.Get("/goal-trends", handler.GoalTrends)
	analytics.Get("/goal-progress", handler.GoalProgress)
	analytics.Get("/productivity-heatmap", handler.ProductivityHeatmap)
	analytics.Get("/engagement", handler.Engagement)
	analytics.Get("/habits-comparison", handler.HabitsComparison)

	dream := api.Group("/dream-me", handler.AuthRequired)
	dream.Get("/profile", handler.GetDreamProfile)
	dream.Put("/profile", handler.UpsertDreamProfile)
	dream.Get("/alignment", handler.DreamAlignment)
	dream.Get("/gaps", handler.DreamGaps)
	dream.Get("/reflections", handler.ListReflections)
	dream.Post("/reflections", handler.RecordReflection)
	dream.Get("/milestones", handler.DreamMilestones)
	dream.Get("/insights", handler.DreamInsights)

	assistant := api.Group("/assistant", handler.AuthRequired)
	assistant.Post("/tasks/:id/breakdown", handler.BreakDownTask)
	assistant.Post("/goals/:id/steps", handler.SuggestGoalSteps)
	assistant.Get("/motivation", handler.MotivationalMessage)
	assistant.Get("/schedule", handler.SmartSchedule)
	assistant.Get("/procrastination", handler.DetectProcrastination)
	assistant.Post("/estimate-time", handler.EstimateTaskTime)
	assistant.Post("/reflection", handler.WeeklyReflection)
	assistant.Get("/suggestions", handler.CoachSuggestions)
	assistant.Post("/semester-plan", handler.SemesterPlan)
	assistant.Post("/falling-behind", handler.AnalyzeFallingBehind)
	assistant.Post("/gap-analysis", handler.AnalyzeMetricGap)
}
