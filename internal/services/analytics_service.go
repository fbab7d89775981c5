package services

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/terraincognita07/ascend/internal/models"
)

const (
	completionRateWindowDays   = 30
	habitConsistencyWindowDays = 7
	defaultDailyFocusDays      = 7
	maxDailyFocusDays          = 90
	defaultGoalTrendDays       = 90
	maxGoalTrendDays           = 365
	defaultHeatmapWeeks        = 4
	maxHeatmapWeeks            = 12
	engagementWindowDays       = 30
	goalUrgentWithinDays       = 7
)

const (
	UrgencyUrgent   = "urgent"
	UrgencyOverdue  = "overdue"
	UrgencyOnTrack  = "on_track"
	UrgencyComplete = "complete"
)

type AnalyticsTaskReader interface {
	ListCreatedSince(userID uint, since time.Time) ([]models.Task, error)
	ListCompletedSince(userID uint, since time.Time) ([]models.Task, error)
	CountCompletedBetween(userID uint, from time.Time, to time.Time) (int64, error)
	CountByUser(userID uint) (int64, error)
}

type AnalyticsHabitReader interface {
	ListByUser(userID uint) ([]models.Habit, error)
	CountCompletedSince(userID uint, since time.Time) (int64, error)
}

type AnalyticsGoalReader interface {
	ListByUser(userID uint, status string) ([]models.Goal, error)
	ListCreatedSince(userID uint, since time.Time) ([]models.Goal, error)
}

type AnalyticsFocusReader interface {
	ListStartedSince(userID uint, since time.Time) ([]models.FocusSession, error)
}

type CompletionRate struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

type HabitConsistency struct {
	TotalHabits     int     `json:"total_habits"`
	CompletedRecent int     `json:"completed_recently"`
	Consistency     float64 `json:"consistency"`
}

type WeeklySummary struct {
	WeekStart       string `json:"week_start"`
	TasksCompleted  int64  `json:"tasks_completed"`
	HabitsCompleted int64  `json:"habits_completed"`
	FocusSessions   int    `json:"focus_sessions"`
	FocusMinutes    int    `json:"focus_minutes"`
}

type DailyFocus struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

type ProductiveTime struct {
	Hour     int    `json:"hour"`
	Period   string `json:"period"`
	Sessions int    `json:"sessions"`
}

type HabitPerformance struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Frequency          string  `json:"frequency"`
	StreakCount        int     `json:"streak_count"`
	BestStreak         int     `json:"best_streak"`
	MaxExpected        int     `json:"max_expected"`
	ConsistencyPercent float64 `json:"consistency_percent"`
}

type Dashboard struct {
	TaskCompletionRate CompletionRate     `json:"task_completion_rate"`
	HabitConsistency   HabitConsistency   `json:"habit_consistency"`
	WeeklySummary      WeeklySummary      `json:"weekly_summary"`
	MostProductiveTime *ProductiveTime    `json:"most_productive_time"`
	HabitPerformance   []HabitPerformance `json:"habit_performance"`
}

type GoalTrendPoint struct {
	Date           string `json:"date"`
	Completed      int    `json:"completed"`
	Total          int    `json:"total"`
	CompletionRate int    `json:"completion_rate"`
}

type GoalProgressEntry struct {
	ID                uint       `json:"id"`
	Title             string     `json:"title"`
	Category          string     `json:"category"`
	Status            string     `json:"status"`
	ProgressPercent   int        `json:"progress_percent"`
	Deadline          *time.Time `json:"deadline"`
	Urgency           string     `json:"urgency"`
	DaysUntilDeadline *int       `json:"days_until_deadline"`
}

// Heatmap counts completed tasks by local weekday (Sunday first) and hour.
type Heatmap struct {
	Weeks int        `json:"weeks"`
	Total int        `json:"total"`
	Grid  [7][24]int `json:"grid"`
}

type Engagement struct {
	TotalTasks          int64   `json:"total_tasks"`
	TotalHabits         int     `json:"total_habits"`
	TotalGoals          int     `json:"total_goals"`
	AvgTasksPerDay      float64 `json:"avg_tasks_per_day"`
	ActiveDaysLastMonth int     `json:"active_days_last_month"`
}

type AnalyticsService struct {
	tasks    AnalyticsTaskReader
	habits   AnalyticsHabitReader
	goals    AnalyticsGoalReader
	focus    AnalyticsFocusReader
	location *time.Location
}

func NewAnalyticsService(tasks AnalyticsTaskReader, habits AnalyticsHabitReader, goals AnalyticsGoalReader, focus AnalyticsFocusReader, location *time.Location) *AnalyticsService {
	if location == nil {
		location = time.UTC
	}
	return &AnalyticsService{tasks: tasks, habits: habits, goals: goals, focus: focus, location: location}
}

func (service *AnalyticsService) TaskCompletionRate(userID uint, now time.Time) (CompletionRate, error) {
	tasks, err := service.tasks.ListCreatedSince(userID, now.AddDate(0, 0, -completionRateWindowDays))
	if err != nil {
		return CompletionRate{}, err
	}
	completed := 0
	for _, task := range tasks {
		if task.Completed {
			completed++
		}
	}
	return CompletionRate{Total: len(tasks), Completed: completed, Rate: percentage(completed, len(tasks))}, nil
}

func (service *AnalyticsService) HabitConsistency(userID uint, now time.Time) (HabitConsistency, error) {
	habits, err := service.habits.ListByUser(userID)
	if err != nil {
		return HabitConsistency{}, err
	}
	since := DateAtLocation(now, service.location).AddDate(0, 0, -(habitConsistencyWindowDays - 1))
	recent := 0
	for _, habit := range habits {
		if habit.LastCompleted != nil && !habit.LastCompleted.Before(since) {
			recent++
		}
	}
	return HabitConsistency{
		TotalHabits:     len(habits),
		CompletedRecent: recent,
		Consistency:     percentage(recent, len(habits)),
	}, nil
}

func (service *AnalyticsService) WeeklySummary(userID uint, now time.Time) (WeeklySummary, error) {
	weekStart := WeekStart(now, service.location)
	weekEnd := weekStart.AddDate(0, 0, 7)

	tasksCompleted, err := service.tasks.CountCompletedBetween(userID, weekStart, weekEnd)
	if err != nil {
		return WeeklySummary{}, err
	}
	habitsCompleted, err := service.habits.CountCompletedSince(userID, weekStart)
	if err != nil {
		return WeeklySummary{}, err
	}
	sessions, err := service.focus.ListStartedSince(userID, weekStart)
	if err != nil {
		return WeeklySummary{}, err
	}

	minutes := 0
	for _, session := range sessions {
		minutes += session.DurationMinutes
	}
	return WeeklySummary{
		WeekStart:       weekStart.Format("2006-01-02"),
		TasksCompleted:  tasksCompleted,
		HabitsCompleted: habitsCompleted,
		FocusSessions:   len(sessions),
		FocusMinutes:    minutes,
	}, nil
}

// DailyFocusMinutes returns one entry per local day, oldest first, with days
// lacking sessions reported as zero.
func (service *AnalyticsService) DailyFocusMinutes(userID uint, now time.Time, days int) ([]DailyFocus, error) {
	if days <= 0 || days > maxDailyFocusDays {
		days = defaultDailyFocusDays
	}
	firstDay := DateAtLocation(now, service.location).AddDate(0, 0, -(days - 1))
	sessions, err := service.focus.ListStartedSince(userID, firstDay)
	if err != nil {
		return nil, err
	}

	minutesByDay := make(map[string]int, days)
	for _, session := range sessions {
		minutesByDay[DayKey(session.StartedAt, service.location)] += session.DurationMinutes
	}

	series := make([]DailyFocus, 0, days)
	for offset := 0; offset < days; offset++ {
		key := firstDay.AddDate(0, 0, offset).Format("2006-01-02")
		series = append(series, DailyFocus{Date: key, Minutes: minutesByDay[key]})
	}
	return series, nil
}

// MostProductiveTime picks the local start hour with the most completed
// sessions over the last 30 days. It returns nil when there are none.
func (service *AnalyticsService) MostProductiveTime(userID uint, now time.Time) (*ProductiveTime, error) {
	sessions, err := service.focus.ListStartedSince(userID, now.AddDate(0, 0, -completionRateWindowDays))
	if err != nil {
		return nil, err
	}

	var counts [24]int
	for _, session := range sessions {
		if session.WasCompleted {
			counts[session.StartedAt.In(service.location).Hour()]++
		}
	}
	bestHour := -1
	for hour, count := range counts {
		if count > 0 && (bestHour < 0 || count > counts[bestHour]) {
			bestHour = hour
		}
	}
	if bestHour < 0 {
		return nil, nil
	}
	return &ProductiveTime{Hour: bestHour, Period: dayPeriod(bestHour), Sessions: counts[bestHour]}, nil
}

func (service *AnalyticsService) Dashboard(userID uint, now time.Time) (Dashboard, error) {
	var dashboard Dashboard
	var err error
	if dashboard.TaskCompletionRate, err = service.TaskCompletionRate(userID, now); err != nil {
		return Dashboard{}, err
	}
	if dashboard.HabitConsistency, err = service.HabitConsistency(userID, now); err != nil {
		return Dashboard{}, err
	}
	if dashboard.WeeklySummary, err = service.WeeklySummary(userID, now); err != nil {
		return Dashboard{}, err
	}
	if dashboard.MostProductiveTime, err = service.MostProductiveTime(userID, now); err != nil {
		return Dashboard{}, err
	}
	if dashboard.HabitPerformance, err = service.HabitsComparison(userID); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

// GoalTrends groups goals created in the window by local creation day.
func (service *AnalyticsService) GoalTrends(userID uint, now time.Time, days int) ([]GoalTrendPoint, error) {
	if days <= 0 || days > maxGoalTrendDays {
		days = defaultGoalTrendDays
	}
	goals, err := service.goals.ListCreatedSince(userID, DateAtLocation(now, service.location).AddDate(0, 0, -(days-1)))
	if err != nil {
		return nil, err
	}

	points := make([]GoalTrendPoint, 0)
	index := make(map[string]int)
	for _, goal := range goals {
		key := DayKey(goal.CreatedAt, service.location)
		position, ok := index[key]
		if !ok {
			position = len(points)
			index[key] = position
			points = append(points, GoalTrendPoint{Date: key})
		}
		points[position].Total++
		if goal.Status == models.GoalStatusCompleted {
			points[position].Completed++
		}
	}
	slices.SortFunc(points, func(left, right GoalTrendPoint) int {
		return cmp.Compare(left.Date, right.Date)
	})
	for position := range points {
		points[position].CompletionRate = int(math.Round(float64(points[position].Completed) / float64(points[position].Total) * 100))
	}
	return points, nil
}

// GoalProgress lists every goal with its urgency: urgent first, then
// overdue, on track and complete, each by nearest deadline.
func (service *AnalyticsService) GoalProgress(userID uint, now time.Time) ([]GoalProgressEntry, error) {
	goals, err := service.goals.ListByUser(userID, "")
	if err != nil {
		return nil, err
	}

	entries := make([]GoalProgressEntry, 0, len(goals))
	for _, goal := range goals {
		entry := GoalProgressEntry{
			ID:              goal.ID,
			Title:           goal.Title,
			Category:        goal.Category,
			Status:          goal.Status,
			ProgressPercent: goal.ProgressPercent,
			Deadline:        goal.Deadline,
			Urgency:         GoalUrgency(goal, now),
		}
		if goal.Deadline != nil {
			days := int(math.Ceil(goal.Deadline.Sub(now).Hours() / 24))
			entry.DaysUntilDeadline = &days
		}
		entries = append(entries, entry)
	}
	slices.SortStableFunc(entries, func(left, right GoalProgressEntry) int {
		if byUrgency := cmp.Compare(urgencyRank(left.Urgency), urgencyRank(right.Urgency)); byUrgency != 0 {
			return byUrgency
		}
		if byDeadline := compareDeadlines(left.Deadline, right.Deadline); byDeadline != 0 {
			return byDeadline
		}
		return cmp.Compare(left.ID, right.ID)
	})
	return entries, nil
}

func GoalUrgency(goal models.Goal, now time.Time) string {
	switch {
	case goal.Status == models.GoalStatusCompleted:
		return UrgencyComplete
	case goal.Deadline == nil:
		return UrgencyOnTrack
	case goal.Deadline.Before(now):
		return UrgencyOverdue
	case goal.Deadline.Before(now.AddDate(0, 0, goalUrgentWithinDays)):
		return UrgencyUrgent
	default:
		return UrgencyOnTrack
	}
}

func urgencyRank(urgency string) int {
	switch urgency {
	case UrgencyUrgent:
		return 0
	case UrgencyOverdue:
		return 1
	case UrgencyOnTrack:
		return 2
	default:
		return 3
	}
}

func (service *AnalyticsService) ProductivityHeatmap(userID uint, now time.Time, weeks int) (Heatmap, error) {
	if weeks <= 0 || weeks > maxHeatmapWeeks {
		weeks = defaultHeatmapWeeks
	}
	tasks, err := service.tasks.ListCompletedSince(userID, now.AddDate(0, 0, -7*weeks))
	if err != nil {
		return Heatmap{}, err
	}

	heatmap := Heatmap{Weeks: weeks}
	for _, task := range tasks {
		if task.CompletedAt == nil {
			continue
		}
		local := task.CompletedAt.In(service.location)
		heatmap.Grid[local.Weekday()][local.Hour()]++
		heatmap.Total++
	}
	return heatmap, nil
}

func (service *AnalyticsService) Engagement(userID uint, now time.Time) (Engagement, error) {
	totalTasks, err := service.tasks.CountByUser(userID)
	if err != nil {
		return Engagement{}, err
	}
	habits, err := service.habits.ListByUser(userID)
	if err != nil {
		return Engagement{}, err
	}
	goals, err := service.goals.ListByUser(userID, "")
	if err != nil {
		return Engagement{}, err
	}
	windowStart := now.AddDate(0, 0, -engagementWindowDays)
	created, err := service.tasks.ListCreatedSince(userID, windowStart)
	if err != nil {
		return Engagement{}, err
	}
	completed, err := service.tasks.ListCompletedSince(userID, windowStart)
	if err != nil {
		return Engagement{}, err
	}

	creationDays := make(map[string]bool)
	for _, task := range created {
		creationDays[DayKey(task.CreatedAt, service.location)] = true
	}
	activeDays := make(map[string]bool)
	for _, task := range completed {
		if task.CompletedAt != nil {
			activeDays[DayKey(*task.CompletedAt, service.location)] = true
		}
	}

	engagement := Engagement{
		TotalTasks:          totalTasks,
		TotalHabits:         len(habits),
		TotalGoals:          len(goals),
		ActiveDaysLastMonth: len(activeDays),
	}
	if len(creationDays) > 0 {
		engagement.AvgTasksPerDay = roundTo(float64(len(created))/float64(len(creationDays)), 2)
	}
	return engagement, nil
}

// HabitsComparison scores each habit's streak against what its frequency
// could reach in a week, best first.
func (service *AnalyticsService) HabitsComparison(userID uint) ([]HabitPerformance, error) {
	habits, err := service.habits.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	performance := make([]HabitPerformance, 0, len(habits))
	for _, habit := range habits {
		expected := expectedPerWeek(habit.Frequency)
		performance = append(performance, HabitPerformance{
			ID:                 habit.ID,
			Name:               habit.Name,
			Frequency:          habit.Frequency,
			StreakCount:        habit.StreakCount,
			BestStreak:         habit.BestStreak,
			MaxExpected:        expected,
			ConsistencyPercent: roundTo(float64(habit.StreakCount)/float64(expected)*100, 2),
		})
	}
	slices.SortStableFunc(performance, func(left, right HabitPerformance) int {
		if byPercent := cmp.Compare(right.ConsistencyPercent, left.ConsistencyPercent); byPercent != 0 {
			return byPercent
		}
		return cmp.Compare(left.ID, right.ID)
	})
	return performance, nil
}

func expectedPerWeek(frequency string) int {
	if frequency == models.FrequencyDaily {
		return 7
	}
	return 1
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

func dayPeriod(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func percentage(part int, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}
