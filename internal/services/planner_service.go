package services

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/metrics"
	"github.com/terraincognita07/ascend/internal/models"
)

const (
	defaultAvailableHours   = 8
	maxAvailableHours       = 24
	defaultTaskMinutes      = 30
	estimateHistoryDays     = 90
	historicalEstimateShare = 0.7
	pendingTaskThreshold    = 5
	lowCompletionThreshold  = 50
	strongWeekThreshold     = 80
	largeMetricGapThreshold = 50
	maxPlanMilestones       = 8
)

const (
	ProcrastinationLow    = "low"
	ProcrastinationMedium = "medium"
	ProcrastinationHigh   = "high"
)

var baseTaskMinutes = map[string]int{
	"homework": 45,
	"project":  120,
	"reading":  30,
	"coding":   90,
	"studying": 60,
	"misc":     30,
}

var complexityMultipliers = map[string]float64{
	"simple":      0.5,
	"medium":      1,
	"complex":     1.5,
	"verycomplex": 2,
}

var priorityRank = map[string]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

type PlannerTaskReader interface {
	ListByUser(userID uint, filter models.TaskFilter) ([]models.Task, error)
	ListCompletedSince(userID uint, since time.Time) ([]models.Task, error)
}

type PlannerHabitReader interface {
	MaxStreak(userID uint) (int, error)
}

type PlannerFocusReader interface {
	ListStartedSince(userID uint, since time.Time) ([]models.FocusSession, error)
}

type ScheduledTask struct {
	TaskID           uint       `json:"task_id"`
	Title            string     `json:"title"`
	Priority         string     `json:"priority"`
	DueDate          *time.Time `json:"due_date"`
	EstimatedMinutes int        `json:"estimated_minutes"`
}

type Schedule struct {
	Tasks            []ScheduledTask `json:"schedule"`
	ScheduledMinutes int             `json:"scheduled_minutes"`
	AvailableMinutes int             `json:"available_minutes"`
	Optimized        bool            `json:"optimized"`
	AIGenerated      bool            `json:"ai_generated"`
}

type ProcrastinationScore struct {
	MissedToday int `json:"missed_today"`
	Overdue     int `json:"overdue"`
	Streak      int `json:"streak"`
}

type ProcrastinationReport struct {
	Level       string               `json:"level"`
	Reasoning   string               `json:"reasoning"`
	Score       ProcrastinationScore `json:"score"`
	AIGenerated bool                 `json:"ai_generated"`
}

type EstimateInput struct {
	TaskType   string `json:"task_type"`
	Complexity string `json:"complexity"`
}

type TimeEstimate struct {
	EstimatedMinutes int    `json:"estimated_minutes"`
	Reasoning        string `json:"reasoning"`
	SampleSize       int    `json:"sample_size"`
	AIGenerated      bool   `json:"ai_generated"`
}

type WeeklyReflectionInput struct {
	TasksCompleted *int     `json:"tasks_completed"`
	TasksMissed    *int     `json:"tasks_missed"`
	HabitsTracked  int      `json:"habits_tracked"`
	SkillsImproved []string `json:"skills_improved"`
}

type WeeklyReflection struct {
	CompletionRate      int      `json:"completion_rate"`
	Insights            []string `json:"insights"`
	Recommendation      string   `json:"recommendation"`
	MotivationalMessage string   `json:"motivational_message"`
	AIGenerated         bool     `json:"ai_generated"`
}

type CoachContext struct {
	PendingTasks   int      `json:"pending_tasks"`
	CompletionRate *float64 `json:"completion_rate"`
	StreakDays     int      `json:"streak_days"`
	FocusMinutes   int      `json:"focus_minutes_today"`
}

type CoachSuggestions struct {
	Suggestions []string     `json:"suggestions"`
	Action      string       `json:"action"`
	Context     CoachContext `json:"context"`
	AIGenerated bool         `json:"ai_generated"`
}

type SemesterPlanInput struct {
	Goal        string `json:"goal"`
	Deadline    string `json:"deadline"`
	CurrentDate string `json:"current_date"`
}

type PlanMilestone struct {
	Week      int      `json:"week"`
	Milestone string   `json:"milestone"`
	Tasks     []string `json:"tasks"`
	Reasoning string   `json:"reasoning"`
}

type SemesterPlan struct {
	DaysLeft    int             `json:"days_left"`
	Plan        []PlanMilestone `json:"plan"`
	AIGenerated bool            `json:"ai_generated"`
}

type FallingBehindInput struct {
	MissedTasks    *int     `json:"missed_tasks"`
	CompletionRate *float64 `json:"completion_rate"`
	Patterns       []string `json:"failure_patterns"`
}

type FallingBehindAnalysis struct {
	Analysis    string `json:"analysis"`
	AIGenerated bool   `json:"ai_generated"`
}

type MetricGapInput struct {
	Current map[string]float64 `json:"current_metrics"`
	Dream   map[string]float64 `json:"dream_metrics"`
}

type MetricGap struct {
	Current       float64 `json:"current"`
	Dream         float64 `json:"dream"`
	GapPercentage int     `json:"gap_percentage"`
}

type MetricGapReport struct {
	Gaps        map[string]MetricGap `json:"gaps"`
	AverageGap  int                  `json:"average_gap"`
	Insight     string               `json:"insight"`
	AIGenerated bool                 `json:"ai_generated"`
}

const fallingBehindFallback = "Try breaking down tasks into smaller steps"

// PlannerService holds the coaching helpers. Apart from SemesterPlan and
// AnalyzeFallingBehind they are plain rules over the user's own data.
type PlannerService struct {
	generator TextGenerator
	tasks     PlannerTaskReader
	habits    PlannerHabitReader
	focus     PlannerFocusReader
	location  *time.Location
	logger    *log.Logger
}

func NewPlannerService(generator TextGenerator, tasks PlannerTaskReader, habits PlannerHabitReader, focus PlannerFocusReader, location *time.Location, logger *log.Logger) *PlannerService {
	if location == nil {
		location = time.UTC
	}
	return &PlannerService{
		generator: generator,
		tasks:     tasks,
		habits:    habits,
		focus:     focus,
		location:  location,
		logger:    logging.OrDiscard(logger),
	}
}

// SmartSchedule fits the user's open tasks into availableHours. Zero means
// the default working day.
func (service *PlannerService) SmartSchedule(userID uint, availableHours float64) (Schedule, error) {
	if availableHours < 0 || availableHours > maxAvailableHours || math.IsNaN(availableHours) {
		return Schedule{}, ErrInvalidScheduleHours
	}
	if availableHours == 0 {
		availableHours = defaultAvailableHours
	}
	completed := false
	tasks, err := service.tasks.ListByUser(userID, models.TaskFilter{Completed: &completed})
	if err != nil {
		return Schedule{}, err
	}

	budget := int(math.Round(availableHours * 60))
	scheduled := ScheduleTasks(tasks, budget)
	used := 0
	for _, task := range scheduled {
		used += task.EstimatedMinutes
	}
	return Schedule{
		Tasks:            scheduled,
		ScheduledMinutes: used,
		AvailableMinutes: budget,
		Optimized:        true,
	}, nil
}

// ScheduleTasks orders tasks by priority then due date, undated last, and
// keeps every task that still fits in the remaining minutes.
func ScheduleTasks(tasks []models.Task, availableMinutes int) []ScheduledTask {
	ordered := slices.Clone(tasks)
	slices.SortStableFunc(ordered, func(left, right models.Task) int {
		if byPriority := cmp.Compare(rankPriority(left.Priority), rankPriority(right.Priority)); byPriority != 0 {
			return byPriority
		}
		return compareDeadlines(left.DueDate, right.DueDate)
	})

	scheduled := make([]ScheduledTask, 0, len(ordered))
	used := 0
	for _, task := range ordered {
		minutes := taskEstimateMinutes(task)
		if used+minutes > availableMinutes {
			continue
		}
		used += minutes
		scheduled = append(scheduled, ScheduledTask{
			TaskID:           task.ID,
			Title:            task.Title,
			Priority:         task.Priority,
			DueDate:          task.DueDate,
			EstimatedMinutes: minutes,
		})
	}
	return scheduled
}

func rankPriority(priority string) int {
	if rank, ok := priorityRank[priority]; ok {
		return rank
	}
	return len(priorityRank)
}

func compareDeadlines(left *time.Time, right *time.Time) int {
	switch {
	case left == nil && right == nil:
		return 0
	case left == nil:
		return 1
	case right == nil:
		return -1
	default:
		return left.Compare(*right)
	}
}

func taskEstimateMinutes(task models.Task) int {
	if task.AIBreakdown != nil && task.AIBreakdown.EstimatedDuration > 0 {
		return task.AIBreakdown.EstimatedDuration
	}
	if task.DurationMinutes != nil && *task.DurationMinutes > 0 {
		return *task.DurationMinutes
	}
	return defaultTaskMinutes
}

func (service *PlannerService) DetectProcrastination(userID uint, now time.Time) (ProcrastinationReport, error) {
	completed := false
	tasks, err := service.tasks.ListByUser(userID, models.TaskFilter{Completed: &completed})
	if err != nil {
		return ProcrastinationReport{}, err
	}
	streak, err := service.habits.MaxStreak(userID)
	if err != nil {
		return ProcrastinationReport{}, err
	}

	today := DateAtLocation(now, service.location)
	score := ProcrastinationScore{Streak: streak}
	for _, task := range tasks {
		switch {
		case task.DueDate == nil:
		case task.DueDate.Before(today):
			score.Overdue++
		case task.DueDate.Before(now):
			score.MissedToday++
		}
	}

	level, reasoning := ClassifyProcrastination(score)
	return ProcrastinationReport{Level: level, Reasoning: reasoning, Score: score}, nil
}

// ClassifyProcrastination treats several overdue tasks or more than one
// missed today as high, and any miss or a broken streak as medium.
func ClassifyProcrastination(score ProcrastinationScore) (string, string) {
	switch {
	case score.Overdue > 2 || score.MissedToday > 1:
		return ProcrastinationHigh, "High procrastination detected. You have overdue tasks."
	case score.MissedToday > 0 || score.Streak == 0:
		return ProcrastinationMedium, "Some procrastination. Check your habits."
	default:
		return ProcrastinationLow, "You're on track! Keep it up."
	}
}

// EstimateTaskTime blends the user's recorded durations for the task type
// with the base table scaled by complexity.
func (service *PlannerService) EstimateTaskTime(userID uint, input EstimateInput, now time.Time) (TimeEstimate, error) {
	taskType := strings.ToLower(strings.TrimSpace(input.TaskType))
	if taskType == "" {
		return TimeEstimate{}, ErrInvalidEstimate
	}
	complexity := strings.TrimSpace(input.Complexity)
	if complexity == "" {
		complexity = "medium"
	}

	completedTasks, err := service.tasks.ListCompletedSince(userID, now.AddDate(0, 0, -estimateHistoryDays))
	if err != nil {
		return TimeEstimate{}, err
	}
	history := make([]int, 0)
	for _, task := range completedTasks {
		if strings.EqualFold(task.Category, taskType) && task.DurationMinutes != nil && *task.DurationMinutes > 0 {
			history = append(history, *task.DurationMinutes)
		}
	}

	return TimeEstimate{
		EstimatedMinutes: EstimateMinutes(taskType, complexity, history),
		Reasoning:        fmt.Sprintf("%s + %s complexity", taskType, complexity),
		SampleSize:       len(history),
	}, nil
}

func EstimateMinutes(taskType string, complexity string, history []int) int {
	base, ok := baseTaskMinutes[strings.ToLower(taskType)]
	if !ok {
		base = defaultTaskMinutes
	}
	multiplier, ok := complexityMultipliers[strings.ToLower(complexity)]
	if !ok {
		multiplier = 1
	}

	average := float64(base)
	if len(history) > 0 {
		total := 0
		for _, minutes := range history {
			total += minutes
		}
		average = float64(total) / float64(len(history))
	}
	return int(math.Round(average*historicalEstimateShare + float64(base)*multiplier*(1-historicalEstimateShare)))
}

func BuildWeeklyReflection(input WeeklyReflectionInput) (WeeklyReflection, error) {
	if input.TasksCompleted == nil || input.TasksMissed == nil || *input.TasksCompleted < 0 || *input.TasksMissed < 0 || input.HabitsTracked < 0 {
		return WeeklyReflection{}, ErrInvalidWeeklyCounts
	}
	completed, missed := *input.TasksCompleted, *input.TasksMissed
	rate := 0
	if total := completed + missed; total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}

	skills := normalizeStatements(input.SkillsImproved)
	skillsLine := "Focus on consistency"
	if len(skills) > 0 {
		skillsLine = "Improved: " + strings.Join(skills, ", ")
	}
	reflection := WeeklyReflection{
		CompletionRate: rate,
		Insights: []string{
			fmt.Sprintf("You completed %d tasks (%d%% completion rate)", completed, rate),
			fmt.Sprintf("You maintained %d habits this week", input.HabitsTracked),
			skillsLine,
		},
		Recommendation:      "Focus on completing fewer, high-priority tasks",
		MotivationalMessage: "Great effort! Keep going!",
	}
	if rate > strongWeekThreshold {
		reflection.Recommendation = "Challenge yourself with more tasks"
		reflection.MotivationalMessage = "Crushing it!"
	}
	return reflection, nil
}

// Suggestions builds nudges from the user's open tasks, best habit streak
// and focus minutes logged today.
func (service *PlannerService) Suggestions(userID uint, now time.Time) (CoachSuggestions, error) {
	tasks, err := service.tasks.ListByUser(userID, models.TaskFilter{})
	if err != nil {
		return CoachSuggestions{}, err
	}
	streak, err := service.habits.MaxStreak(userID)
	if err != nil {
		return CoachSuggestions{}, err
	}
	sessions, err := service.focus.ListStartedSince(userID, DateAtLocation(now, service.location))
	if err != nil {
		return CoachSuggestions{}, err
	}

	coach := CoachContext{StreakDays: streak}
	completed := 0
	for _, task := range tasks {
		if task.Completed {
			completed++
		} else {
			coach.PendingTasks++
		}
	}
	if len(tasks) > 0 {
		rate := percentage(completed, len(tasks))
		coach.CompletionRate = &rate
	}
	for _, session := range sessions {
		coach.FocusMinutes += session.DurationMinutes
	}

	return CoachSuggestions{Suggestions: SuggestionsFor(coach), Action: "CONTINUE", Context: coach}, nil
}

func SuggestionsFor(coach CoachContext) []string {
	suggestions := make([]string, 0, 4)
	if coach.PendingTasks > pendingTaskThreshold {
		suggestions = append(suggestions, fmt.Sprintf("You have %d tasks. Start with the highest priority.", coach.PendingTasks))
	}
	if coach.StreakDays > 0 {
		suggestions = append(suggestions, fmt.Sprintf("You have a %d-day streak! Keep it going!", coach.StreakDays))
	}
	if coach.CompletionRate != nil && *coach.CompletionRate < lowCompletionThreshold {
		suggestions = append(suggestions, "Try breaking tasks into smaller chunks.")
	}
	if coach.FocusMinutes == 0 {
		suggestions = append(suggestions, "Start a focus session to boost productivity.")
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, "You're all set! Great job today.")
	}
	return suggestions
}

// SemesterPlan asks the generator for weekly milestones toward a deadline.
// Without a usable answer the plan is empty and flagged as not generated.
func (service *PlannerService) SemesterPlan(ctx context.Context, input SemesterPlanInput, now time.Time) (SemesterPlan, error) {
	goal := strings.TrimSpace(input.Goal)
	deadline, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(input.Deadline), service.location)
	if goal == "" || err != nil {
		return SemesterPlan{}, ErrInvalidPlanRequest
	}
	current := now
	if raw := strings.TrimSpace(input.CurrentDate); raw != "" {
		current, err = time.ParseInLocation("2006-01-02", raw, service.location)
		if err != nil {
			return SemesterPlan{}, ErrInvalidPlanRequest
		}
	}

	result := SemesterPlan{DaysLeft: CalendarDaysBetween(current, deadline, service.location), Plan: []PlanMilestone{}}
	plan, err := service.generatePlan(ctx, goal, result.DaysLeft)
	if err != nil {
		metrics.TextGenRequests.WithLabelValues("fallback").Inc()
		service.logger.Warn("semester plan fell back", "err", err)
		return result, nil
	}
	result.Plan = plan
	result.AIGenerated = true
	return result, nil
}

func (service *PlannerService) generatePlan(ctx context.Context, goal string, daysLeft int) ([]PlanMilestone, error) {
	if service.generator == nil {
		return nil, fmt.Errorf("no text generator")
	}
	text, err := service.generator.Generate(ctx, semesterPlanPrompt(goal, daysLeft))
	if err != nil {
		return nil, err
	}
	var milestones []PlanMilestone
	if err := decodeJSONArray(text, &milestones); err != nil {
		return nil, err
	}

	plan := make([]PlanMilestone, 0, len(milestones))
	for _, milestone := range milestones {
		milestone.Milestone = strings.TrimSpace(milestone.Milestone)
		if milestone.Milestone == "" {
			continue
		}
		milestone.Tasks = normalizeStatements(milestone.Tasks)
		milestone.Reasoning = strings.TrimSpace(milestone.Reasoning)
		plan = append(plan, milestone)
		if len(plan) == maxPlanMilestones {
			break
		}
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("plan has no usable milestones")
	}
	return plan, nil
}

func (service *PlannerService) AnalyzeFallingBehind(ctx context.Context, input FallingBehindInput) (FallingBehindAnalysis, error) {
	if input.MissedTasks == nil || input.CompletionRate == nil || *input.MissedTasks < 0 {
		return FallingBehindAnalysis{}, ErrInvalidBehindAnalysis
	}
	if service.generator == nil {
		metrics.TextGenRequests.WithLabelValues("fallback").Inc()
		return FallingBehindAnalysis{Analysis: fallingBehindFallback}, nil
	}

	text, err := service.generator.Generate(ctx, fallingBehindPrompt(*input.MissedTasks, *input.CompletionRate, normalizeStatements(input.Patterns)))
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		metrics.TextGenRequests.WithLabelValues("fallback").Inc()
		service.logger.Warn("falling behind analysis fell back", "err", err)
		return FallingBehindAnalysis{Analysis: fallingBehindFallback}, nil
	}
	return FallingBehindAnalysis{Analysis: text, AIGenerated: true}, nil
}

// AnalyzeMetricGap compares each dream metric with its current value. A
// dream value of zero or less counts as no gap.
func AnalyzeMetricGap(input MetricGapInput) (MetricGapReport, error) {
	if len(input.Dream) == 0 {
		return MetricGapReport{}, ErrInvalidMetrics
	}
	report := MetricGapReport{Gaps: make(map[string]MetricGap, len(input.Dream))}
	total := 0
	for name, dream := range input.Dream {
		current := input.Current[name]
		gap := 0
		if dream > 0 {
			gap = int(math.Round((dream - current) / dream * 100))
		}
		report.Gaps[name] = MetricGap{Current: current, Dream: dream, GapPercentage: gap}
		total += gap
	}
	report.AverageGap = int(math.Round(float64(total) / float64(len(report.Gaps))))
	report.Insight = "Making progress. Stay consistent."
	if report.AverageGap > largeMetricGapThreshold {
		report.Insight = "Large gap. Focus on one area."
	}
	return report, nil
}

func semesterPlanPrompt(goal string, daysLeft int) string {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Create a semester plan for: %q (due in %d days).\n", goal, daysLeft)
	prompt.WriteString("Return 4-6 milestones with week numbers, tasks, and reasoning.\n")
	prompt.WriteString("Return as JSON array only: [{\"week\":1,\"milestone\":\"Name\",\"tasks\":[\"Task 1\"],\"reasoning\":\"Why\"}]")
	return prompt.String()
}

func fallingBehindPrompt(missedTasks int, completionRate float64, patterns []string) string {
	var prompt strings.Builder
	prompt.WriteString("Analyze why the user is falling behind:\n")
	fmt.Fprintf(&prompt, "- Missed tasks: %d\n- Completion rate: %.0f%%\n", missedTasks, completionRate)
	if len(patterns) > 0 {
		fmt.Fprintf(&prompt, "- Patterns: %s\n", strings.Join(patterns, ", "))
	}
	prompt.WriteString("\nGive a brief empathetic analysis and ONE actionable step.")
	return prompt.String()
}
