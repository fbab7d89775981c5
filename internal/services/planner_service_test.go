package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/ascend/internal/models"
)

type stubPlannerTasks struct {
	tasks []models.Task
	done  []models.Task
}

func (stub stubPlannerTasks) ListByUser(_ uint, filter models.TaskFilter) ([]models.Task, error) {
	tasks := make([]models.Task, 0, len(stub.tasks))
	for _, task := range stub.tasks {
		if filter.Completed == nil || task.Completed == *filter.Completed {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (stub stubPlannerTasks) ListCompletedSince(uint, time.Time) ([]models.Task, error) {
	return stub.done, nil
}

type stubPlannerHabits struct {
	streak int
}

func (stub stubPlannerHabits) MaxStreak(uint) (int, error) {
	return stub.streak, nil
}

func TestScheduleTasksOrdersByPriorityThenDueDate(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)
	tasks := []models.Task{
		{ID: 1, Title: "Low", Priority: models.PriorityLow, DueDate: &soon},
		{ID: 2, Title: "High later", Priority: models.PriorityHigh, DueDate: &later},
		{ID: 3, Title: "High undated", Priority: models.PriorityHigh},
		{ID: 4, Title: "High soon", Priority: models.PriorityHigh, DueDate: &soon, DurationMinutes: intPointer(90)},
		{ID: 5, Title: "Medium", Priority: models.PriorityMedium, AIBreakdown: &models.TaskBreakdown{EstimatedDuration: 45}},
	}

	scheduled := ScheduleTasks(tasks, 180)

	order := make([]uint, 0, len(scheduled))
	for _, task := range scheduled {
		order = append(order, task.TaskID)
	}
	expected := []uint{4, 2, 3, 1}
	if len(order) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, order)
	}
	for index := range expected {
		if order[index] != expected[index] {
			t.Fatalf("expected %v, got %v", expected, order)
		}
	}
	if scheduled[0].EstimatedMinutes != 90 || scheduled[1].EstimatedMinutes != 30 {
		t.Fatalf("unexpected estimates %#v", scheduled)
	}
}

func TestSmartScheduleSkipsCompletedAndDefaultsHours(t *testing.T) {
	tasks := stubPlannerTasks{tasks: []models.Task{
		{ID: 1, Priority: models.PriorityHigh, Completed: true},
		{ID: 2, Priority: models.PriorityMedium},
	}}
	service := NewPlannerService(nil, tasks, stubPlannerHabits{}, &stubAnalyticsFocus{}, time.UTC, nil)

	schedule, err := service.SmartSchedule(1, 0)
	if err != nil {
		t.Fatalf("SmartSchedule() unexpected error: %v", err)
	}
	if schedule.AvailableMinutes != 480 || schedule.ScheduledMinutes != 30 || len(schedule.Tasks) != 1 || schedule.Tasks[0].TaskID != 2 {
		t.Fatalf("unexpected schedule %#v", schedule)
	}
	if !schedule.Optimized || schedule.AIGenerated {
		t.Fatalf("expected rule-based optimized schedule, got %#v", schedule)
	}

	if _, err := service.SmartSchedule(1, 25); !errors.Is(err, ErrInvalidScheduleHours) {
		t.Fatalf("expected ErrInvalidScheduleHours, got %v", err)
	}
}

func TestClassifyProcrastination(t *testing.T) {
	testCases := []struct {
		name     string
		score    ProcrastinationScore
		expected string
	}{
		{name: "many overdue", score: ProcrastinationScore{Overdue: 3, Streak: 4}, expected: ProcrastinationHigh},
		{name: "two missed today", score: ProcrastinationScore{MissedToday: 2, Streak: 4}, expected: ProcrastinationHigh},
		{name: "one missed today", score: ProcrastinationScore{MissedToday: 1, Streak: 4}, expected: ProcrastinationMedium},
		{name: "no streak", score: ProcrastinationScore{Overdue: 2}, expected: ProcrastinationMedium},
		{name: "on track", score: ProcrastinationScore{Overdue: 2, Streak: 1}, expected: ProcrastinationLow},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			level, reasoning := ClassifyProcrastination(testCase.score)
			if level != testCase.expected || reasoning == "" {
				t.Fatalf("expected %s with reasoning, got %s %q", testCase.expected, level, reasoning)
			}
		})
	}
}

func TestDetectProcrastinationCountsOverdueAndMissedToday(t *testing.T) {
	location := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, time.October, 15, 18, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, time.October, 14, 20, 0, 0, 0, location)
	earlierToday := time.Date(2026, time.October, 15, 9, 0, 0, 0, location)
	tonight := time.Date(2026, time.October, 15, 22, 0, 0, 0, location)
	tasks := stubPlannerTasks{tasks: []models.Task{
		{ID: 1, DueDate: &yesterday},
		{ID: 2, DueDate: &earlierToday},
		{ID: 3, DueDate: &tonight},
		{ID: 4},
		{ID: 5, DueDate: &yesterday, Completed: true},
	}}
	service := NewPlannerService(nil, tasks, stubPlannerHabits{streak: 3}, &stubAnalyticsFocus{}, location, nil)

	report, err := service.DetectProcrastination(1, now)
	if err != nil {
		t.Fatalf("DetectProcrastination() unexpected error: %v", err)
	}
	if report.Score.Overdue != 1 || report.Score.MissedToday != 1 || report.Score.Streak != 3 {
		t.Fatalf("unexpected score %#v", report.Score)
	}
	if report.Level != ProcrastinationMedium {
		t.Fatalf("expected medium, got %s", report.Level)
	}
}

func TestEstimateMinutesBlendsHistoryWithBase(t *testing.T) {
	if got := EstimateMinutes("coding", "medium", nil); got != 90 {
		t.Fatalf("expected base 90 without history, got %d", got)
	}
	if got := EstimateMinutes("coding", "veryComplex", []int{60, 80}); got != 103 {
		t.Fatalf("expected 103, got %d", got)
	}
	if got := EstimateMinutes("gardening", "unknown", nil); got != 30 {
		t.Fatalf("expected default 30, got %d", got)
	}
	if got := EstimateMinutes("homework", "simple", nil); got != 38 {
		t.Fatalf("expected 38, got %d", got)
	}
}

func TestEstimateTaskTimeUsesMatchingCompletedTasks(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	tasks := stubPlannerTasks{done: []models.Task{
		{Category: "Reading", DurationMinutes: intPointer(50)},
		{Category: "reading", DurationMinutes: intPointer(70)},
		{Category: "reading"},
		{Category: "coding", DurationMinutes: intPointer(200)},
	}}
	service := NewPlannerService(nil, tasks, stubPlannerHabits{}, &stubAnalyticsFocus{}, time.UTC, nil)

	estimate, err := service.EstimateTaskTime(1, EstimateInput{TaskType: " Reading "}, now)
	if err != nil {
		t.Fatalf("EstimateTaskTime() unexpected error: %v", err)
	}
	if estimate.EstimatedMinutes != 51 || estimate.SampleSize != 2 || estimate.Reasoning != "reading + medium complexity" {
		t.Fatalf("unexpected estimate %#v", estimate)
	}

	if _, err := service.EstimateTaskTime(1, EstimateInput{}, now); !errors.Is(err, ErrInvalidEstimate) {
		t.Fatalf("expected ErrInvalidEstimate, got %v", err)
	}
}

func TestBuildWeeklyReflection(t *testing.T) {
	strong, err := BuildWeeklyReflection(WeeklyReflectionInput{
		TasksCompleted: intPointer(9),
		TasksMissed:    intPointer(1),
		HabitsTracked:  3,
		SkillsImproved: []string{"Go", " ", "writing"},
	})
	if err != nil {
		t.Fatalf("BuildWeeklyReflection() unexpected error: %v", err)
	}
	if strong.CompletionRate != 90 || strong.Insights[0] != "You completed 9 tasks (90% completion rate)" || strong.Insights[2] != "Improved: Go, writing" {
		t.Fatalf("unexpected strong week %#v", strong)
	}
	if strong.Recommendation != "Challenge yourself with more tasks" {
		t.Fatalf("unexpected recommendation %q", strong.Recommendation)
	}

	empty, err := BuildWeeklyReflection(WeeklyReflectionInput{TasksCompleted: intPointer(0), TasksMissed: intPointer(0)})
	if err != nil {
		t.Fatalf("BuildWeeklyReflection() unexpected error: %v", err)
	}
	if empty.CompletionRate != 0 || empty.Insights[2] != "Focus on consistency" || empty.Recommendation != "Focus on completing fewer, high-priority tasks" {
		t.Fatalf("unexpected empty week %#v", empty)
	}

	if _, err := BuildWeeklyReflection(WeeklyReflectionInput{TasksCompleted: intPointer(2)}); !errors.Is(err, ErrInvalidWeeklyCounts) {
		t.Fatalf("expected ErrInvalidWeeklyCounts, got %v", err)
	}
}

func TestSuggestionsReflectUserState(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	tasks := make([]models.Task, 0, 8)
	for index := 0; index < 8; index++ {
		tasks = append(tasks, models.Task{ID: uint(index + 1), Completed: index == 0})
	}
	service := NewPlannerService(nil, stubPlannerTasks{tasks: tasks}, stubPlannerHabits{streak: 4}, &stubAnalyticsFocus{}, time.UTC, nil)

	suggestions, err := service.Suggestions(1, now)
	if err != nil {
		t.Fatalf("Suggestions() unexpected error: %v", err)
	}
	expected := []string{
		"You have 7 tasks. Start with the highest priority.",
		"You have a 4-day streak! Keep it going!",
		"Try breaking tasks into smaller chunks.",
		"Start a focus session to boost productivity.",
	}
	if len(suggestions.Suggestions) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, suggestions.Suggestions)
	}
	for index := range expected {
		if suggestions.Suggestions[index] != expected[index] {
			t.Fatalf("expected %v, got %v", expected, suggestions.Suggestions)
		}
	}
	if suggestions.Action != "CONTINUE" || suggestions.Context.PendingTasks != 7 {
		t.Fatalf("unexpected suggestions %#v", suggestions)
	}
}

func TestSuggestionsForSettledUser(t *testing.T) {
	rate := 80.0
	got := SuggestionsFor(CoachContext{CompletionRate: &rate, FocusMinutes: 25})
	if len(got) != 1 || got[0] != "You're all set! Great job today." {
		t.Fatalf("unexpected suggestions %v", got)
	}
}

func TestSemesterPlanParsesGeneratedMilestones(t *testing.T) {
	generator := &stubGenerator{text: "[{\"week\":1,\"milestone\":\"Research\",\"tasks\":[\"Read papers\",\" \"],\"reasoning\":\"Foundation\"},{\"week\":2,\"milestone\":\" \"}]"}
	service := NewPlannerService(generator, stubPlannerTasks{}, stubPlannerHabits{}, &stubAnalyticsFocus{}, time.UTC, nil)

	plan, err := service.SemesterPlan(context.Background(), SemesterPlanInput{Goal: "Thesis", Deadline: "2026-12-15", CurrentDate: "2026-10-15"}, time.Now())
	if err != nil {
		t.Fatalf("SemesterPlan() unexpected error: %v", err)
	}
	if !plan.AIGenerated || plan.DaysLeft != 61 || len(plan.Plan) != 1 || len(plan.Plan[0].Tasks) != 1 {
		t.Fatalf("unexpected plan %#v", plan)
	}
	if len(generator.prompts) != 1 || !strings.Contains(generator.prompts[0], "due in 61 days") {
		t.Fatalf("unexpected prompts %v", generator.prompts)
	}
}

func TestSemesterPlanFallsBackToEmptyPlan(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	testCases := []struct {
		name      string
		generator TextGenerator
	}{
		{name: "no generator"},
		{name: "generator error", generator: &stubGenerator{err: errors.New("offline")}},
		{name: "unparseable", generator: &stubGenerator{text: "no plan today"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			service := NewPlannerService(testCase.generator, stubPlannerTasks{}, stubPlannerHabits{}, &stubAnalyticsFocus{}, time.UTC, nil)
			plan, err := service.SemesterPlan(context.Background(), SemesterPlanInput{Goal: "Thesis", Deadline: "2026-10-25"}, now)
			if err != nil {
				t.Fatalf("SemesterPlan() unexpected error: %v", err)
			}
			if plan.AIGenerated || plan.Plan == nil || len(plan.Plan) != 0 || plan.DaysLeft != 10 {
				t.Fatalf("expected empty fallback plan, got %#v", plan)
			}
		})
	}

	service := NewPlannerService(nil, stubPlannerTasks{}, stubPlannerHabits{}, &stubAnalyticsFocus{}, time.UTC, nil)
	if _, err := service.SemesterPlan(context.Background(), SemesterPlanInput{Goal: "Thesis", Deadline: "soon"}, now); !errors.Is(err, ErrInvalidPlanRequest) {
		t.Fatalf("expected ErrInvalidPlanRequest, got %v", err)
	}
}

func TestAnalyzeFallingBehind(t *testing.T) {
	missed := 4
	rate := 35.0
	input := FallingBehindInput{MissedTasks: &missed, CompletionRate: &rate, Patterns: []string{"late nights"}}

	generator := &stubGenerator{text: "  You are overloaded. Pick one task tonight.  "}
	service := NewPlannerService(generator, stubPlannerTasks{}, stubPlannerHabits{}, &stubAnalyticsFocus{}, time.UTC, nil)
	analysis, err := service.AnalyzeFallingBehind(context.Background(), input)
	if err != nil {
		t.Fatalf("AnalyzeFallingBehind() unexpected error: %v", err)
	}
	if !analysis.AIGenerated || analysis.Analysis != "You are overloaded. Pick one task tonight." {
		t.Fatalf("unexpected analysis %#v", analysis)
	}
	if !strings.Contains(generator.prompts[0], "Completion rate: 35%") || !strings.Contains(generator.prompts[0], "late nights") {
		t.Fatalf("unexpected prompt %q", generator.prompts[0])
	}

	failing := NewPlannerService(&stubGenerator{err: errors.New("offline")}, stubPlannerTasks{}, stubPlannerHabits{}, &stubAnalyticsFocus{}, time.UTC, nil)
	fallback, err := failing.AnalyzeFallingBehind(context.Background(), input)
	if err != nil || fallback.AIGenerated || fallback.Analysis != fallingBehindFallback {
		t.Fatalf("expected fallback analysis, got %#v err=%v", fallback, err)
	}

	if _, err := service.AnalyzeFallingBehind(context.Background(), FallingBehindInput{MissedTasks: &missed}); !errors.Is(err, ErrInvalidBehindAnalysis) {
		t.Fatalf("expected ErrInvalidBehindAnalysis, got %v", err)
	}
}

func TestAnalyzeMetricGap(t *testing.T) {
	report, err := AnalyzeMetricGap(MetricGapInput{
		Current: map[string]float64{"focus_hours": 5, "books": 1},
		Dream:   map[string]float64{"focus_hours": 20, "books": 4, "runs": 0},
	})
	if err != nil {
		t.Fatalf("AnalyzeMetricGap() unexpected error: %v", err)
	}
	if report.Gaps["focus_hours"].GapPercentage != 75 || report.Gaps["books"].GapPercentage != 75 || report.Gaps["runs"].GapPercentage != 0 {
		t.Fatalf("unexpected gaps %#v", report.Gaps)
	}
	if report.AverageGap != 50 || report.Insight != "Making progress. Stay consistent." {
		t.Fatalf("unexpected summary %#v", report)
	}

	if _, err := AnalyzeMetricGap(MetricGapInput{Current: map[string]float64{"books": 1}}); !errors.Is(err, ErrInvalidMetrics) {
		t.Fatalf("expected ErrInvalidMetrics, got %v", err)
	}
}
