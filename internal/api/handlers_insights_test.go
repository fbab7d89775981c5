package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/services"
)

func TestPlannerEndpoints(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "planner@example.com")

	for _, body := range []map[string]any{
		{"title": "Low chore", "priority": "low"},
		{"title": "Exam prep", "priority": "high"},
	} {
		status, payload := doJSON(t, app, http.MethodPost, "/api/tasks", token, body)
		if status != fiber.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", status, string(payload))
		}
	}

	status, payload := doJSON(t, app, http.MethodGet, "/api/tasks/ai/schedule?hours=0.5", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	schedule := decodeJSON[services.Schedule](t, payload)
	if len(schedule.Tasks) != 1 || schedule.Tasks[0].Title != "Exam prep" || schedule.AvailableMinutes != 30 {
		t.Fatalf("expected only the high priority task, got %#v", schedule)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/assistant/schedule?hours=30", token, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for too many hours, got %d", status)
	}

	status, payload = doJSON(t, app, http.MethodPost, "/api/assistant/reflection", token, map[string]any{"tasks_completed": 4, "tasks_missed": 1})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if reflection := decodeJSON[services.WeeklyReflection](t, payload); reflection.CompletionRate != 80 {
		t.Fatalf("expected 80%% completion, got %#v", reflection)
	}
	status, payload = doJSON(t, app, http.MethodPost, "/api/assistant/reflection", token, map[string]any{"tasks_completed": 4})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without missed count, got %d (%s)", status, string(payload))
	}

	status, payload = doJSON(t, app, http.MethodPost, "/api/assistant/semester-plan", token, map[string]any{"goal": "Finish thesis", "deadline": "2026-12-01"})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if plan := decodeJSON[services.SemesterPlan](t, payload); plan.AIGenerated || plan.Plan == nil || len(plan.Plan) != 0 {
		t.Fatalf("expected empty fallback plan, got %#v", plan)
	}

	status, payload = doJSON(t, app, http.MethodPost, "/api/assistant/falling-behind", token, map[string]any{"missed_tasks": 3, "completion_rate": 40})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if analysis := decodeJSON[services.FallingBehindAnalysis](t, payload); analysis.AIGenerated || analysis.Analysis == "" {
		t.Fatalf("expected fallback analysis, got %#v", analysis)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/assistant/suggestions", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if suggestions := decodeJSON[services.CoachSuggestions](t, payload); suggestions.Context.PendingTasks != 2 || len(suggestions.Suggestions) == 0 {
		t.Fatalf("unexpected suggestions %#v", suggestions)
	}

	status, payload = doJSON(t, app, http.MethodPost, "/api/assistant/estimate-time", token, map[string]any{"task_type": "project", "complexity": "complex"})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if estimate := decodeJSON[services.TimeEstimate](t, payload); estimate.EstimatedMinutes != 138 {
		t.Fatalf("expected 138 minutes, got %#v", estimate)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/assistant/gap-analysis", token, map[string]any{"current_metrics": map[string]float64{"books": 1}})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without dream metrics, got %d", status)
	}
}

func TestAnalyticsAndInsightEndpoints(t *testing.T) {
	app, handler := newTestApp(t)
	fixed := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return fixed }
	token := registerTestUser(t, app, "insights@example.com")

	status, payload := doJSON(t, app, http.MethodPost, "/api/habits", token, map[string]any{"name": "Stretch", "frequency": "daily"})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	habit := decodeJSON[habitCreateResponse](t, payload).Habit
	status, payload = doJSON(t, app, http.MethodPost, idPath("/api/habits/%d/complete", habit.ID), token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/habits/consistency", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	consistency := decodeJSON[struct {
		Consistency []services.HabitWeekConsistency `json:"consistency"`
	}](t, payload).Consistency
	if len(consistency) != 1 || consistency[0].DaysCompleted != 1 || consistency[0].ConsistencyPercent != 14.29 {
		t.Fatalf("unexpected consistency %#v", consistency)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/analytics/dashboard", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	dashboard := decodeJSON[services.Dashboard](t, payload)
	if len(dashboard.HabitPerformance) != 1 || dashboard.HabitConsistency.CompletedRecent != 1 {
		t.Fatalf("unexpected dashboard %#v", dashboard)
	}

	status, payload = doJSON(t, app, http.MethodPost, "/api/goals", token, map[string]any{"title": "Run a marathon", "deadline": "2026-03-14T00:00:00Z"})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	status, payload = doJSON(t, app, http.MethodGet, "/api/analytics/goal-progress", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if progress := decodeJSON[[]services.GoalProgressEntry](t, payload); len(progress) != 1 || progress[0].Urgency != services.UrgencyUrgent {
		t.Fatalf("expected one urgent goal, got %#v", progress)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/analytics/engagement", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if engagement := decodeJSON[services.Engagement](t, payload); engagement.TotalHabits != 1 || engagement.TotalGoals != 1 {
		t.Fatalf("unexpected engagement %#v", engagement)
	}

	for _, path := range []string{"/api/analytics/goal-trends", "/api/analytics/productivity-heatmap", "/api/analytics/habits-comparison"} {
		if status, payload = doJSON(t, app, http.MethodGet, path, token, nil); status != fiber.StatusOK {
			t.Fatalf("%s: expected 200, got %d (%s)", path, status, string(payload))
		}
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/dream-me/insights", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	insights := decodeJSON[services.DreamInsights](t, payload)
	if insights.Profile != nil || len(insights.Gaps) == 0 || insights.LastReflection != nil {
		t.Fatalf("unexpected insights %#v", insights)
	}
}
