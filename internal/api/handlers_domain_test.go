package api

import (
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/models"
	"github.com/terraincognita07/ascend/internal/services"
)

func TestTaskCompletionAwardsXPOnce(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "ada@example.com")

	status, payload := doJSON(t, app, http.MethodPost, "/api/tasks", token, map[string]any{"title": "Write report", "priority": "high"})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	created := decodeJSON[services.TaskCreateResult](t, payload)
	if !slices.Contains(created.NewAchievements, models.AchievementFirstTask) {
		t.Fatalf("expected first_task achievement, got %v", created.NewAchievements)
	}

	path := idPath("/api/tasks/%d", created.Task.ID)
	status, payload = doJSON(t, app, http.MethodPatch, path, token, map[string]any{"completed": true})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	first := decodeJSON[services.TaskUpdateResult](t, payload)
	if first.XP == nil || first.Task.CompletedAt == nil || first.Task.Status != models.TaskStatusCompleted {
		t.Fatalf("expected completion with xp, got %#v", first)
	}

	status, payload = doJSON(t, app, http.MethodPatch, path, token, map[string]any{"completed": true})
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if second := decodeJSON[services.TaskUpdateResult](t, payload); second.XP != nil {
		t.Fatalf("expected no xp for repeated completion, got %#v", second.XP)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/gamification/stats", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	stats := decodeJSON[services.GamificationStats](t, payload)
	wantXP := services.XPAchievementBonus + services.XPTaskCompleted
	if stats.XP != wantXP || stats.AchievementCount != 1 {
		t.Fatalf("expected xp %d with one achievement, got %#v", wantXP, stats)
	}
}

func TestTasksAreScopedToOwner(t *testing.T) {
	app, _ := newTestApp(t)
	owner := registerTestUser(t, app, "owner@example.com")
	other := registerTestUser(t, app, "other@example.com")

	status, payload := doJSON(t, app, http.MethodPost, "/api/tasks", owner, map[string]any{"title": "Private"})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	task := decodeJSON[services.TaskCreateResult](t, payload).Task

	status, payload = doJSON(t, app, http.MethodGet, idPath("/api/tasks/%d", task.ID), other, nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for other user, got %d (%s)", status, string(payload))
	}
	if got := readAPIError(t, payload); got != services.ErrTaskNotFound.Error() {
		t.Fatalf("expected task not found message, got %q", got)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/tasks/abc", owner, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", status)
	}
	status, _ = doJSON(t, app, http.MethodGet, "/api/tasks?completed=maybe", owner, nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for malformed filter, got %d", status)
	}
}

func TestHabitCompletionSameDayIsNoop(t *testing.T) {
	app, handler := newTestApp(t)
	fixed := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return fixed }
	token := registerTestUser(t, app, "ada@example.com")

	status, payload := doJSON(t, app, http.MethodPost, "/api/habits", token, map[string]any{"name": "Read", "frequency": "daily"})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	habit := decodeJSON[habitCreateResponse](t, payload).Habit
	path := idPath("/api/habits/%d/complete", habit.ID)

	status, payload = doJSON(t, app, http.MethodPost, path, token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	first := decodeJSON[services.HabitCompletion](t, payload)
	if !first.Completed || first.Habit.StreakCount != 1 || first.XP == nil {
		t.Fatalf("unexpected first completion %#v", first)
	}

	status, payload = doJSON(t, app, http.MethodPost, path, token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	second := decodeJSON[services.HabitCompletion](t, payload)
	if second.Completed || second.Habit.StreakCount != 1 || second.XP != nil {
		t.Fatalf("expected same-day no-op, got %#v", second)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/habits/due-today", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if due := decodeJSON[[]models.Habit](t, payload); len(due) != 0 {
		t.Fatalf("expected no habits due after completion, got %d", len(due))
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/habits/999/complete", token, nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown habit, got %d", status)
	}
}

func TestGoalUpdateValidationAndProbability(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "ada@example.com")

	status, payload := doJSON(t, app, http.MethodPost, "/api/goals", token, map[string]any{"title": "Run a marathon", "category": "health"})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	goal := decodeJSON[goalCreateResponse](t, payload).Goal

	status, payload = doJSON(t, app, http.MethodPatch, idPath("/api/goals/%d", goal.ID), token, map[string]any{"progress_percent": 150})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", status, string(payload))
	}
	if got := readAPIError(t, payload); got != services.ErrInvalidProgress.Error() {
		t.Fatalf("unexpected error %q", got)
	}

	status, payload = doJSON(t, app, http.MethodGet, idPath("/api/goals/%d/probability", goal.ID), token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if probability := decodeJSON[services.GoalProbability](t, payload); probability.Probability != 50 {
		t.Fatalf("expected 50 without deadline, got %d", probability.Probability)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/goals/999/probability", token, nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestFocusSessionEndTwiceConflicts(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "ada@example.com")

	status, payload := doJSON(t, app, http.MethodPost, "/api/focus/start", token, map[string]any{"duration_minutes": 25})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	session := decodeJSON[models.FocusSession](t, payload)
	path := idPath("/api/focus/%d/end", session.ID)

	status, payload = doJSON(t, app, http.MethodPost, path, token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if ended := decodeJSON[services.FocusEndResult](t, payload); ended.Session.EndedAt == nil {
		t.Fatalf("expected ended session, got %#v", ended.Session)
	}

	status, _ = doJSON(t, app, http.MethodPost, path, token, nil)
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409 for second end, got %d", status)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/focus/start", token, map[string]any{"duration_minutes": 0})
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for zero duration, got %d", status)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/focus/burnout", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if report := decodeJSON[services.BurnoutReport](t, payload); report.Factors == nil {
		t.Fatalf("expected factors list, got %#v", report)
	}
}

func TestAssistantFallsBackWithoutGenerator(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerTestUser(t, app, "ada@example.com")

	status, payload := doJSON(t, app, http.MethodPost, "/api/tasks", token, map[string]any{"title": "Plan trip"})
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", status, string(payload))
	}
	task := decodeJSON[services.TaskCreateResult](t, payload).Task

	status, payload = doJSON(t, app, http.MethodPost, idPath("/api/assistant/tasks/%d/breakdown", task.ID), token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	breakdown := decodeJSON[models.TaskBreakdown](t, payload)
	if breakdown.AIGenerated || len(breakdown.Subtasks) != 1 || breakdown.Subtasks[0].Title != "Plan trip" {
		t.Fatalf("expected fallback breakdown, got %#v", breakdown)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/api/assistant/motivation?context=winning", token, nil)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, string(payload))
	}
	if message := decodeJSON[services.MotivationalMessage](t, payload); message.Context != services.MotivationWinning || message.Message == "" {
		t.Fatalf("unexpected motivational message %#v", message)
	}
}

func TestHealthMetricsAndNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	status, payload := doJSON(t, app, http.MethodGet, "/healthz", "", nil)
	if status != fiber.StatusOK || !strings.Contains(string(payload), "ok") {
		t.Fatalf("expected healthy response, got %d (%s)", status, string(payload))
	}

	status, payload = doJSON(t, app, http.MethodGet, "/metrics", "", nil)
	if status != fiber.StatusOK || !strings.Contains(string(payload), "ascend_level_ups_total") {
		t.Fatalf("expected prometheus exposition, got %d", status)
	}

	status, payload = doJSON(t, app, http.MethodGet, "/nowhere", "", nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if got := readAPIError(t, payload); got != "not found" {
		t.Fatalf("expected not found message, got %q", got)
	}
}
