package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/ascend/internal/models"
)

func newStoreBackedTaskService(t *testing.T) (*TaskService, uint, func() int64) {
	t.Helper()

	repositories := openServicesTestRepositories(t)
	user := createServicesTestUser(t, repositories, "tasks@example.com")
	core := newStoreBackedServices(repositories)
	service := NewTaskService(repositories.Tasks, core.gamification, core.achievements, nil)

	xp := func() int64 {
		balance, err := repositories.Users.LoadXPBalance(user.ID)
		if err != nil {
			t.Fatalf("load balance: %v", err)
		}
		return balance.XP
	}
	return service, user.ID, xp
}

func boolPointer(value bool) *bool {
	return &value
}

func stringPointer(value string) *string {
	return &value
}

func TestCreateTaskEarnsFirstTaskAchievement(t *testing.T) {
	service, userID, xp := newStoreBackedTaskService(t)

	result, err := service.CreateTask(userID, TaskInput{Title: "Plan sprint"})
	if err != nil {
		t.Fatalf("CreateTask() unexpected error: %v", err)
	}
	if result.Task.Priority != models.PriorityMedium || result.Task.Category != models.DefaultTaskCategory {
		t.Fatalf("expected defaults applied, got %#v", result.Task)
	}
	if len(result.NewAchievements) != 1 || result.NewAchievements[0] != models.AchievementFirstTask {
		t.Fatalf("expected first_task, got %#v", result.NewAchievements)
	}
	if got := xp(); got != XPAchievementBonus {
		t.Fatalf("expected %d xp, got %d", XPAchievementBonus, got)
	}

	second, err := service.CreateTask(userID, TaskInput{Title: "Review"})
	if err != nil {
		t.Fatalf("CreateTask() unexpected error: %v", err)
	}
	if len(second.NewAchievements) != 0 {
		t.Fatalf("expected no new achievements, got %#v", second.NewAchievements)
	}
}

func TestCreateTaskRejectsInvalidInput(t *testing.T) {
	service, userID, _ := newStoreBackedTaskService(t)

	if _, err := service.CreateTask(userID, TaskInput{Title: " "}); !errors.Is(err, ErrInvalidTaskTitle) {
		t.Fatalf("expected ErrInvalidTaskTitle, got %v", err)
	}
	if _, err := service.CreateTask(userID, TaskInput{Title: "x", Priority: "urgent"}); !errors.Is(err, ErrInvalidTaskPriority) {
		t.Fatalf("expected ErrInvalidTaskPriority, got %v", err)
	}
}

func TestUpdateTaskCompletedAtSetOnce(t *testing.T) {
	service, userID, xp := newStoreBackedTaskService(t)
	created, err := service.CreateTask(userID, TaskInput{Title: "Ship release"})
	if err != nil {
		t.Fatalf("CreateTask() unexpected error: %v", err)
	}
	baseline := xp()

	firstDone := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	completed, err := service.UpdateTask(userID, created.Task.ID, TaskUpdate{Completed: boolPointer(true)}, firstDone)
	if err != nil {
		t.Fatalf("UpdateTask() unexpected error: %v", err)
	}
	if !completed.Task.Completed || completed.Task.Status != models.TaskStatusCompleted || completed.XP == nil {
		t.Fatalf("expected completed task with xp, got %#v", completed)
	}
	if completed.Task.CompletedAt == nil || !completed.Task.CompletedAt.Equal(firstDone) {
		t.Fatalf("expected completed_at %s, got %v", firstDone, completed.Task.CompletedAt)
	}
	if got := xp() - baseline; got != XPTaskCompleted {
		t.Fatalf("expected +%d xp, got %d", XPTaskCompleted, got)
	}

	again, err := service.UpdateTask(userID, created.Task.ID, TaskUpdate{Completed: boolPointer(true)}, firstDone.Add(time.Hour))
	if err != nil {
		t.Fatalf("UpdateTask() unexpected error: %v", err)
	}
	if again.XP != nil {
		t.Fatalf("expected no xp for an already completed task")
	}

	reopened, err := service.UpdateTask(userID, created.Task.ID, TaskUpdate{Completed: boolPointer(false)}, firstDone.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("UpdateTask() unexpected error: %v", err)
	}
	if reopened.Task.Completed || reopened.Task.Status != models.TaskStatusTodo {
		t.Fatalf("expected reopened todo task, got %#v", reopened.Task)
	}

	recompleted, err := service.UpdateTask(userID, created.Task.ID, TaskUpdate{Status: stringPointer(models.TaskStatusCompleted)}, firstDone.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("UpdateTask() unexpected error: %v", err)
	}
	if recompleted.XP != nil {
		t.Fatalf("expected no xp on re-completion")
	}
	if !recompleted.Task.CompletedAt.Equal(firstDone) {
		t.Fatalf("expected completed_at to keep %s, got %s", firstDone, recompleted.Task.CompletedAt)
	}
	if got := xp() - baseline; got != XPTaskCompleted {
		t.Fatalf("expected total +%d xp, got %d", XPTaskCompleted, got)
	}
}

func TestUpdateTaskIgnoresNilFields(t *testing.T) {
	service, userID, _ := newStoreBackedTaskService(t)
	created, err := service.CreateTask(userID, TaskInput{Title: "Original", Description: "keep me", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask() unexpected error: %v", err)
	}

	updated, err := service.UpdateTask(userID, created.Task.ID, TaskUpdate{Title: stringPointer("Renamed")}, time.Now())
	if err != nil {
		t.Fatalf("UpdateTask() unexpected error: %v", err)
	}
	if updated.Task.Title != "Renamed" || updated.Task.Description != "keep me" || updated.Task.Priority != models.PriorityHigh {
		t.Fatalf("unexpected task after partial update %#v", updated.Task)
	}

	if _, err := service.UpdateTask(userID, created.Task.ID, TaskUpdate{Status: stringPointer("blocked")}, time.Now()); !errors.Is(err, ErrInvalidTaskStatus) {
		t.Fatalf("expected ErrInvalidTaskStatus, got %v", err)
	}
	if _, err := service.UpdateTask(userID, 999, TaskUpdate{}, time.Now()); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestListTasksFiltersByCompletion(t *testing.T) {
	service, userID, _ := newStoreBackedTaskService(t)
	first, err := service.CreateTask(userID, TaskInput{Title: "Done"})
	if err != nil {
		t.Fatalf("CreateTask() unexpected error: %v", err)
	}
	if _, err := service.CreateTask(userID, TaskInput{Title: "Open"}); err != nil {
		t.Fatalf("CreateTask() unexpected error: %v", err)
	}
	if _, err := service.UpdateTask(userID, first.Task.ID, TaskUpdate{Completed: boolPointer(true)}, time.Now()); err != nil {
		t.Fatalf("UpdateTask() unexpected error: %v", err)
	}

	open, err := service.ListTasks(userID, models.TaskFilter{Completed: boolPointer(false)})
	if err != nil {
		t.Fatalf("ListTasks() unexpected error: %v", err)
	}
	if len(open) != 1 || open[0].Title != "Open" {
		t.Fatalf("expected only the open task, got %#v", open)
	}
}
