package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/models"
)

const maxTaskTitleLength = 200

type TaskRepository interface {
	Create(task *models.Task) error
	ListByUser(userID uint, filter models.TaskFilter) ([]models.Task, error)
	FindByIDForUser(taskID uint, userID uint) (models.Task, error)
	UpdateFields(taskID uint, userID uint, updates map[string]any) error
	MarkCompleted(taskID uint, userID uint, completedAt time.Time) (bool, error)
	Delete(taskID uint, userID uint) (bool, error)
	DashboardStats(userID uint) (models.TaskDashboardStats, error)
}

type TaskInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DueDate         *time.Time `json:"due_date"`
	Priority        string     `json:"priority"`
	Category        string     `json:"category"`
	DurationMinutes *int       `json:"duration_minutes"`
}

// TaskUpdate carries the patchable task fields. Nil fields are left as is.
type TaskUpdate struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	DueDate         *time.Time `json:"due_date"`
	Priority        *string    `json:"priority"`
	Category        *string    `json:"category"`
	Status          *string    `json:"status"`
	Completed       *bool      `json:"completed"`
	DurationMinutes *int       `json:"duration_minutes"`
}

type TaskCreateResult struct {
	Task            models.Task `json:"task"`
	NewAchievements []string    `json:"new_achievements"`
}

type TaskUpdateResult struct {
	Task models.Task `json:"task"`
	XP   *XPAward    `json:"xp,omitempty"`
}

type TaskService struct {
	tasks        TaskRepository
	xp           XPAwarder
	achievements AchievementChecker
	logger       *log.Logger
}

func NewTaskService(tasks TaskRepository, xp XPAwarder, achievements AchievementChecker, logger *log.Logger) *TaskService {
	return &TaskService{
		tasks:        tasks,
		xp:           xp,
		achievements: achievements,
		logger:       logging.OrDiscard(logger),
	}
}

func (service *TaskService) CreateTask(userID uint, input TaskInput) (TaskCreateResult, error) {
	title, err := normalizeTaskTitle(input.Title)
	if err != nil {
		return TaskCreateResult{}, err
	}
	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.IsValidTaskPriority(priority) {
		return TaskCreateResult{}, ErrInvalidTaskPriority
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = models.DefaultTaskCategory
	}
	if input.DurationMinutes != nil && *input.DurationMinutes <= 0 {
		return TaskCreateResult{}, ErrInvalidFocusDuration
	}

	task := models.Task{
		UserID:          userID,
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		DueDate:         utcPointer(input.DueDate),
		Priority:        priority,
		Category:        category,
		Status:          models.TaskStatusTodo,
		DurationMinutes: input.DurationMinutes,
	}
	if err := service.tasks.Create(&task); err != nil {
		return TaskCreateResult{}, fmt.Errorf("create task: %w", err)
	}

	earned, err := service.achievements.CheckAndAward(userID)
	if err != nil {
		service.logger.Warn("achievement check failed", "user_id", userID, "err", err)
	}
	return TaskCreateResult{Task: task, NewAchievements: append([]string{}, earned...)}, nil
}

func (service *TaskService) ListTasks(userID uint, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Status != "" && !models.IsValidTaskStatus(filter.Status) {
		return nil, ErrInvalidTaskStatus
	}
	if filter.Priority != "" && !models.IsValidTaskPriority(filter.Priority) {
		return nil, ErrInvalidTaskPriority
	}
	return service.tasks.ListByUser(userID, filter)
}

func (service *TaskService) GetTask(userID uint, taskID uint) (models.Task, error) {
	task, err := service.tasks.FindByIDForUser(taskID, userID)
	if err != nil {
		return models.Task{}, mapMissing(err, ErrTaskNotFound)
	}
	return task, nil
}

// UpdateTask applies the provided fields. Marking a task completed for the
// first time stamps completed_at and grants task XP; later reopen and
// complete cycles keep the original stamp and grant nothing.
func (service *TaskService) UpdateTask(userID uint, taskID uint, update TaskUpdate, now time.Time) (TaskUpdateResult, error) {
	current, err := service.GetTask(userID, taskID)
	if err != nil {
		return TaskUpdateResult{}, err
	}

	fields, err := taskUpdateFields(update)
	if err != nil {
		return TaskUpdateResult{}, err
	}

	complete := update.Completed != nil && *update.Completed
	if status, ok := fields["status"].(string); ok {
		if status == models.TaskStatusCompleted {
			complete = true
		} else {
			fields["completed"] = false
		}
	}
	if update.Completed != nil && !*update.Completed && !complete {
		fields["completed"] = false
		if _, ok := fields["status"]; !ok && current.Status == models.TaskStatusCompleted {
			fields["status"] = models.TaskStatusTodo
		}
	}
	if complete {
		delete(fields, "status")
		delete(fields, "completed")
	}

	if len(fields) > 0 {
		if err := service.tasks.UpdateFields(taskID, userID, fields); err != nil {
			return TaskUpdateResult{}, fmt.Errorf("update task: %w", err)
		}
	}

	result := TaskUpdateResult{}
	if complete {
		transitioned, err := service.tasks.MarkCompleted(taskID, userID, now)
		if err != nil {
			return TaskUpdateResult{}, fmt.Errorf("complete task: %w", err)
		}
		if transitioned && current.CompletedAt == nil {
			award, err := service.xp.AwardXP(userID, XPTaskCompleted, SourceTaskCompleted)
			if err != nil {
				return TaskUpdateResult{}, err
			}
			result.XP = &award
		}
	}

	task, err := service.GetTask(userID, taskID)
	if err != nil {
		return TaskUpdateResult{}, err
	}
	result.Task = task
	return result, nil
}

func (service *TaskService) DeleteTask(userID uint, taskID uint) error {
	deleted, err := service.tasks.Delete(taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

func (service *TaskService) DashboardStats(userID uint) (models.TaskDashboardStats, error) {
	return service.tasks.DashboardStats(userID)
}

func taskUpdateFields(update TaskUpdate) (map[string]any, error) {
	fields := make(map[string]any)
	if update.Title != nil {
		title, err := normalizeTaskTitle(*update.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if update.Description != nil {
		fields["description"] = strings.TrimSpace(*update.Description)
	}
	if update.DueDate != nil {
		fields["due_date"] = update.DueDate.UTC()
	}
	if update.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*update.Priority))
		if !models.IsValidTaskPriority(priority) {
			return nil, ErrInvalidTaskPriority
		}
		fields["priority"] = priority
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			category = models.DefaultTaskCategory
		}
		fields["category"] = category
	}
	if update.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*update.Status))
		if !models.IsValidTaskStatus(status) {
			return nil, ErrInvalidTaskStatus
		}
		fields["status"] = status
	}
	if update.DurationMinutes != nil {
		if *update.DurationMinutes <= 0 {
			return nil, ErrInvalidFocusDuration
		}
		fields["duration_minutes"] = *update.DurationMinutes
	}
	return fields, nil
}

func normalizeTaskTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || len([]rune(title)) > maxTaskTitleLength {
		return "", ErrInvalidTaskTitle
	}
	return title, nil
}

func utcPointer(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	converted := value.UTC()
	return &converted
}
