package db

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

type TaskRepository struct {
	database *gorm.DB
}

func NewTaskRepository(database *gorm.DB) *TaskRepository {
	return &TaskRepository{database: database}
}

func (repo *TaskRepository) Create(task *models.Task) error {
	return repo.database.Create(task).Error
}

func (repo *TaskRepository) ListByUser(userID uint, filter models.TaskFilter) ([]models.Task, error) {
	query := repo.database.Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}

	tasks := make([]models.Task, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *TaskRepository) FindByIDForUser(taskID uint, userID uint) (models.Task, error) {
	var task models.Task
	if err := repo.database.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (repo *TaskRepository) ExistsForUser(taskID uint, userID uint) (bool, error) {
	var count int64
	if err := repo.database.Model(&models.Task{}).Where("id = ? AND user_id = ?", taskID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *TaskRepository) UpdateFields(taskID uint, userID uint, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	return repo.database.Model(&models.Task{}).Where("id = ? AND user_id = ?", taskID, userID).Updates(updates).Error
}

// MarkCompleted flips completed from false to true. completed_at keeps its
// first value across reopen cycles. The returned flag reports whether this
// call performed the transition.
func (repo *TaskRepository) MarkCompleted(taskID uint, userID uint, completedAt time.Time) (bool, error) {
	result := repo.database.Model(&models.Task{}).
		Where("id = ? AND user_id = ? AND completed = ?", taskID, userID, false).
		Updates(map[string]any{
			"completed":    true,
			"completed_at": gorm.Expr("COALESCE(completed_at, ?)", completedAt.UTC()),
			"status":       models.TaskStatusCompleted,
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *TaskRepository) SaveBreakdown(taskID uint, userID uint, breakdown models.TaskBreakdown) error {
	return repo.database.Model(&models.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Select("ai_breakdown", "updated_at").
		Updates(&models.Task{AIBreakdown: &breakdown, UpdatedAt: time.Now().UTC()}).Error
}

func (repo *TaskRepository) Delete(taskID uint, userID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", taskID, userID).Delete(&models.Task{})
	return result.RowsAffected > 0, result.Error
}

func (repo *TaskRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Task{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *TaskRepository) DashboardStats(userID uint) (models.TaskDashboardStats, error) {
	var stats models.TaskDashboardStats
	if err := repo.database.Model(&models.Task{}).
		Select(`COUNT(*) AS total_tasks,
			COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed_tasks,
			COALESCE(SUM(CASE WHEN priority = ? AND NOT completed THEN 1 ELSE 0 END), 0) AS high_priority_tasks,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS todo_count,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS in_progress_count`,
			models.PriorityHigh, models.TaskStatusTodo, models.TaskStatusInProgress).
		Where("user_id = ?", userID).
		Scan(&stats).Error; err != nil {
		return models.TaskDashboardStats{}, err
	}
	return stats, nil
}

func (repo *TaskRepository) ListCreatedSince(userID uint, since time.Time) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (repo *TaskRepository) CountCompletedBetween(userID uint, from time.Time, to time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Task{}).
		Where("user_id = ? AND completed = ? AND completed_at >= ? AND completed_at < ?", userID, true, from.UTC(), to.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *TaskRepository) ListCompletedSince(userID uint, since time.Time) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := repo.database.
		Where("user_id = ? AND completed = ? AND completed_at >= ?", userID, true, since.UTC()).
		Order("completed_at ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
