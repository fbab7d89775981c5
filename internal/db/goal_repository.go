package db

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GoalRepository struct {
	database *gorm.DB
}

func NewGoalRepository(database *gorm.DB) *GoalRepository {
	return &GoalRepository{database: database}
}

func (repo *GoalRepository) Create(goal *models.Goal) error {
	return repo.database.Create(goal).Error
}

func (repo *GoalRepository) ListByUser(userID uint, status string) ([]models.Goal, error) {
	query := repo.database.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	goals := make([]models.Goal, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (repo *GoalRepository) ListByUserExcludingStatus(userID uint, status string) ([]models.Goal, error) {
	goals := make([]models.Goal, 0)
	if err := repo.database.Where("user_id = ? AND status <> ?", userID, status).Order("deadline ASC, id ASC").Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (repo *GoalRepository) ListCreatedSince(userID uint, since time.Time) ([]models.Goal, error) {
	goals := make([]models.Goal, 0)
	if err := repo.database.
		Where("user_id = ? AND created_at >= ?", userID, since.UTC()).
		Order("created_at ASC, id ASC").
		Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

func (repo *GoalRepository) FindByIDForUser(goalID uint, userID uint) (models.Goal, error) {
	var goal models.Goal
	if err := repo.database.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		return models.Goal{}, err
	}
	return goal, nil
}

func (repo *GoalRepository) UpdateFields(goalID uint, userID uint, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	return repo.database.Model(&models.Goal{}).Where("id = ? AND user_id = ?", goalID, userID).Updates(updates).Error
}

func (repo *GoalRepository) Delete(goalID uint, userID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", goalID, userID).Delete(&models.Goal{})
	return result.RowsAffected > 0, result.Error
}

func (repo *GoalRepository) CountByStatus(userID uint) (total int64, completed int64, err error) {
	var counts struct {
		Total     int64 `gorm:"column:total"`
		Completed int64 `gorm:"column:completed"`
	}
	if err := repo.database.Model(&models.Goal{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed", models.GoalStatusCompleted).
		Where("user_id = ?", userID).
		Scan(&counts).Error; err != nil {
		return 0, 0, err
	}
	return counts.Total, counts.Completed, nil
}

func (repo *GoalRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Goal{}).
		Where("user_id = ? AND status = ?", userID, models.GoalStatusCompleted).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *GoalRepository) Stats(userID uint) (models.GoalStats, error) {
	var stats models.GoalStats
	if err := repo.database.Model(&models.Goal{}).
		Select(`COUNT(*) AS total_goals,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_goals,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS active_goals,
			COALESCE(AVG(progress_percent), 0) AS avg_progress`, models.GoalStatusCompleted, models.GoalStatusActive).
		Where("user_id = ?", userID).
		Scan(&stats).Error; err != nil {
		return models.GoalStats{}, err
	}
	return stats, nil
}

func (repo *GoalRepository) ListConflicts(userID uint) ([]models.GoalConflict, error) {
	conflicts := make([]models.GoalConflict, 0)
	if err := repo.database.Raw(`
SELECT g1.id AS goal1_id, g1.title AS goal1_title, g2.id AS goal2_id, g2.title AS goal2_title, g1.category AS category
FROM goals g1
JOIN goals g2 ON g1.category = g2.category AND g1.id < g2.id
WHERE g1.user_id = ? AND g2.user_id = ? AND g1.status = ? AND g2.status = ?
ORDER BY g1.category, g1.id, g2.id`,
		userID, userID, models.GoalStatusActive, models.GoalStatusActive,
	).Scan(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (repo *GoalRepository) LinkHabit(habitID uint, goalID uint) error {
	link := models.HabitGoalLink{HabitID: habitID, GoalID: goalID}
	return repo.database.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}
