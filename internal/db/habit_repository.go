package db

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

type HabitRepository struct {
	database *gorm.DB
}

func NewHabitRepository(database *gorm.DB) *HabitRepository {
	return &HabitRepository{database: database}
}

func (repo *HabitRepository) Create(habit *models.Habit) error {
	return repo.database.Create(habit).Error
}

func (repo *HabitRepository) ListByUser(userID uint) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

func (repo *HabitRepository) FindByIDForUser(habitID uint, userID uint) (models.Habit, error) {
	var habit models.Habit
	if err := repo.database.Where("id = ? AND user_id = ?", habitID, userID).First(&habit).Error; err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (repo *HabitRepository) UpdateFields(habitID uint, userID uint, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	return repo.database.Model(&models.Habit{}).Where("id = ? AND user_id = ?", habitID, userID).Updates(updates).Error
}

// SaveCompletion writes the streak fields only while last_completed still
// holds previous, the value the caller read. It reports false when another
// completion got there first and nothing was written.
func (repo *HabitRepository) SaveCompletion(habit models.Habit, previous *time.Time) (bool, error) {
	var lastCompleted any
	if habit.LastCompleted != nil {
		lastCompleted = habit.LastCompleted.UTC()
	}

	query := repo.database.Model(&models.Habit{}).Where("id = ? AND user_id = ?", habit.ID, habit.UserID)
	if previous == nil {
		query = query.Where("last_completed IS NULL")
	} else {
		query = query.Where("last_completed = ?", previous.UTC())
	}
	result := query.Updates(map[string]any{
		"streak_count":   habit.StreakCount,
		"best_streak":    habit.BestStreak,
		"last_completed": lastCompleted,
		"updated_at":     time.Now().UTC(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *HabitRepository) ResetStreak(habitID uint, userID uint) error {
	return repo.database.Model(&models.Habit{}).Where("id = ? AND user_id = ?", habitID, userID).Updates(map[string]any{
		"streak_count": 0,
		"updated_at":   time.Now().UTC(),
	}).Error
}

func (repo *HabitRepository) Delete(habitID uint, userID uint) (bool, error) {
	result := repo.database.Where("id = ? AND user_id = ?", habitID, userID).Delete(&models.Habit{})
	return result.RowsAffected > 0, result.Error
}

func (repo *HabitRepository) MaxStreak(userID uint) (int, error) {
	var maxStreak int
	if err := repo.database.Model(&models.Habit{}).
		Select("COALESCE(MAX(streak_count), 0)").
		Where("user_id = ?", userID).
		Scan(&maxStreak).Error; err != nil {
		return 0, err
	}
	return maxStreak, nil
}

func (repo *HabitRepository) CountActiveStreaks(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Habit{}).Where("user_id = ? AND streak_count > 0", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *HabitRepository) ListTopByStreak(userID uint, limit int) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("streak_count DESC, id ASC").Limit(limit).Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}

func (repo *HabitRepository) Stats(userID uint) (models.HabitStats, error) {
	var stats models.HabitStats
	if err := repo.database.Model(&models.Habit{}).
		Select(`COUNT(*) AS total_habits,
			COALESCE(AVG(streak_count), 0) AS avg_streak,
			COALESCE(MAX(best_streak), 0) AS best_streak_overall,
			COALESCE(SUM(CASE WHEN streak_count > 0 THEN 1 ELSE 0 END), 0) AS active_streaks`).
		Where("user_id = ?", userID).
		Scan(&stats).Error; err != nil {
		return models.HabitStats{}, err
	}
	return stats, nil
}

func (repo *HabitRepository) CountCompletedSince(userID uint, since time.Time) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Habit{}).
		Where("user_id = ? AND last_completed >= ?", userID, since.UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *HabitRepository) ListLinkedToGoal(goalID uint, userID uint) ([]models.Habit, error) {
	habits := make([]models.Habit, 0)
	if err := repo.database.
		Joins("JOIN habit_goal_links ON habit_goal_links.habit_id = habits.id").
		Where("habit_goal_links.goal_id = ? AND habits.user_id = ?", goalID, userID).
		Order("habits.id ASC").
		Find(&habits).Error; err != nil {
		return nil, err
	}
	return habits, nil
}
