package db

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

type FocusSessionRepository struct {
	database *gorm.DB
}

func NewFocusSessionRepository(database *gorm.DB) *FocusSessionRepository {
	return &FocusSessionRepository{database: database}
}

func (repo *FocusSessionRepository) Create(session *models.FocusSession) error {
	return repo.database.Create(session).Error
}

func (repo *FocusSessionRepository) FindByIDForUser(sessionID uint, userID uint) (models.FocusSession, error) {
	var session models.FocusSession
	if err := repo.database.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return models.FocusSession{}, err
	}
	return session, nil
}

// End closes an active session. It reports false when the session was
// already ended, so two concurrent calls cannot both succeed.
func (repo *FocusSessionRepository) End(sessionID uint, userID uint, endedAt time.Time, completed bool) (bool, error) {
	result := repo.database.Model(&models.FocusSession{}).
		Where("id = ? AND user_id = ? AND ended_at IS NULL", sessionID, userID).
		Updates(map[string]any{
			"ended_at":      endedAt.UTC(),
			"was_completed": completed,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *FocusSessionRepository) FindActive(userID uint) (models.FocusSession, error) {
	var session models.FocusSession
	if err := repo.database.
		Where("user_id = ? AND ended_at IS NULL", userID).
		Order("started_at DESC, id DESC").
		First(&session).Error; err != nil {
		return models.FocusSession{}, err
	}
	return session, nil
}

func (repo *FocusSessionRepository) ListRecent(userID uint, limit int) ([]models.FocusSession, error) {
	sessions := make([]models.FocusSession, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (repo *FocusSessionRepository) ListStartedSince(userID uint, since time.Time) ([]models.FocusSession, error) {
	sessions := make([]models.FocusSession, 0)
	if err := repo.database.
		Where("user_id = ? AND started_at >= ?", userID, since.UTC()).
		Order("started_at ASC, id ASC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (repo *FocusSessionRepository) ListEndedTimes(userID uint) ([]time.Time, error) {
	endedAt := make([]time.Time, 0)
	if err := repo.database.Model(&models.FocusSession{}).
		Where("user_id = ? AND ended_at IS NOT NULL", userID).
		Order("ended_at DESC").
		Pluck("ended_at", &endedAt).Error; err != nil {
		return nil, err
	}
	return endedAt, nil
}

func (repo *FocusSessionRepository) Stats(userID uint, since time.Time) (models.FocusStats, error) {
	var stats models.FocusStats
	if err := repo.database.Model(&models.FocusSession{}).
		Select(`COUNT(*) AS total_sessions,
			COALESCE(SUM(CASE WHEN was_completed THEN 1 ELSE 0 END), 0) AS completed_sessions,
			COALESCE(SUM(duration_minutes), 0) AS total_minutes,
			COALESCE(AVG(duration_minutes), 0) AS avg_duration`).
		Where("user_id = ? AND started_at >= ?", userID, since.UTC()).
		Scan(&stats).Error; err != nil {
		return models.FocusStats{}, err
	}
	return stats, nil
}
