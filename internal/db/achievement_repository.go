package db

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository struct {
	database *gorm.DB
}

func NewAchievementRepository(database *gorm.DB) *AchievementRepository {
	return &AchievementRepository{database: database}
}

// InsertIfAbsent relies on the (user_id, achievement_type) unique index. A
// duplicate insert is not an error; the returned flag is false instead.
func (repo *AchievementRepository) InsertIfAbsent(userID uint, achievementType string, earnedAt time.Time) (bool, error) {
	achievement := models.Achievement{
		UserID:          userID,
		AchievementType: achievementType,
		EarnedAt:        earnedAt.UTC(),
	}
	result := repo.database.Clauses(clause.OnConflict{DoNothing: true}).Create(&achievement)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *AchievementRepository) ListTypesByUser(userID uint) ([]string, error) {
	types := make([]string, 0)
	if err := repo.database.Model(&models.Achievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_type", &types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (repo *AchievementRepository) ListByUser(userID uint) ([]models.Achievement, error) {
	achievements := make([]models.Achievement, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("earned_at DESC, id DESC").Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

func (repo *AchievementRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.Achievement{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
