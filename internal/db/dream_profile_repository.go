package db

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

type DreamProfileRepository struct {
	database *gorm.DB
}

func NewDreamProfileRepository(database *gorm.DB) *DreamProfileRepository {
	return &DreamProfileRepository{database: database}
}

func (repo *DreamProfileRepository) FindByUser(userID uint) (models.DreamProfile, error) {
	var profile models.DreamProfile
	if err := repo.database.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.DreamProfile{}, err
	}
	return profile, nil
}

func (repo *DreamProfileRepository) Create(profile *models.DreamProfile) error {
	return repo.database.Create(profile).Error
}

func (repo *DreamProfileRepository) Update(profile *models.DreamProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	return repo.database.Model(&models.DreamProfile{}).
		Where("user_id = ?", profile.UserID).
		Select("vision_statement", "core_values", "three_year_goal", "identity_statements", "updated_at").
		Updates(profile).Error
}

func (repo *DreamProfileRepository) CreateReflection(reflection *models.Reflection) error {
	return repo.database.Create(reflection).Error
}

func (repo *DreamProfileRepository) ListReflections(userID uint, limit int) ([]models.Reflection, error) {
	reflections := make([]models.Reflection, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reflections).Error; err != nil {
		return nil, err
	}
	return reflections, nil
}
