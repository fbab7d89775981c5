package db

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, error) {
	var user models.User
	if err := repo.database.Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(email string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	return repo.database.Create(user).Error
}

func (repo *UserRepository) UpdatePassword(userID uint, passwordHash string) error {
	return repo.database.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
}

// IncrementXP adds amount to the stored total in SQL and reads back the new
// total together with the level stored before this call.
func (repo *UserRepository) IncrementXP(userID uint, amount int64) (models.XPBalance, error) {
	var balance models.XPBalance
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", userID).
			UpdateColumns(map[string]any{
				"xp":         gorm.Expr("xp + ?", amount),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.User{}).Select("xp", "level").Where("id = ?", userID).Take(&balance).Error
	})
	if err != nil {
		return models.XPBalance{}, err
	}
	return balance, nil
}

// RaiseLevel never lowers the stored level, so a slower concurrent award
// cannot overwrite a higher level written by a faster one. It reports whether
// this call moved the level; of two awards crossing the same threshold only
// one sees true.
func (repo *UserRepository) RaiseLevel(userID uint, level int) (bool, error) {
	result := repo.database.Model(&models.User{}).
		Where("id = ? AND level < ?", userID, level).
		UpdateColumn("level", level)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (repo *UserRepository) SetXPAndLevel(userID uint, xp int64, level int) error {
	result := repo.database.Model(&models.User{}).Where("id = ?", userID).UpdateColumns(map[string]any{
		"xp":         xp,
		"level":      level,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (repo *UserRepository) LoadXPBalance(userID uint) (models.XPBalance, error) {
	var balance models.XPBalance
	if err := repo.database.Model(&models.User{}).Select("xp", "level").Where("id = ?", userID).Take(&balance).Error; err != nil {
		return models.XPBalance{}, err
	}
	return balance, nil
}

func (repo *UserRepository) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0)
	if err := repo.database.Model(&models.User{}).
		Select("id", "full_name", "xp", "level").
		Order("xp DESC, id ASC").
		Limit(limit).
		Scan(&entries).Error; err != nil {
		return nil, err
	}
	for index := range entries {
		entries[index].Rank = index + 1
	}
	return entries, nil
}

func (repo *UserRepository) CountWithMoreXP(xp int64) (int64, error) {
	var count int64
	if err := repo.database.Model(&models.User{}).Where("xp > ?", xp).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) Delete(userID uint) error {
	return repo.database.Delete(&models.User{}, userID).Error
}
