package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/ascend/internal/db"
	"github.com/terraincognita07/ascend/internal/models"
)

func openServicesTestRepositories(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ascend-services.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("load sql db handle: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db.NewRepositories(database)
}

func createServicesTestUser(t *testing.T, repositories *db.Repositories, email string) models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		FullName:     "Test User",
		CreatedAt:    time.Now().UTC(),
	}
	if err := repositories.Users.Create(&user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

type storeBackedServices struct {
	gamification *GamificationService
	achievements *AchievementService
}

func newStoreBackedServices(repositories *db.Repositories) storeBackedServices {
	gamification := NewGamificationService(repositories.Users, repositories.Achievements, repositories.Habits, nil)
	achievements := NewAchievementService(
		repositories.Achievements,
		repositories.Tasks,
		repositories.Habits,
		repositories.Users,
		repositories.Goals,
		gamification,
		nil,
	)
	return storeBackedServices{gamification: gamification, achievements: achievements}
}
