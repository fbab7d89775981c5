package services

import (
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/ascend/internal/models"
)

func TestAwardXPConcurrentIncrementsAreNotLost(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	user := createServicesTestUser(t, repositories, "concurrent@example.com")
	services := newStoreBackedServices(repositories)

	const workers = 24
	const amount = int64(7)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for index := 0; index < workers; index++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := services.gamification.AwardXP(user.ID, amount, "concurrency"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("AwardXP() unexpected error: %v", err)
	}

	balance, err := repositories.Users.LoadXPBalance(user.ID)
	if err != nil {
		t.Fatalf("load balance: %v", err)
	}
	if balance.XP != workers*amount {
		t.Fatalf("expected xp %d, got %d", workers*amount, balance.XP)
	}
	if balance.Level != LevelFromXP(balance.XP) {
		t.Fatalf("expected stored level %d, got %d", LevelFromXP(balance.XP), balance.Level)
	}
}

func TestAwardXPConcurrentThresholdCrossingReportsOneLevelUp(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	user := createServicesTestUser(t, repositories, "threshold@example.com")
	services := newStoreBackedServices(repositories)

	// 24 * 7 = 168 XP crosses the level 1 threshold exactly once.
	const workers = 24
	const amount = int64(7)

	var wg sync.WaitGroup
	awards := make(chan XPAward, workers)
	errs := make(chan error, workers)
	for loopIndex := 0; loopIndex < workers; loopIndex++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			award, err := services.gamification.AwardXP(user.ID, amount, "concurrency")
			if err != nil {
				errs <- err
				return
			}
			awards <- award
		}()
	}
	wg.Wait()
	close(errs)
	close(awards)
	for err := range errs {
		t.Fatalf("AwardXP() unexpected error: %v", err)
	}

	levelUps := 0
	for award := range awards {
		if award.LevelUp {
			levelUps++
		}
	}
	if levelUps != 1 {
		t.Fatalf("expected exactly one level up, got %d", levelUps)
	}
}

func TestAwardXPLevelUpPersistsLevel(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	user := createServicesTestUser(t, repositories, "levelup@example.com")
	services := newStoreBackedServices(repositories)

	first, err := services.gamification.AwardXP(user.ID, 99, "test")
	if err != nil {
		t.Fatalf("AwardXP() unexpected error: %v", err)
	}
	if first.LevelUp || first.Level != 0 {
		t.Fatalf("expected no level up at 99 xp, got %#v", first)
	}

	second, err := services.gamification.AwardXP(user.ID, 1, "test")
	if err != nil {
		t.Fatalf("AwardXP() unexpected error: %v", err)
	}
	if !second.LevelUp || second.Level != 1 || second.XP != 100 {
		t.Fatalf("expected level up to 1 at 100 xp, got %#v", second)
	}

	stored, err := repositories.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Level != 1 || stored.XP != 100 {
		t.Fatalf("expected stored xp=100 level=1, got xp=%d level=%d", stored.XP, stored.Level)
	}
}

func TestCheckAndAwardIsIdempotentAgainstStore(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	user := createServicesTestUser(t, repositories, "achiever@example.com")
	services := newStoreBackedServices(repositories)

	task := models.Task{UserID: user.ID, Title: "Write report", Priority: models.PriorityMedium, Category: models.DefaultTaskCategory, Status: models.TaskStatusTodo}
	if err := repositories.Tasks.Create(&task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	first, err := services.achievements.CheckAndAward(user.ID)
	if err != nil {
		t.Fatalf("CheckAndAward() unexpected error: %v", err)
	}
	if len(first) != 1 || first[0] != models.AchievementFirstTask {
		t.Fatalf("expected [first_task], got %#v", first)
	}

	second, err := services.achievements.CheckAndAward(user.ID)
	if err != nil {
		t.Fatalf("CheckAndAward() unexpected error: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected no new achievements on second pass, got %#v", second)
	}

	count, err := repositories.Achievements.CountByUser(user.ID)
	if err != nil {
		t.Fatalf("count achievements: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one achievement row, got %d", count)
	}
	balance, err := repositories.Users.LoadXPBalance(user.ID)
	if err != nil {
		t.Fatalf("load balance: %v", err)
	}
	if balance.XP != XPAchievementBonus {
		t.Fatalf("expected bonus xp %d, got %d", XPAchievementBonus, balance.XP)
	}
}

func TestInsertIfAbsentTreatsDuplicateAsNoop(t *testing.T) {
	repositories := openServicesTestRepositories(t)
	user := createServicesTestUser(t, repositories, "race@example.com")

	inserted, err := repositories.Achievements.InsertIfAbsent(user.ID, models.AchievementFirstGoal, time.Now())
	if err != nil || !inserted {
		t.Fatalf("expected first insert to succeed, inserted=%v err=%v", inserted, err)
	}
	inserted, err = repositories.Achievements.InsertIfAbsent(user.ID, models.AchievementFirstGoal, time.Now())
	if err != nil {
		t.Fatalf("expected duplicate insert without error, got %v", err)
	}
	if inserted {
		t.Fatalf("expected duplicate insert to report false")
	}
}
