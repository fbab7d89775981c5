package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

type stubGamificationUsers struct {
	balance      models.XPBalance
	incrementErr error
	raised       []int
	setXP        int64
	setLevel     int
	leaderboard  []models.LeaderboardEntry
	ahead        int64

	// levelAlreadyRaised simulates a concurrent award that wrote the new
	// level between this award's increment and its level write.
	levelAlreadyRaised bool
}

func (stub *stubGamificationUsers) IncrementXP(_ uint, amount int64) (models.XPBalance, error) {
	if stub.incrementErr != nil {
		return models.XPBalance{}, stub.incrementErr
	}
	stub.balance.XP += amount
	return stub.balance, nil
}

func (stub *stubGamificationUsers) RaiseLevel(_ uint, level int) (bool, error) {
	stub.raised = append(stub.raised, level)
	if level > stub.balance.Level && !stub.levelAlreadyRaised {
		stub.balance.Level = level
		return true, nil
	}
	return false, nil
}

func (stub *stubGamificationUsers) LoadXPBalance(uint) (models.XPBalance, error) {
	if stub.incrementErr != nil {
		return models.XPBalance{}, stub.incrementErr
	}
	return stub.balance, nil
}

func (stub *stubGamificationUsers) SetXPAndLevel(_ uint, xp int64, level int) error {
	stub.setXP = xp
	stub.setLevel = level
	return nil
}

func (stub *stubGamificationUsers) Leaderboard(int) ([]models.LeaderboardEntry, error) {
	return stub.leaderboard, nil
}

func (stub *stubGamificationUsers) CountWithMoreXP(int64) (int64, error) {
	return stub.ahead, nil
}

type stubAchievementCounts struct {
	count int64
}

func (stub *stubAchievementCounts) CountByUser(uint) (int64, error) {
	return stub.count, nil
}

func (stub *stubAchievementCounts) ListByUser(uint) ([]models.Achievement, error) {
	return nil, nil
}

type stubStreakCounts struct {
	active int64
}

func (stub *stubStreakCounts) CountActiveStreaks(uint) (int64, error) {
	return stub.active, nil
}

func newStubGamificationService(users *stubGamificationUsers) *GamificationService {
	return NewGamificationService(users, &stubAchievementCounts{count: 2}, &stubStreakCounts{active: 3}, nil)
}

func TestAwardXPRejectsNonPositiveAmount(t *testing.T) {
	users := &stubGamificationUsers{balance: models.XPBalance{XP: 50}}
	service := newStubGamificationService(users)

	for _, amount := range []int64{0, -5} {
		if _, err := service.AwardXP(1, amount, "test"); !errors.Is(err, ErrInvalidXPAmount) {
			t.Fatalf("expected ErrInvalidXPAmount for %d, got %v", amount, err)
		}
	}
	if users.balance.XP != 50 {
		t.Fatalf("expected xp untouched, got %d", users.balance.XP)
	}
}

func TestAwardXPReportsLevelUp(t *testing.T) {
	users := &stubGamificationUsers{balance: models.XPBalance{XP: 90, Level: 0}}
	service := newStubGamificationService(users)

	award, err := service.AwardXP(1, 15, SourceGoalCreated)
	if err != nil {
		t.Fatalf("AwardXP() unexpected error: %v", err)
	}
	if award.XP != 105 || award.Level != 1 || !award.LevelUp {
		t.Fatalf("expected xp=105 level=1 levelUp, got %#v", award)
	}
	if len(users.raised) != 1 || users.raised[0] != 1 {
		t.Fatalf("expected level 1 persisted once, got %#v", users.raised)
	}
}

func TestAwardXPLosingLevelRaceReportsNoLevelUp(t *testing.T) {
	users := &stubGamificationUsers{balance: models.XPBalance{XP: 90, Level: 0}, levelAlreadyRaised: true}
	service := newStubGamificationService(users)

	award, err := service.AwardXP(1, 15, SourceGoalCreated)
	if err != nil {
		t.Fatalf("AwardXP() unexpected error: %v", err)
	}
	if award.LevelUp {
		t.Fatalf("expected no level up when the level write changed nothing, got %#v", award)
	}
	if award.Level != 1 || award.XP != 105 {
		t.Fatalf("expected xp=105 level=1, got %#v", award)
	}
}

func TestAwardXPWithoutLevelChangeSkipsLevelWrite(t *testing.T) {
	users := &stubGamificationUsers{balance: models.XPBalance{XP: 110, Level: 1}}
	service := newStubGamificationService(users)

	award, err := service.AwardXP(1, 5, SourceHabitCompleted)
	if err != nil {
		t.Fatalf("AwardXP() unexpected error: %v", err)
	}
	if award.LevelUp || award.Level != 1 || award.XP != 115 {
		t.Fatalf("unexpected award %#v", award)
	}
	if len(users.raised) != 0 {
		t.Fatalf("expected no level write, got %#v", users.raised)
	}
}

func TestAwardXPMapsMissingUser(t *testing.T) {
	users := &stubGamificationUsers{incrementErr: gorm.ErrRecordNotFound}
	service := newStubGamificationService(users)

	if _, err := service.AwardXP(99, 10, "test"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetGamificationStatsRecomputesLaggingLevel(t *testing.T) {
	users := &stubGamificationUsers{balance: models.XPBalance{XP: 450, Level: 1}}
	service := newStubGamificationService(users)

	stats, err := service.GetGamificationStats(1)
	if err != nil {
		t.Fatalf("GetGamificationStats() unexpected error: %v", err)
	}
	if stats.Level != 2 {
		t.Fatalf("expected level recomputed to 2, got %d", stats.Level)
	}
	if stats.NextLevelXP != 900 {
		t.Fatalf("expected next level xp 900, got %d", stats.NextLevelXP)
	}
	if stats.LevelProgress != 10 {
		t.Fatalf("expected level progress 10, got %d", stats.LevelProgress)
	}
	if stats.AchievementCount != 2 || stats.ActiveStreakCount != 3 {
		t.Fatalf("unexpected counts %#v", stats)
	}
}

func TestUserRankCountsUsersAhead(t *testing.T) {
	users := &stubGamificationUsers{balance: models.XPBalance{XP: 120}, ahead: 4}
	service := newStubGamificationService(users)

	rank, err := service.UserRank(1)
	if err != nil {
		t.Fatalf("UserRank() unexpected error: %v", err)
	}
	if rank.Rank != 5 || rank.Level != 1 {
		t.Fatalf("expected rank 5 level 1, got %#v", rank)
	}
}

func TestCorrectXPSetsDerivedLevel(t *testing.T) {
	users := &stubGamificationUsers{balance: models.XPBalance{XP: 2600, Level: 5}}
	service := newStubGamificationService(users)

	award, err := service.CorrectXP(1, 350)
	if err != nil {
		t.Fatalf("CorrectXP() unexpected error: %v", err)
	}
	if users.setXP != 350 || users.setLevel != 1 || award.Level != 1 {
		t.Fatalf("expected xp=350 level=1, got xp=%d level=%d", users.setXP, users.setLevel)
	}
	if _, err := service.CorrectXP(1, -1); !errors.Is(err, ErrInvalidXPTotal) {
		t.Fatalf("expected ErrInvalidXPTotal, got %v", err)
	}
}
