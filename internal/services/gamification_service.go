package services

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/metrics"
	"github.com/terraincognita07/ascend/internal/models"
)

// XP granted per domain event.
const (
	XPHabitCreated        int64 = 10
	XPHabitCompleted      int64 = 5
	XPGoalCreated         int64 = 15
	XPGoalProgress        int64 = 10
	XPGoalCompleted       int64 = 50
	XPTaskCompleted       int64 = 10
	XPDreamProfileCreated int64 = 25
	XPAchievementBonus    int64 = 25
)

const (
	SourceHabitCreated        = "habit_created"
	SourceHabitCompleted      = "habit_completed"
	SourceGoalCreated         = "goal_created"
	SourceGoalProgress        = "goal_progress"
	SourceGoalCompleted       = "goal_completed"
	SourceTaskCompleted       = "task_completed"
	SourceFocusSession        = "focus_session"
	SourceDreamProfileCreated = "dream_profile_created"
	SourceAchievement         = "achievement"
)

const defaultLeaderboardLimit = 10

type GamificationUserRepository interface {
	IncrementXP(userID uint, amount int64) (models.XPBalance, error)
	RaiseLevel(userID uint, level int) (bool, error)
	LoadXPBalance(userID uint) (models.XPBalance, error)
	SetXPAndLevel(userID uint, xp int64, level int) error
	Leaderboard(limit int) ([]models.LeaderboardEntry, error)
	CountWithMoreXP(xp int64) (int64, error)
}

type GamificationAchievementReader interface {
	CountByUser(userID uint) (int64, error)
	ListByUser(userID uint) ([]models.Achievement, error)
}

type GamificationStreakReader interface {
	CountActiveStreaks(userID uint) (int64, error)
}

type XPAward struct {
	XP      int64 `json:"xp"`
	Level   int   `json:"level"`
	LevelUp bool  `json:"level_up"`
}

type GamificationStats struct {
	XP                int64 `json:"xp"`
	Level             int   `json:"level"`
	NextLevelXP       int64 `json:"next_level_xp"`
	LevelProgress     int   `json:"level_progress"`
	AchievementCount  int64 `json:"achievement_count"`
	ActiveStreakCount int64 `json:"active_streak_count"`
}

type UserRank struct {
	Rank  int64 `json:"rank"`
	XP    int64 `json:"xp"`
	Level int   `json:"level"`
}

type GamificationService struct {
	users        GamificationUserRepository
	achievements GamificationAchievementReader
	streaks      GamificationStreakReader
	logger       *log.Logger
}

func NewGamificationService(users GamificationUserRepository, achievements GamificationAchievementReader, streaks GamificationStreakReader, logger *log.Logger) *GamificationService {
	return &GamificationService{
		users:        users,
		achievements: achievements,
		streaks:      streaks,
		logger:       logging.OrDiscard(logger),
	}
}

// AwardXP adds amount to the user's stored XP with a single SQL increment and
// persists the recomputed level only when it went up. LevelUp is true only for
// the award whose write actually raised the stored level. Achievement
// evaluation is left to the caller.
func (service *GamificationService) AwardXP(userID uint, amount int64, source string) (XPAward, error) {
	if amount <= 0 {
		return XPAward{}, ErrInvalidXPAmount
	}

	balance, err := service.users.IncrementXP(userID, amount)
	if err != nil {
		return XPAward{}, fmt.Errorf("award xp: %w", mapMissing(err, ErrUserNotFound))
	}

	oldLevel := balance.Level
	newLevel := LevelFromXP(balance.XP)
	levelUp := false
	if newLevel > oldLevel {
		raised, err := service.users.RaiseLevel(userID, newLevel)
		if err != nil {
			return XPAward{}, fmt.Errorf("persist level: %w", err)
		}
		levelUp = raised
	}
	newLevel = max(newLevel, oldLevel)

	metrics.RecordXPAward(source, amount, levelUp)
	service.logger.Debug("xp awarded", "user_id", userID, "amount", amount, "source", source, "xp", balance.XP)
	if levelUp {
		service.logger.Info("level up", "user_id", userID, "level", newLevel)
	}

	return XPAward{XP: balance.XP, Level: newLevel, LevelUp: levelUp}, nil
}

// GetGamificationStats derives the level from XP on every read so a stored
// level left behind by a failed write never surfaces.
func (service *GamificationService) GetGamificationStats(userID uint) (GamificationStats, error) {
	balance, err := service.users.LoadXPBalance(userID)
	if err != nil {
		return GamificationStats{}, mapMissing(err, ErrUserNotFound)
	}
	achievementCount, err := service.achievements.CountByUser(userID)
	if err != nil {
		return GamificationStats{}, err
	}
	activeStreaks, err := service.streaks.CountActiveStreaks(userID)
	if err != nil {
		return GamificationStats{}, err
	}

	level := LevelFromXP(balance.XP)
	return GamificationStats{
		XP:                balance.XP,
		Level:             level,
		NextLevelXP:       XPThresholdForLevel(level + 1),
		LevelProgress:     LevelProgressPercent(balance.XP),
		AchievementCount:  achievementCount,
		ActiveStreakCount: activeStreaks,
	}, nil
}

func (service *GamificationService) ListAchievements(userID uint) ([]models.Achievement, error) {
	return service.achievements.ListByUser(userID)
}

func (service *GamificationService) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultLeaderboardLimit
	}
	entries, err := service.users.Leaderboard(limit)
	if err != nil {
		return nil, err
	}
	for index := range entries {
		entries[index].Level = LevelFromXP(entries[index].XP)
	}
	return entries, nil
}

func (service *GamificationService) UserRank(userID uint) (UserRank, error) {
	balance, err := service.users.LoadXPBalance(userID)
	if err != nil {
		return UserRank{}, mapMissing(err, ErrUserNotFound)
	}
	ahead, err := service.users.CountWithMoreXP(balance.XP)
	if err != nil {
		return UserRank{}, err
	}
	return UserRank{Rank: ahead + 1, XP: balance.XP, Level: LevelFromXP(balance.XP)}, nil
}

// CorrectXP is the administrative override and the only path that may lower
// a user's XP. The stored level follows the new total in both directions.
func (service *GamificationService) CorrectXP(userID uint, xp int64) (XPAward, error) {
	if xp < 0 {
		return XPAward{}, ErrInvalidXPTotal
	}
	level := LevelFromXP(xp)
	if err := service.users.SetXPAndLevel(userID, xp, level); err != nil {
		return XPAward{}, mapMissing(err, ErrUserNotFound)
	}
	service.logger.Warn("xp corrected", "user_id", userID, "xp", xp, "level", level)
	return XPAward{XP: xp, Level: level}, nil
}
