package services

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/metrics"
	"github.com/terraincognita07/ascend/internal/models"
)

const (
	sevenDayStreakThreshold = 7
	hundredXPThreshold      = 100
	levelMilestoneStep      = 5
)

type AchievementStore interface {
	InsertIfAbsent(userID uint, achievementType string, earnedAt time.Time) (bool, error)
	ListTypesByUser(userID uint) ([]string, error)
}

type AchievementTaskCounter interface {
	CountByUser(userID uint) (int64, error)
}

type AchievementStreakReader interface {
	MaxStreak(userID uint) (int, error)
}

type AchievementXPReader interface {
	LoadXPBalance(userID uint) (models.XPBalance, error)
}

type AchievementGoalCounter interface {
	CountCompleted(userID uint) (int64, error)
}

type XPAwarder interface {
	AwardXP(userID uint, amount int64, source string) (XPAward, error)
}

// AchievementSnapshot is the aggregate state the rules are evaluated against.
type AchievementSnapshot struct {
	TaskCount      int64
	MaxStreak      int
	XP             int64
	CompletedGoals int64
}

type AchievementService struct {
	store  AchievementStore
	tasks  AchievementTaskCounter
	habits AchievementStreakReader
	users  AchievementXPReader
	goals  AchievementGoalCounter
	xp     XPAwarder
	logger *log.Logger
}

func NewAchievementService(store AchievementStore, tasks AchievementTaskCounter, habits AchievementStreakReader, users AchievementXPReader, goals AchievementGoalCounter, xp XPAwarder, logger *log.Logger) *AchievementService {
	return &AchievementService{
		store:  store,
		tasks:  tasks,
		habits: habits,
		users:  users,
		goals:  goals,
		xp:     xp,
		logger: logging.OrDiscard(logger),
	}
}

// QualifyingAchievements lists every achievement type the snapshot satisfies,
// earned or not, in rule order.
func QualifyingAchievements(snapshot AchievementSnapshot) []string {
	qualifying := make([]string, 0, 5)
	if snapshot.TaskCount >= 1 {
		qualifying = append(qualifying, models.AchievementFirstTask)
	}
	if snapshot.MaxStreak >= sevenDayStreakThreshold {
		qualifying = append(qualifying, models.AchievementSevenDayStreak)
	}
	if snapshot.XP >= hundredXPThreshold {
		qualifying = append(qualifying, models.AchievementHundredXP)
	}
	if level := LevelFromXP(snapshot.XP); level > 0 && level%levelMilestoneStep == 0 {
		qualifying = append(qualifying, LevelMilestoneAchievement(level))
	}
	if snapshot.CompletedGoals >= 1 {
		qualifying = append(qualifying, models.AchievementFirstGoal)
	}
	return qualifying
}

func LevelMilestoneAchievement(level int) string {
	return fmt.Sprintf("level_%d_reached", level)
}

// CheckAndAward evaluates the rules once against a single snapshot and
// records each newly qualifying type. Every new record grants the bonus XP;
// that bonus does not feed back into this pass.
func (service *AchievementService) CheckAndAward(userID uint) ([]string, error) {
	snapshot, err := service.snapshot(userID)
	if err != nil {
		return nil, err
	}
	earnedTypes, err := service.store.ListTypesByUser(userID)
	if err != nil {
		return nil, err
	}
	earned := make(map[string]bool, len(earnedTypes))
	for _, achievementType := range earnedTypes {
		earned[achievementType] = true
	}

	awarded := make([]string, 0)
	now := time.Now().UTC()
	for _, achievementType := range QualifyingAchievements(snapshot) {
		if earned[achievementType] {
			continue
		}
		inserted, err := service.store.InsertIfAbsent(userID, achievementType, now)
		if err != nil {
			return awarded, fmt.Errorf("record achievement %s: %w", achievementType, err)
		}
		if !inserted {
			continue
		}

		awarded = append(awarded, achievementType)
		metrics.AchievementsAwarded.WithLabelValues(achievementType).Inc()
		service.logger.Info("achievement earned", "user_id", userID, "type", achievementType)

		if _, err := service.xp.AwardXP(userID, XPAchievementBonus, SourceAchievement); err != nil {
			return awarded, fmt.Errorf("achievement bonus: %w", err)
		}
	}
	return awarded, nil
}

func (service *AchievementService) snapshot(userID uint) (AchievementSnapshot, error) {
	balance, err := service.users.LoadXPBalance(userID)
	if err != nil {
		return AchievementSnapshot{}, mapMissing(err, ErrUserNotFound)
	}
	taskCount, err := service.tasks.CountByUser(userID)
	if err != nil {
		return AchievementSnapshot{}, err
	}
	maxStreak, err := service.habits.MaxStreak(userID)
	if err != nil {
		return AchievementSnapshot{}, err
	}
	completedGoals, err := service.goals.CountCompleted(userID)
	if err != nil {
		return AchievementSnapshot{}, err
	}

	return AchievementSnapshot{
		TaskCount:      taskCount,
		MaxStreak:      maxStreak,
		XP:             balance.XP,
		CompletedGoals: completedGoals,
	}, nil
}
