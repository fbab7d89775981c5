package services

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/models"
)

const (
	maxHabitNameLength  = 120
	habitSummaryLimit   = 5
	achievementStreakAt = 7
)

type HabitRepository interface {
	Create(habit *models.Habit) error
	ListByUser(userID uint) ([]models.Habit, error)
	FindByIDForUser(habitID uint, userID uint) (models.Habit, error)
	UpdateFields(habitID uint, userID uint, updates map[string]any) error
	SaveCompletion(habit models.Habit, previous *time.Time) (bool, error)
	ResetStreak(habitID uint, userID uint) error
	Delete(habitID uint, userID uint) (bool, error)
	ListTopByStreak(userID uint, limit int) ([]models.Habit, error)
	Stats(userID uint) (models.HabitStats, error)
}

type AchievementChecker interface {
	CheckAndAward(userID uint) ([]string, error)
}

type HabitInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

// HabitUpdate carries the patchable habit fields. Nil fields are left as is.
type HabitUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
}

type HabitCompletion struct {
	Habit           models.Habit `json:"habit"`
	Completed       bool         `json:"completed"`
	XP              *XPAward     `json:"xp,omitempty"`
	NewAchievements []string     `json:"new_achievements"`
}

type HabitWeekConsistency struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	DaysCompleted      int     `json:"days_completed"`
	ConsistencyPercent float64 `json:"consistency_percent"`
}

type HabitService struct {
	habits       HabitRepository
	xp           XPAwarder
	achievements AchievementChecker
	location     *time.Location
	logger       *log.Logger
}

func NewHabitService(habits HabitRepository, xp XPAwarder, achievements AchievementChecker, location *time.Location, logger *log.Logger) *HabitService {
	if location == nil {
		location = time.UTC
	}
	return &HabitService{
		habits:       habits,
		xp:           xp,
		achievements: achievements,
		location:     location,
		logger:       logging.OrDiscard(logger),
	}
}

func (service *HabitService) CreateHabit(userID uint, input HabitInput) (models.Habit, *XPAward, error) {
	name, err := normalizeHabitName(input.Name)
	if err != nil {
		return models.Habit{}, nil, err
	}
	frequency := strings.ToLower(strings.TrimSpace(input.Frequency))
	if frequency == "" {
		frequency = models.FrequencyDaily
	}
	if !models.IsValidHabitFrequency(frequency) {
		return models.Habit{}, nil, ErrInvalidHabitFrequency
	}

	habit := models.Habit{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Frequency:   frequency,
	}
	if err := service.habits.Create(&habit); err != nil {
		return models.Habit{}, nil, fmt.Errorf("create habit: %w", err)
	}

	award, err := service.xp.AwardXP(userID, XPHabitCreated, SourceHabitCreated)
	if err != nil {
		return habit, nil, err
	}
	return habit, &award, nil
}

func (service *HabitService) ListHabits(userID uint) ([]models.Habit, error) {
	return service.habits.ListByUser(userID)
}

func (service *HabitService) GetHabit(userID uint, habitID uint) (models.Habit, error) {
	habit, err := service.habits.FindByIDForUser(habitID, userID)
	if err != nil {
		return models.Habit{}, mapMissing(err, ErrHabitNotFound)
	}
	return habit, nil
}

func (service *HabitService) UpdateHabit(userID uint, habitID uint, update HabitUpdate) (models.Habit, error) {
	if _, err := service.GetHabit(userID, habitID); err != nil {
		return models.Habit{}, err
	}

	fields := make(map[string]any)
	if update.Name != nil {
		name, err := normalizeHabitName(*update.Name)
		if err != nil {
			return models.Habit{}, err
		}
		fields["name"] = name
	}
	if update.Description != nil {
		fields["description"] = strings.TrimSpace(*update.Description)
	}
	if update.Frequency != nil {
		frequency := strings.ToLower(strings.TrimSpace(*update.Frequency))
		if !models.IsValidHabitFrequency(frequency) {
			return models.Habit{}, ErrInvalidHabitFrequency
		}
		fields["frequency"] = frequency
	}

	if len(fields) > 0 {
		if err := service.habits.UpdateFields(habitID, userID, fields); err != nil {
			return models.Habit{}, fmt.Errorf("update habit: %w", err)
		}
	}
	return service.GetHabit(userID, habitID)
}

func (service *HabitService) DeleteHabit(userID uint, habitID uint) error {
	deleted, err := service.habits.Delete(habitID, userID)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if !deleted {
		return ErrHabitNotFound
	}
	return nil
}

// CompleteHabit records a completion at now. A second completion on the same
// local day returns the habit unchanged and grants nothing, and so does a
// completion whose write finds last_completed already moved.
func (service *HabitService) CompleteHabit(userID uint, habitID uint, now time.Time) (HabitCompletion, error) {
	habit, err := service.GetHabit(userID, habitID)
	if err != nil {
		return HabitCompletion{}, err
	}

	updated, changed, err := ApplyHabitCompletion(habit, now, service.location)
	if err != nil {
		return HabitCompletion{}, err
	}
	result := HabitCompletion{Habit: updated, Completed: changed, NewAchievements: []string{}}
	if !changed {
		return result, nil
	}

	saved, err := service.habits.SaveCompletion(updated, habit.LastCompleted)
	if err != nil {
		return HabitCompletion{}, fmt.Errorf("save habit streak: %w", err)
	}
	if !saved {
		service.logger.Debug("habit completion lost to a concurrent write", "user_id", userID, "habit_id", habitID)
		current, err := service.GetHabit(userID, habitID)
		if err != nil {
			return HabitCompletion{}, err
		}
		return HabitCompletion{Habit: current, NewAchievements: []string{}}, nil
	}
	service.logger.Debug("habit completed", "user_id", userID, "habit_id", habitID, "streak", updated.StreakCount)

	award, err := service.xp.AwardXP(userID, XPHabitCompleted, SourceHabitCompleted)
	if err != nil {
		return result, err
	}
	result.XP = &award

	if updated.StreakCount >= achievementStreakAt {
		earned, err := service.achievements.CheckAndAward(userID)
		if err != nil {
			service.logger.Warn("achievement check failed", "user_id", userID, "err", err)
		}
		result.NewAchievements = append(result.NewAchievements, earned...)
	}
	return result, nil
}

func (service *HabitService) ResetStreak(userID uint, habitID uint) (models.Habit, error) {
	habit, err := service.GetHabit(userID, habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if err := service.habits.ResetStreak(habitID, userID); err != nil {
		return models.Habit{}, fmt.Errorf("reset habit streak: %w", err)
	}
	return ResetHabitStreak(habit), nil
}

func (service *HabitService) HabitsDueToday(userID uint, now time.Time) ([]models.Habit, error) {
	habits, err := service.habits.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	due := make([]models.Habit, 0, len(habits))
	for _, habit := range habits {
		if IsHabitDue(habit, now, service.location) {
			due = append(due, habit)
		}
	}
	return due, nil
}

func (service *HabitService) StreakSummary(userID uint) ([]models.Habit, error) {
	return service.habits.ListTopByStreak(userID, habitSummaryLimit)
}

func (service *HabitService) Stats(userID uint) (models.HabitStats, error) {
	return service.habits.Stats(userID)
}

func normalizeHabitName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || len([]rune(name)) > maxHabitNameLength {
		return "", ErrInvalidHabitName
	}
	return name, nil
}

// WeeklyConsistency covers habits completed in the last seven local days.
// Only the last completion is stored, so for daily habits the days done are
// the current streak clipped to the part of it inside the window.
func (service *HabitService) WeeklyConsistency(userID uint, now time.Time) ([]HabitWeekConsistency, error) {
	habits, err := service.habits.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	windowStart := DateAtLocation(now, service.location).AddDate(0, 0, -(habitConsistencyWindowDays - 1))

	consistency := make([]HabitWeekConsistency, 0, len(habits))
	for _, habit := range habits {
		if habit.LastCompleted == nil || habit.LastCompleted.Before(windowStart) {
			continue
		}
		days := 1
		if habit.Frequency == models.FrequencyDaily {
			inWindow := CalendarDaysBetween(windowStart, *habit.LastCompleted, service.location) + 1
			days = max(min(habit.StreakCount, inWindow), 1)
		}
		consistency = append(consistency, HabitWeekConsistency{
			ID:                 habit.ID,
			Name:               habit.Name,
			DaysCompleted:      days,
			ConsistencyPercent: roundTo(float64(days)/habitConsistencyWindowDays*100, 2),
		})
	}
	slices.SortStableFunc(consistency, func(left, right HabitWeekConsistency) int {
		if byPercent := cmp.Compare(right.ConsistencyPercent, left.ConsistencyPercent); byPercent != 0 {
			return byPercent
		}
		return cmp.Compare(left.ID, right.ID)
	})
	return consistency, nil
}
