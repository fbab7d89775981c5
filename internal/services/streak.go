package services

import (
	"time"

	"github.com/terraincognita07/ascend/internal/models"
)

// ApplyHabitCompletion applies one completion at now to habit. Days are
// compared in location with time of day discarded. The boolean result is
// false when the habit was already completed on the same calendar day, in
// which case habit is returned untouched.
func ApplyHabitCompletion(habit models.Habit, now time.Time, location *time.Location) (models.Habit, bool, error) {
	streak := 1
	if habit.LastCompleted != nil {
		switch difference := CalendarDaysBetween(*habit.LastCompleted, now, location); {
		case difference < 0:
			return habit, false, ErrBackdatedCompletion
		case difference == 0:
			return habit, false, nil
		case difference == 1:
			streak = habit.StreakCount + 1
		}
	}

	completedAt := now.UTC()
	habit.StreakCount = streak
	if streak > habit.BestStreak {
		habit.BestStreak = streak
	}
	habit.LastCompleted = &completedAt
	return habit, true, nil
}

// ResetHabitStreak zeroes the running streak and keeps the best streak.
func ResetHabitStreak(habit models.Habit) models.Habit {
	habit.StreakCount = 0
	return habit
}

// IsHabitDue reports whether the habit has not been completed yet in the
// period containing now: the day for daily habits, the Monday-based week for
// weekly habits and the calendar month for monthly habits.
func IsHabitDue(habit models.Habit, now time.Time, location *time.Location) bool {
	if habit.LastCompleted == nil {
		return true
	}

	var periodStart time.Time
	switch habit.Frequency {
	case models.FrequencyWeekly:
		periodStart = WeekStart(now, location)
	case models.FrequencyMonthly:
		periodStart = MonthStart(now, location)
	default:
		periodStart = DateAtLocation(now, location)
	}
	return habit.LastCompleted.Before(periodStart)
}
