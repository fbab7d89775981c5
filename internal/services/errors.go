package services

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrHabitNotFound        = errors.New("habit not found")
	ErrGoalNotFound         = errors.New("goal not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrFocusSessionNotFound = errors.New("focus session not found")
	ErrDreamProfileNotFound = errors.New("dream profile not found")
)

var (
	ErrInvalidXPAmount       = errors.New("xp amount must be positive")
	ErrInvalidXPTotal        = errors.New("xp total must not be negative")
	ErrInvalidProgress       = errors.New("progress must be between 0 and 100")
	ErrBackdatedCompletion   = errors.New("completion predates last recorded completion")
	ErrInvalidHabitName      = errors.New("invalid habit name")
	ErrInvalidHabitFrequency = errors.New("invalid habit frequency")
	ErrInvalidGoalTitle      = errors.New("invalid goal title")
	ErrInvalidGoalStatus     = errors.New("invalid goal status")
	ErrInvalidTaskTitle      = errors.New("invalid task title")
	ErrInvalidTaskPriority   = errors.New("invalid task priority")
	ErrInvalidTaskStatus     = errors.New("invalid task status")
	ErrInvalidFocusDuration  = errors.New("focus duration must be between 1 and 480 minutes")
	ErrInvalidReflection     = errors.New("reflection content is required")
	ErrInvalidDreamProfile   = errors.New("invalid dream profile")
	ErrInvalidScheduleHours  = errors.New("available hours must be between 0 and 24")
	ErrInvalidEstimate       = errors.New("task type is required")
	ErrInvalidWeeklyCounts   = errors.New("tasks completed and tasks missed are required")
	ErrInvalidPlanRequest    = errors.New("goal and deadline are required")
	ErrInvalidBehindAnalysis = errors.New("missed tasks and completion rate are required")
	ErrInvalidMetrics        = errors.New("dream metrics are required")
)

var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrFocusSessionEnded = errors.New("focus session already ended")
)

// IsNotFound reports whether err belongs to the not-found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrHabitNotFound) ||
		errors.Is(err, ErrGoalNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrFocusSessionNotFound) ||
		errors.Is(err, ErrDreamProfileNotFound)
}

func IsInvalidInput(err error) bool {
	for _, target := range []error{
		ErrInvalidXPAmount,
		ErrInvalidXPTotal,
		ErrInvalidProgress,
		ErrBackdatedCompletion,
		ErrInvalidHabitName,
		ErrInvalidHabitFrequency,
		ErrInvalidGoalTitle,
		ErrInvalidGoalStatus,
		ErrInvalidTaskTitle,
		ErrInvalidTaskPriority,
		ErrInvalidTaskStatus,
		ErrInvalidFocusDuration,
		ErrInvalidReflection,
		ErrInvalidDreamProfile,
		ErrInvalidScheduleHours,
		ErrInvalidEstimate,
		ErrInvalidWeeklyCounts,
		ErrInvalidPlanRequest,
		ErrInvalidBehindAnalysis,
		ErrInvalidMetrics,
		ErrAuthCredentialsInvalid,
		ErrWeakPassword,
		ErrInvalidFullName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrFocusSessionEnded)
}
