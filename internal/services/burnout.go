package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/ascend/internal/models"
)

const (
	BurnoutNone     = "none"
	BurnoutMild     = "mild"
	BurnoutModerate = "moderate"
	BurnoutSevere   = "severe"
)

const (
	FactorExcessiveFocusTime  = "excessive_focus_time"
	FactorDecliningCompletion = "declining_completion"
	FactorInconsistentFocus   = "inconsistent_focus"
	FactorLowActivityDays     = "low_activity_days"
	FactorIrregularSleep      = "irregular_sleep"
)

const (
	BurnoutWindowDays = 30

	excessiveDailyMinutes   = 480
	decliningRatio          = 0.7
	inconsistencyRatio      = 0.5
	minimumActiveDays       = 10
	lateNightStartHour      = 22
	earlyMorningEndHour     = 6
	lateSessionsPerDayLimit = 2
)

type BurnoutReport struct {
	Level   string   `json:"level"`
	Score   int      `json:"score"`
	Factors []string `json:"factors"`
}

type BurnoutRecovery struct {
	BurnoutReport
	Recommendations []string `json:"recommendations"`
}

var burnoutRecommendations = map[string][]string{
	BurnoutNone: {
		"Keep up your great balance!",
		"Continue your current routine",
	},
	BurnoutMild: {
		"Consider taking short breaks between sessions",
		"Aim for more consistent daily schedules",
		"Ensure you have time for personal activities",
	},
	BurnoutModerate: {
		"Take 1-2 days off this week",
		"Reduce daily focus time by 1-2 hours",
		"Prioritize only your most important tasks",
		"Get more sleep - aim for 8 hours",
	},
	BurnoutSevere: {
		"IMPORTANT: Take at least 2-3 days off this week",
		"Reduce your workload significantly",
		"Take breaks every 25 minutes (Pomodoro technique)",
		"Get professional support if needed",
		"Focus on self-care and rest",
	},
}

// EstimateBurnout scores the trailing window of focus sessions and tasks.
// Sessions are bucketed by their local start day and tasks by their local
// creation day. Without any active day the result is the empty "none" report.
func EstimateBurnout(sessions []models.FocusSession, tasks []models.Task, location *time.Location) BurnoutReport {
	minutesByDay := make(map[string]float64)
	lateSessions := 0
	for _, session := range sessions {
		minutesByDay[DayKey(session.StartedAt, location)] += float64(session.DurationMinutes)
		if isLateNightStart(session.StartedAt, location) {
			lateSessions++
		}
	}

	activeDays := len(minutesByDay)
	if activeDays == 0 {
		return BurnoutReport{Level: BurnoutNone, Score: 0, Factors: []string{}}
	}

	dailyMinutes := make([]float64, 0, activeDays)
	total := 0.0
	for _, minutes := range minutesByDay {
		dailyMinutes = append(dailyMinutes, minutes)
		total += minutes
	}
	mean := total / float64(activeDays)

	score := 0
	factors := make([]string, 0, 5)

	if mean > excessiveDailyMinutes {
		score += 30
		factors = append(factors, FactorExcessiveFocusTime)
	}
	if completionsDecline(dailyCompletionCounts(tasks, location)) {
		score += 25
		factors = append(factors, FactorDecliningCompletion)
	}
	if populationStdDev(dailyMinutes, mean) > inconsistencyRatio*mean {
		score += 20
		factors = append(factors, FactorInconsistentFocus)
	}
	if activeDays < minimumActiveDays {
		score += 15
		factors = append(factors, FactorLowActivityDays)
	}
	if lateSessions > lateSessionsPerDayLimit*activeDays {
		score += 10
		factors = append(factors, FactorIrregularSleep)
	}

	if score > 100 {
		score = 100
	}
	return BurnoutReport{Level: BurnoutLevelForScore(score), Score: score, Factors: factors}
}

func BurnoutLevelForScore(score int) string {
	switch {
	case score >= 75:
		return BurnoutSevere
	case score >= 50:
		return BurnoutModerate
	case score >= 25:
		return BurnoutMild
	default:
		return BurnoutNone
	}
}

func BurnoutRecommendations(level string) []string {
	recommendations, ok := burnoutRecommendations[level]
	if !ok {
		recommendations = burnoutRecommendations[BurnoutNone]
	}
	return append([]string(nil), recommendations...)
}

// dailyCompletionCounts groups tasks by creation day and returns the number
// completed per day, ordered by day ascending.
func dailyCompletionCounts(tasks []models.Task, location *time.Location) []float64 {
	completedByDay := make(map[string]float64)
	for _, task := range tasks {
		key := DayKey(task.CreatedAt, location)
		if task.Completed {
			completedByDay[key]++
		} else if _, ok := completedByDay[key]; !ok {
			completedByDay[key] = 0
		}
	}

	days := make([]string, 0, len(completedByDay))
	for day := range completedByDay {
		days = append(days, day)
	}
	sort.Strings(days)

	counts := make([]float64, 0, len(days))
	for _, day := range days {
		counts = append(counts, completedByDay[day])
	}
	return counts
}

// completionsDecline splits the series by index into [0, n/2) and [n/2, n).
func completionsDecline(counts []float64) bool {
	half := len(counts) / 2
	first := counts[:half]
	second := counts[half:]
	if len(first) == 0 || len(second) == 0 {
		return false
	}
	return average(second) < decliningRatio*average(first)
}

func isLateNightStart(startedAt time.Time, location *time.Location) bool {
	if location == nil {
		location = time.UTC
	}
	hour := startedAt.In(location).Hour()
	return hour >= lateNightStartHour || hour < earlyMorningEndHour
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, value := range values {
		total += value
	}
	return total / float64(len(values))
}

func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := 0.0
	for _, value := range values {
		variance += (value - mean) * (value - mean)
	}
	return math.Sqrt(variance / float64(len(values)))
}
