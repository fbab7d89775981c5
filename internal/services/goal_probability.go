package services

import (
	"math"
	"time"

	"github.com/terraincognita07/ascend/internal/models"
)

const (
	probabilityProgressWeight   = 0.5
	probabilityCompletionWeight = 0.3
	probabilityDeadlineWeight   = 0.2
	probabilityHorizonDays      = 30.0
	defaultCompletionRate       = 0.5
	unknownDeadlineProbability  = 50
)

// EstimateGoalProbability blends progress, the user's historical completion
// rate and the remaining time into a percentage. Goals without a deadline
// are reported as 50, and goals past their deadline as 0 or 100.
func EstimateGoalProbability(goal models.Goal, completedGoals int64, totalGoals int64, now time.Time) int {
	if goal.Deadline == nil {
		return unknownDeadlineProbability
	}

	daysRemaining := math.Floor(goal.Deadline.Sub(now).Hours() / 24)
	if daysRemaining <= 0 {
		if goal.ProgressPercent >= 100 {
			return 100
		}
		return 0
	}

	progressFactor := math.Min(float64(goal.ProgressPercent)/100, 1)
	completionRate := defaultCompletionRate
	if totalGoals > 0 {
		completionRate = float64(completedGoals) / float64(totalGoals)
	}
	deadlineFactor := math.Min(daysRemaining/probabilityHorizonDays, 1)

	weighted := probabilityProgressWeight*progressFactor +
		probabilityCompletionWeight*completionRate +
		probabilityDeadlineWeight*deadlineFactor
	return int(math.Round(math.Min(weighted, 1) * 100))
}
