package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/models"
)

const maxGoalTitleLength = 200

type GoalRepository interface {
	Create(goal *models.Goal) error
	ListByUser(userID uint, status string) ([]models.Goal, error)
	FindByIDForUser(goalID uint, userID uint) (models.Goal, error)
	UpdateFields(goalID uint, userID uint, updates map[string]any) error
	Delete(goalID uint, userID uint) (bool, error)
	CountByStatus(userID uint) (total int64, completed int64, err error)
	Stats(userID uint) (models.GoalStats, error)
	ListConflicts(userID uint) ([]models.GoalConflict, error)
	LinkHabit(habitID uint, goalID uint) error
}

type GoalHabitReader interface {
	FindByIDForUser(habitID uint, userID uint) (models.Habit, error)
	ListLinkedToGoal(goalID uint, userID uint) ([]models.Habit, error)
}

type GoalInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Deadline    *time.Time `json:"deadline"`
}

// GoalUpdate carries the patchable goal fields. Nil fields are left as is.
type GoalUpdate struct {
	Title           *string    `json:"title"`
	Description     *string    `json:"description"`
	Category        *string    `json:"category"`
	Deadline        *time.Time `json:"deadline"`
	ProgressPercent *int       `json:"progress_percent"`
	Status          *string    `json:"status"`
}

type GoalUpdateResult struct {
	Goal            models.Goal `json:"goal"`
	XPAwarded       int64       `json:"xp_awarded"`
	LevelUp         bool        `json:"level_up"`
	NewAchievements []string    `json:"new_achievements"`
}

type GoalProbability struct {
	GoalID      uint `json:"goal_id"`
	Probability int  `json:"probability"`
}

type GoalService struct {
	goals        GoalRepository
	habits       GoalHabitReader
	xp           XPAwarder
	achievements AchievementChecker
	logger       *log.Logger
}

func NewGoalService(goals GoalRepository, habits GoalHabitReader, xp XPAwarder, achievements AchievementChecker, logger *log.Logger) *GoalService {
	return &GoalService{
		goals:        goals,
		habits:       habits,
		xp:           xp,
		achievements: achievements,
		logger:       logging.OrDiscard(logger),
	}
}

func (service *GoalService) CreateGoal(userID uint, input GoalInput) (models.Goal, *XPAward, error) {
	title, err := normalizeGoalTitle(input.Title)
	if err != nil {
		return models.Goal{}, nil, err
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = models.DefaultGoalCategory
	}

	goal := models.Goal{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Deadline:    utcPointer(input.Deadline),
		Status:      models.GoalStatusActive,
	}
	if err := service.goals.Create(&goal); err != nil {
		return models.Goal{}, nil, fmt.Errorf("create goal: %w", err)
	}

	award, err := service.xp.AwardXP(userID, XPGoalCreated, SourceGoalCreated)
	if err != nil {
		return goal, nil, err
	}
	return goal, &award, nil
}

func (service *GoalService) ListGoals(userID uint, status string) ([]models.Goal, error) {
	if status != "" && !models.IsValidGoalStatus(status) {
		return nil, ErrInvalidGoalStatus
	}
	return service.goals.ListByUser(userID, status)
}

func (service *GoalService) GetGoal(userID uint, goalID uint) (models.Goal, error) {
	goal, err := service.goals.FindByIDForUser(goalID, userID)
	if err != nil {
		return models.Goal{}, mapMissing(err, ErrGoalNotFound)
	}
	return goal, nil
}

// UpdateGoal validates every provided field before writing. A progress
// increase grants progress XP and moving into the completed status grants
// completion XP followed by an achievement check. Reaching 100 percent
// completes the goal unless a status is given explicitly.
func (service *GoalService) UpdateGoal(userID uint, goalID uint, update GoalUpdate) (GoalUpdateResult, error) {
	current, err := service.GetGoal(userID, goalID)
	if err != nil {
		return GoalUpdateResult{}, err
	}

	fields := make(map[string]any)
	if update.Title != nil {
		title, err := normalizeGoalTitle(*update.Title)
		if err != nil {
			return GoalUpdateResult{}, err
		}
		fields["title"] = title
	}
	if update.Description != nil {
		fields["description"] = strings.TrimSpace(*update.Description)
	}
	if update.Category != nil {
		category := strings.TrimSpace(*update.Category)
		if category == "" {
			category = models.DefaultGoalCategory
		}
		fields["category"] = category
	}
	if update.Deadline != nil {
		fields["deadline"] = update.Deadline.UTC()
	}

	progress := current.ProgressPercent
	if update.ProgressPercent != nil {
		if *update.ProgressPercent < 0 || *update.ProgressPercent > 100 {
			return GoalUpdateResult{}, ErrInvalidProgress
		}
		progress = *update.ProgressPercent
		fields["progress_percent"] = progress
	}

	status := current.Status
	if update.Status != nil {
		status = strings.ToLower(strings.TrimSpace(*update.Status))
		if !models.IsValidGoalStatus(status) {
			return GoalUpdateResult{}, ErrInvalidGoalStatus
		}
		fields["status"] = status
	} else if progress == 100 && current.Status != models.GoalStatusCompleted {
		status = models.GoalStatusCompleted
		fields["status"] = status
	}

	if len(fields) > 0 {
		if err := service.goals.UpdateFields(goalID, userID, fields); err != nil {
			return GoalUpdateResult{}, fmt.Errorf("update goal: %w", err)
		}
	}

	result := GoalUpdateResult{NewAchievements: []string{}}
	if progress > current.ProgressPercent {
		if err := service.grant(userID, XPGoalProgress, SourceGoalProgress, &result); err != nil {
			return GoalUpdateResult{}, err
		}
	}
	if status == models.GoalStatusCompleted && current.Status != models.GoalStatusCompleted {
		if err := service.grant(userID, XPGoalCompleted, SourceGoalCompleted, &result); err != nil {
			return GoalUpdateResult{}, err
		}
		earned, err := service.achievements.CheckAndAward(userID)
		if err != nil {
			service.logger.Warn("achievement check failed", "user_id", userID, "err", err)
		}
		result.NewAchievements = append(result.NewAchievements, earned...)
	}

	goal, err := service.GetGoal(userID, goalID)
	if err != nil {
		return GoalUpdateResult{}, err
	}
	result.Goal = goal
	return result, nil
}

func (service *GoalService) grant(userID uint, amount int64, source string, result *GoalUpdateResult) error {
	award, err := service.xp.AwardXP(userID, amount, source)
	if err != nil {
		return err
	}
	result.XPAwarded += amount
	result.LevelUp = result.LevelUp || award.LevelUp
	return nil
}

func (service *GoalService) DeleteGoal(userID uint, goalID uint) error {
	deleted, err := service.goals.Delete(goalID, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if !deleted {
		return ErrGoalNotFound
	}
	return nil
}

func (service *GoalService) LinkHabit(userID uint, goalID uint, habitID uint) error {
	if _, err := service.GetGoal(userID, goalID); err != nil {
		return err
	}
	if _, err := service.habits.FindByIDForUser(habitID, userID); err != nil {
		return mapMissing(err, ErrHabitNotFound)
	}
	return service.goals.LinkHabit(habitID, goalID)
}

func (service *GoalService) LinkedHabits(userID uint, goalID uint) ([]models.Habit, error) {
	if _, err := service.GetGoal(userID, goalID); err != nil {
		return nil, err
	}
	return service.habits.ListLinkedToGoal(goalID, userID)
}

func (service *GoalService) Conflicts(userID uint) ([]models.GoalConflict, error) {
	return service.goals.ListConflicts(userID)
}

func (service *GoalService) Stats(userID uint) (models.GoalStats, error) {
	return service.goals.Stats(userID)
}

func (service *GoalService) CalculateGoalProbability(userID uint, goalID uint, now time.Time) (GoalProbability, error) {
	goal, err := service.GetGoal(userID, goalID)
	if err != nil {
		return GoalProbability{}, err
	}
	total, completed, err := service.goals.CountByStatus(userID)
	if err != nil {
		return GoalProbability{}, err
	}
	return GoalProbability{
		GoalID:      goal.ID,
		Probability: EstimateGoalProbability(goal, completed, total, now),
	}, nil
}

func normalizeGoalTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || len([]rune(title)) > maxGoalTitleLength {
		return "", ErrInvalidGoalTitle
	}
	return title, nil
}
