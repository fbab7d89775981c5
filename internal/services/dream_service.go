package services

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

const (
	alignmentGoalPoints     = 4
	alignmentGoalCap        = 20
	alignmentHabitCap       = 30
	alignmentProgressCap    = 40
	alignmentIdentityPoints = 10

	gapMinimumGoals      = 3
	gapMinimumHabits     = 3
	gapMinimumFocusDays  = 3
	gapFocusWindowDays   = 7
	gapMinimumAlignment  = 50
	defaultReflectionCap = 20
	maxReflectionLength  = 5000
	insightItemLimit     = 3
)

const noGapsMessage = "You are doing great! Keep it up!"

type DreamProfileStore interface {
	FindByUser(userID uint) (models.DreamProfile, error)
	Create(profile *models.DreamProfile) error
	Update(profile *models.DreamProfile) error
	CreateReflection(reflection *models.Reflection) error
	ListReflections(userID uint, limit int) ([]models.Reflection, error)
}

type DreamGoalReader interface {
	ListByUserExcludingStatus(userID uint, status string) ([]models.Goal, error)
}

type DreamHabitReader interface {
	ListByUser(userID uint) ([]models.Habit, error)
}

type DreamFocusReader interface {
	ListStartedSince(userID uint, since time.Time) ([]models.FocusSession, error)
}

type DreamProfileInput struct {
	VisionStatement    string   `json:"vision_statement"`
	CoreValues         string   `json:"core_values"`
	ThreeYearGoal      string   `json:"three_year_goal"`
	IdentityStatements []string `json:"identity_statements"`
}

type DreamProfileResult struct {
	Profile models.DreamProfile `json:"profile"`
	Created bool                `json:"created"`
	XP      *XPAward            `json:"xp,omitempty"`
}

type AlignmentReport struct {
	Score         int `json:"score"`
	GoalScore     int `json:"goal_score"`
	HabitScore    int `json:"habit_score"`
	ProgressScore int `json:"progress_score"`
	IdentityScore int `json:"identity_score"`
}

type ReflectionInput struct {
	Content  string `json:"content"`
	Mood     string `json:"mood"`
	Insights string `json:"insights"`
}

type Milestone struct {
	GoalID          uint   `json:"goal_id"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	Status          string `json:"status"`
	ProgressPercent int    `json:"progress_percent"`
	DaysRemaining   *int   `json:"days_remaining"`
}

type DreamInsights struct {
	Profile        *models.DreamProfile `json:"dream_profile"`
	AlignmentScore int                  `json:"alignment_score"`
	Gaps           []string             `json:"gaps"`
	RecentGoals    []models.Goal        `json:"recent_goals"`
	ActiveHabits   []models.Habit       `json:"active_habits"`
	LastReflection *models.Reflection   `json:"last_reflection"`
}

// AlignmentInputs is the state the alignment score is derived from.
type AlignmentInputs struct {
	Goals       []models.Goal
	Habits      []models.Habit
	HasIdentity bool
}

type DreamService struct {
	profiles DreamProfileStore
	goals    DreamGoalReader
	habits   DreamHabitReader
	focus    DreamFocusReader
	xp       XPAwarder
	location *time.Location
	logger   *log.Logger
}

func NewDreamService(profiles DreamProfileStore, goals DreamGoalReader, habits DreamHabitReader, focus DreamFocusReader, xp XPAwarder, location *time.Location, logger *log.Logger) *DreamService {
	if location == nil {
		location = time.UTC
	}
	return &DreamService{
		profiles: profiles,
		goals:    goals,
		habits:   habits,
		focus:    focus,
		xp:       xp,
		location: location,
		logger:   logging.OrDiscard(logger),
	}
}

func (service *DreamService) GetProfile(userID uint) (models.DreamProfile, error) {
	profile, err := service.profiles.FindByUser(userID)
	if err != nil {
		return models.DreamProfile{}, mapMissing(err, ErrDreamProfileNotFound)
	}
	return profile, nil
}

// UpsertProfile replaces the user's vision profile. Only the first save
// grants XP.
func (service *DreamService) UpsertProfile(userID uint, input DreamProfileInput) (DreamProfileResult, error) {
	profile := models.DreamProfile{
		UserID:             userID,
		VisionStatement:    strings.TrimSpace(input.VisionStatement),
		CoreValues:         strings.TrimSpace(input.CoreValues),
		ThreeYearGoal:      strings.TrimSpace(input.ThreeYearGoal),
		IdentityStatements: normalizeStatements(input.IdentityStatements),
	}
	if profile.VisionStatement == "" && profile.CoreValues == "" && profile.ThreeYearGoal == "" && len(profile.IdentityStatements) == 0 {
		return DreamProfileResult{}, ErrInvalidDreamProfile
	}

	existing, err := service.profiles.FindByUser(userID)
	switch {
	case err == nil:
		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		if err := service.profiles.Update(&profile); err != nil {
			return DreamProfileResult{}, fmt.Errorf("update dream profile: %w", err)
		}
		return DreamProfileResult{Profile: profile}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return DreamProfileResult{}, err
	}

	if err := service.profiles.Create(&profile); err != nil {
		return DreamProfileResult{}, fmt.Errorf("create dream profile: %w", err)
	}
	award, err := service.xp.AwardXP(userID, XPDreamProfileCreated, SourceDreamProfileCreated)
	if err != nil {
		return DreamProfileResult{Profile: profile, Created: true}, err
	}
	return DreamProfileResult{Profile: profile, Created: true, XP: &award}, nil
}

func ScoreAlignment(inputs AlignmentInputs) AlignmentReport {
	report := AlignmentReport{}

	report.GoalScore = min(len(inputs.Goals)*alignmentGoalPoints, alignmentGoalCap)

	activeHabits := 0
	for _, habit := range inputs.Habits {
		if habit.StreakCount > 0 {
			activeHabits++
		}
	}
	habitRatio := float64(activeHabits) / float64(max(len(inputs.Habits), 1))
	report.HabitScore = int(math.Round(math.Min(habitRatio*alignmentHabitCap, alignmentHabitCap)))

	if len(inputs.Goals) > 0 {
		totalProgress := 0
		for _, goal := range inputs.Goals {
			totalProgress += goal.ProgressPercent
		}
		averageProgress := float64(totalProgress) / float64(len(inputs.Goals))
		report.ProgressScore = int(math.Round(averageProgress / 100 * alignmentProgressCap))
	}

	if inputs.HasIdentity {
		report.IdentityScore = alignmentIdentityPoints
	}

	report.Score = min(report.GoalScore+report.HabitScore+report.ProgressScore+report.IdentityScore, 100)
	return report
}

func (service *DreamService) AlignmentScore(userID uint) (AlignmentReport, error) {
	inputs, err := service.alignmentInputs(userID)
	if err != nil {
		return AlignmentReport{}, err
	}
	return ScoreAlignment(inputs), nil
}

// GapAnalysis lists what stands between the user's current routine and the
// vision. It always returns at least one message.
func (service *DreamService) GapAnalysis(userID uint, now time.Time) ([]string, error) {
	inputs, err := service.alignmentInputs(userID)
	if err != nil {
		return nil, err
	}
	sessions, err := service.focus.ListStartedSince(userID, DateAtLocation(now, service.location).AddDate(0, 0, -(gapFocusWindowDays-1)))
	if err != nil {
		return nil, err
	}
	focusDays := make(map[string]bool)
	for _, session := range sessions {
		focusDays[DayKey(session.StartedAt, service.location)] = true
	}

	gaps := make([]string, 0, 4)
	if len(inputs.Goals) < gapMinimumGoals {
		gaps = append(gaps, "Set at least 3 goals that move you toward your vision")
	}
	if len(inputs.Habits) < gapMinimumHabits {
		gaps = append(gaps, "Build at least 3 daily habits that reflect who you want to become")
	}
	if len(focusDays) < gapMinimumFocusDays {
		gaps = append(gaps, "Schedule focus sessions on at least 3 days this week")
	}
	if ScoreAlignment(inputs).Score < gapMinimumAlignment {
		gaps = append(gaps, "Your daily actions are not yet aligned with your vision")
	}
	if len(gaps) == 0 {
		gaps = append(gaps, noGapsMessage)
	}
	return gaps, nil
}

func (service *DreamService) RecordReflection(userID uint, input ReflectionInput) (models.Reflection, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" || len([]rune(content)) > maxReflectionLength {
		return models.Reflection{}, ErrInvalidReflection
	}
	reflection := models.Reflection{
		UserID:   userID,
		Content:  content,
		Mood:     strings.TrimSpace(input.Mood),
		Insights: strings.TrimSpace(input.Insights),
	}
	if err := service.profiles.CreateReflection(&reflection); err != nil {
		return models.Reflection{}, fmt.Errorf("create reflection: %w", err)
	}
	return reflection, nil
}

func (service *DreamService) ListReflections(userID uint, limit int) ([]models.Reflection, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultReflectionCap
	}
	return service.profiles.ListReflections(userID, limit)
}

func (service *DreamService) MilestoneProgress(userID uint, now time.Time) ([]Milestone, error) {
	goals, err := service.goals.ListByUserExcludingStatus(userID, models.GoalStatusAbandoned)
	if err != nil {
		return nil, err
	}
	milestones := make([]Milestone, 0, len(goals))
	for _, goal := range goals {
		milestone := Milestone{
			GoalID:          goal.ID,
			Title:           goal.Title,
			Category:        goal.Category,
			Status:          goal.Status,
			ProgressPercent: goal.ProgressPercent,
		}
		if goal.Deadline != nil {
			remaining := CalendarDaysBetween(now, *goal.Deadline, service.location)
			milestone.DaysRemaining = &remaining
		}
		milestones = append(milestones, milestone)
	}
	return milestones, nil
}

// Insights gathers the vision overview: profile, alignment, gaps, the newest
// in-progress goals, the longest running habits and the last reflection.
func (service *DreamService) Insights(userID uint, now time.Time) (DreamInsights, error) {
	inputs, err := service.alignmentInputs(userID)
	if err != nil {
		return DreamInsights{}, err
	}
	gaps, err := service.GapAnalysis(userID, now)
	if err != nil {
		return DreamInsights{}, err
	}
	insights := DreamInsights{
		AlignmentScore: ScoreAlignment(inputs).Score,
		Gaps:           gaps,
		RecentGoals:    recentInProgressGoals(inputs.Goals, insightItemLimit),
		ActiveHabits:   longestStreakHabits(inputs.Habits, insightItemLimit),
	}

	profile, err := service.profiles.FindByUser(userID)
	switch {
	case err == nil:
		insights.Profile = &profile
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return DreamInsights{}, err
	}
	reflections, err := service.profiles.ListReflections(userID, 1)
	if err != nil {
		return DreamInsights{}, err
	}
	if len(reflections) > 0 {
		insights.LastReflection = &reflections[0]
	}
	return insights, nil
}

func recentInProgressGoals(goals []models.Goal, limit int) []models.Goal {
	recent := make([]models.Goal, 0, limit)
	for _, goal := range goals {
		if goal.Status == models.GoalStatusInProgress {
			recent = append(recent, goal)
		}
	}
	slices.SortStableFunc(recent, func(left, right models.Goal) int {
		if byCreated := right.CreatedAt.Compare(left.CreatedAt); byCreated != 0 {
			return byCreated
		}
		return cmp.Compare(right.ID, left.ID)
	})
	return recent[:min(len(recent), limit)]
}

func longestStreakHabits(habits []models.Habit, limit int) []models.Habit {
	active := make([]models.Habit, 0, limit)
	for _, habit := range habits {
		if habit.StreakCount > 0 {
			active = append(active, habit)
		}
	}
	slices.SortStableFunc(active, func(left, right models.Habit) int {
		if byStreak := cmp.Compare(right.StreakCount, left.StreakCount); byStreak != 0 {
			return byStreak
		}
		return cmp.Compare(left.ID, right.ID)
	})
	return active[:min(len(active), limit)]
}

func (service *DreamService) alignmentInputs(userID uint) (AlignmentInputs, error) {
	goals, err := service.goals.ListByUserExcludingStatus(userID, models.GoalStatusAbandoned)
	if err != nil {
		return AlignmentInputs{}, err
	}
	habits, err := service.habits.ListByUser(userID)
	if err != nil {
		return AlignmentInputs{}, err
	}
	hasIdentity := false
	profile, err := service.profiles.FindByUser(userID)
	switch {
	case err == nil:
		hasIdentity = len(profile.IdentityStatements) > 0
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return AlignmentInputs{}, err
	}
	return AlignmentInputs{Goals: goals, Habits: habits, HasIdentity: hasIdentity}, nil
}

func normalizeStatements(raw []string) []string {
	statements := make([]string, 0, len(raw))
	for _, statement := range raw {
		if trimmed := strings.TrimSpace(statement); trimmed != "" {
			statements = append(statements, trimmed)
		}
	}
	return statements
}
