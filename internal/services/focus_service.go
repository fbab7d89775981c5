package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/metrics"
	"github.com/terraincognita07/ascend/internal/models"
	"gorm.io/gorm"
)

const (
	minFocusMinutes         = 1
	maxFocusMinutes         = 480
	focusXPMinimumMinutes   = 25
	focusXPMinutesPerPoint  = 5
	defaultFocusHistorySize = 20
	focusStatsWindowDays    = 30
)

type FocusSessionRepository interface {
	Create(session *models.FocusSession) error
	FindByIDForUser(sessionID uint, userID uint) (models.FocusSession, error)
	End(sessionID uint, userID uint, endedAt time.Time, completed bool) (bool, error)
	FindActive(userID uint) (models.FocusSession, error)
	ListRecent(userID uint, limit int) ([]models.FocusSession, error)
	ListStartedSince(userID uint, since time.Time) ([]models.FocusSession, error)
	ListEndedTimes(userID uint) ([]time.Time, error)
	Stats(userID uint, since time.Time) (models.FocusStats, error)
}

type FocusTaskReader interface {
	ExistsForUser(taskID uint, userID uint) (bool, error)
	ListCreatedSince(userID uint, since time.Time) ([]models.Task, error)
}

type FocusStartInput struct {
	TaskID          *uint `json:"task_id"`
	DurationMinutes int   `json:"duration_minutes"`
}

type FocusEndResult struct {
	Session models.FocusSession `json:"session"`
	XP      *XPAward            `json:"xp,omitempty"`
}

type ActiveFocusSession struct {
	Session          models.FocusSession `json:"session"`
	ElapsedMinutes   int                 `json:"elapsed_minutes"`
	RemainingMinutes int                 `json:"remaining_minutes"`
	IsExpired        bool                `json:"is_expired"`
}

type FocusService struct {
	sessions FocusSessionRepository
	tasks    FocusTaskReader
	xp       XPAwarder
	location *time.Location
	logger   *log.Logger
}

func NewFocusService(sessions FocusSessionRepository, tasks FocusTaskReader, xp XPAwarder, location *time.Location, logger *log.Logger) *FocusService {
	if location == nil {
		location = time.UTC
	}
	return &FocusService{
		sessions: sessions,
		tasks:    tasks,
		xp:       xp,
		location: location,
		logger:   logging.OrDiscard(logger),
	}
}

// FocusSessionXP is ceil(minutes/5) for completed sessions of at least 25
// planned minutes and zero otherwise.
func FocusSessionXP(session models.FocusSession) int64 {
	if !session.WasCompleted || session.DurationMinutes < focusXPMinimumMinutes {
		return 0
	}
	return int64(math.Ceil(float64(session.DurationMinutes) / focusXPMinutesPerPoint))
}

func (service *FocusService) StartSession(userID uint, input FocusStartInput, now time.Time) (models.FocusSession, error) {
	if input.DurationMinutes < minFocusMinutes || input.DurationMinutes > maxFocusMinutes {
		return models.FocusSession{}, ErrInvalidFocusDuration
	}
	if input.TaskID != nil {
		exists, err := service.tasks.ExistsForUser(*input.TaskID, userID)
		if err != nil {
			return models.FocusSession{}, err
		}
		if !exists {
			return models.FocusSession{}, ErrTaskNotFound
		}
	}

	session := models.FocusSession{
		UserID:          userID,
		TaskID:          input.TaskID,
		DurationMinutes: input.DurationMinutes,
		StartedAt:       now.UTC(),
	}
	if err := service.sessions.Create(&session); err != nil {
		return models.FocusSession{}, fmt.Errorf("create focus session: %w", err)
	}
	return session, nil
}

func (service *FocusService) EndSession(userID uint, sessionID uint, completed bool, now time.Time) (FocusEndResult, error) {
	session, err := service.sessions.FindByIDForUser(sessionID, userID)
	if err != nil {
		return FocusEndResult{}, mapMissing(err, ErrFocusSessionNotFound)
	}
	if !session.IsActive() {
		return FocusEndResult{}, ErrFocusSessionEnded
	}

	ended, err := service.sessions.End(sessionID, userID, now, completed)
	if err != nil {
		return FocusEndResult{}, fmt.Errorf("end focus session: %w", err)
	}
	if !ended {
		return FocusEndResult{}, ErrFocusSessionEnded
	}

	endedAt := now.UTC()
	session.EndedAt = &endedAt
	session.WasCompleted = completed
	result := FocusEndResult{Session: session}

	if amount := FocusSessionXP(session); amount > 0 {
		award, err := service.xp.AwardXP(userID, amount, SourceFocusSession)
		if err != nil {
			return result, err
		}
		result.XP = &award
	}
	return result, nil
}

// ActiveSession reports the open session with its timing derived from now.
// It returns nil when no session is open.
func (service *FocusService) ActiveSession(userID uint, now time.Time) (*ActiveFocusSession, error) {
	session, err := service.sessions.FindActive(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	elapsed := int(math.Floor(now.Sub(session.StartedAt).Minutes()))
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := session.DurationMinutes - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return &ActiveFocusSession{
		Session:          session,
		ElapsedMinutes:   elapsed,
		RemainingMinutes: remaining,
		IsExpired:        remaining <= 0,
	}, nil
}

func (service *FocusService) History(userID uint, limit int) ([]models.FocusSession, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultFocusHistorySize
	}
	return service.sessions.ListRecent(userID, limit)
}

func (service *FocusService) Stats(userID uint, now time.Time) (models.FocusStats, error) {
	stats, err := service.sessions.Stats(userID, now.AddDate(0, 0, -focusStatsWindowDays))
	if err != nil {
		return models.FocusStats{}, err
	}
	if stats.TotalSessions > 0 {
		stats.CompletionRate = math.Round(float64(stats.CompletedSessions)/float64(stats.TotalSessions)*1000) / 10
	}
	return stats, nil
}

// FocusStreak counts consecutive local days with at least one ended session,
// walking back from the most recent such day.
func (service *FocusService) FocusStreak(userID uint) (int, error) {
	endedTimes, err := service.sessions.ListEndedTimes(userID)
	if err != nil {
		return 0, err
	}
	return ConsecutiveDayStreak(endedTimes, service.location), nil
}

func ConsecutiveDayStreak(moments []time.Time, location *time.Location) int {
	if len(moments) == 0 {
		return 0
	}
	days := make(map[string]time.Time)
	for _, moment := range moments {
		day := DateAtLocation(moment, location)
		days[day.Format("2006-01-02")] = day
	}
	ordered := make([]time.Time, 0, len(days))
	for _, day := range days {
		ordered = append(ordered, day)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].After(ordered[j])
	})

	streak := 1
	for index := 1; index < len(ordered); index++ {
		if CalendarDaysBetween(ordered[index], ordered[index-1], location) != 1 {
			break
		}
		streak++
	}
	return streak
}

func (service *FocusService) DetectBurnout(userID uint, now time.Time) (BurnoutReport, error) {
	since := now.AddDate(0, 0, -BurnoutWindowDays)
	sessions, err := service.sessions.ListStartedSince(userID, since)
	if err != nil {
		return BurnoutReport{}, err
	}
	tasks, err := service.tasks.ListCreatedSince(userID, since)
	if err != nil {
		return BurnoutReport{}, err
	}

	report := EstimateBurnout(sessions, tasks, service.location)
	metrics.BurnoutEvaluations.WithLabelValues(report.Level).Inc()
	service.logger.Debug("burnout evaluated", "user_id", userID, "level", report.Level, "score", report.Score)
	return report, nil
}

func (service *FocusService) GetBurnoutRecovery(userID uint, now time.Time) (BurnoutRecovery, error) {
	report, err := service.DetectBurnout(userID, now)
	if err != nil {
		return BurnoutRecovery{}, err
	}
	return BurnoutRecovery{
		BurnoutReport:   report,
		Recommendations: BurnoutRecommendations(report.Level),
	}, nil
}
