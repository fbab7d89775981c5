package api

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/db"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/services"
	"gorm.io/gorm"
)

const defaultAuthTokenTTL = 7 * 24 * time.Hour

type Options struct {
	SecretKey string
	TokenTTL  time.Duration
	Location  *time.Location
	Logger    *log.Logger
	// Generator may be nil; assistant and planner endpoints then always fall back.
	Generator services.TextGenerator
}

type Handler struct {
	secretKey    []byte
	tokenTTL     time.Duration
	location     *time.Location
	logger       *log.Logger
	now          func() time.Time
	loginLimiter *loginLimiter

	authService         *services.AuthService
	gamificationService *services.GamificationService
	achievementService  *services.AchievementService
	taskService         *services.TaskService
	habitService        *services.HabitService
	goalService         *services.GoalService
	focusService        *services.FocusService
	analyticsService    *services.AnalyticsService
	dreamService        *services.DreamService
	assistantService    *services.AssistantService
	plannerService      *services.PlannerService
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}
	if options.Location == nil {
		options.Location = time.UTC
	}
	if options.TokenTTL <= 0 {
		options.TokenTTL = defaultAuthTokenTTL
	}
	logger := logging.OrDiscard(options.Logger)

	handler := &Handler{
		secretKey:    []byte(options.SecretKey),
		tokenTTL:     options.TokenTTL,
		location:     options.Location,
		logger:       logger,
		now:          time.Now,
		loginLimiter: newLoginLimiter(loginAttemptsLimit, loginAttemptsWindow),
	}
	handler.withDependencies(db.NewRepositories(database), options.Generator)
	return handler, nil
}

func (handler *Handler) withDependencies(repositories *db.Repositories, generator services.TextGenerator) {
	location := handler.location
	logger := handler.logger

	gamification := services.NewGamificationService(repositories.Users, repositories.Achievements, repositories.Habits, logger)
	achievements := services.NewAchievementService(
		repositories.Achievements,
		repositories.Tasks,
		repositories.Habits,
		repositories.Users,
		repositories.Goals,
		gamification,
		logger,
	)

	handler.authService = services.NewAuthService(repositories.Users, logger)
	handler.gamificationService = gamification
	handler.achievementService = achievements
	handler.taskService = services.NewTaskService(repositories.Tasks, gamification, achievements, logger)
	handler.habitService = services.NewHabitService(repositories.Habits, gamification, achievements, location, logger)
	handler.goalService = services.NewGoalService(repositories.Goals, repositories.Habits, gamification, achievements, logger)
	handler.focusService = services.NewFocusService(repositories.FocusSessions, repositories.Tasks, gamification, location, logger)
	handler.analyticsService = services.NewAnalyticsService(repositories.Tasks, repositories.Habits, repositories.Goals, repositories.FocusSessions, location)
	handler.dreamService = services.NewDreamService(
		repositories.DreamProfiles,
		repositories.Goals,
		repositories.Habits,
		repositories.FocusSessions,
		gamification,
		location,
		logger,
	)
	handler.assistantService = services.NewAssistantService(generator, repositories.Tasks, repositories.Goals, location, logger)
	handler.plannerService = services.NewPlannerService(generator, repositories.Tasks, repositories.Habits, repositories.FocusSessions, location, logger)
}
