package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/terraincognita07/ascend/internal/logging"
	"github.com/terraincognita07/ascend/internal/metrics"
	"github.com/terraincognita07/ascend/internal/models"
)

const (
	fallbackSubtaskMinutes = 30
	maxSubtasks            = 8
	maxGoalSteps           = 10
)

const (
	MotivationMorning    = "morning"
	MotivationAfternoon  = "afternoon"
	MotivationEvening    = "evening"
	MotivationStruggling = "struggling"
	MotivationWinning    = "winning"
)

var motivationalMessages = map[string][]string{
	MotivationMorning: {
		"A fresh day. Pick the one task that matters most and start there.",
		"Small wins this morning set the tone for the whole day.",
		"Start before you feel ready. Momentum follows action.",
	},
	MotivationAfternoon: {
		"Halfway there. Protect your next focus block.",
		"Check your list, drop one thing, finish one thing.",
		"Energy dips are normal. A short walk then back to it.",
	},
	MotivationEvening: {
		"Look back at what you finished today, not only what is left.",
		"Wind down and plan tomorrow's first task tonight.",
		"Rest is part of the work. Close the loop and recharge.",
	},
	MotivationStruggling: {
		"Progress is not linear. One small step still counts.",
		"Shrink the task until it feels easy, then do that.",
		"You have restarted before and you can restart today.",
	},
	MotivationWinning: {
		"You are on a roll. Keep the streak alive.",
		"Great consistency. Raise the bar a little tomorrow.",
		"This is what your future self thanks you for.",
	},
}

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AssistantTaskStore interface {
	FindByIDForUser(taskID uint, userID uint) (models.Task, error)
	SaveBreakdown(taskID uint, userID uint, breakdown models.TaskBreakdown) error
}

type AssistantGoalReader interface {
	FindByIDForUser(goalID uint, userID uint) (models.Goal, error)
}

type GoalSteps struct {
	GoalID      uint     `json:"goal_id"`
	Steps       []string `json:"steps"`
	AIGenerated bool     `json:"ai_generated"`
}

type MotivationalMessage struct {
	Context string `json:"context"`
	Message string `json:"message"`
}

type AssistantService struct {
	generator TextGenerator
	tasks     AssistantTaskStore
	goals     AssistantGoalReader
	location  *time.Location
	logger    *log.Logger
}

func NewAssistantService(generator TextGenerator, tasks AssistantTaskStore, goals AssistantGoalReader, location *time.Location, logger *log.Logger) *AssistantService {
	if location == nil {
		location = time.UTC
	}
	return &AssistantService{
		generator: generator,
		tasks:     tasks,
		goals:     goals,
		location:  location,
		logger:    logging.OrDiscard(logger),
	}
}

// BreakDownTask asks the generator for subtasks and stores the result on the
// task. Any generator failure yields a single subtask equal to the task,
// flagged as not generated.
func (service *AssistantService) BreakDownTask(ctx context.Context, userID uint, taskID uint) (models.TaskBreakdown, error) {
	task, err := service.tasks.FindByIDForUser(taskID, userID)
	if err != nil {
		return models.TaskBreakdown{}, mapMissing(err, ErrTaskNotFound)
	}

	breakdown, err := service.generateBreakdown(ctx, task)
	if err != nil {
		metrics.TextGenRequests.WithLabelValues("fallback").Inc()
		service.logger.Warn("task breakdown fell back", "task_id", taskID, "err", err)
		breakdown = FallbackBreakdown(task)
	}

	if err := service.tasks.SaveBreakdown(taskID, userID, breakdown); err != nil {
		return models.TaskBreakdown{}, fmt.Errorf("save breakdown: %w", err)
	}
	return breakdown, nil
}

func FallbackBreakdown(task models.Task) models.TaskBreakdown {
	return models.TaskBreakdown{
		Subtasks:          []models.Subtask{{Title: task.Title, EstimatedMinutes: fallbackSubtaskMinutes}},
		EstimatedDuration: fallbackSubtaskMinutes,
		AIGenerated:       false,
	}
}

func (service *AssistantService) generateBreakdown(ctx context.Context, task models.Task) (models.TaskBreakdown, error) {
	if service.generator == nil {
		return models.TaskBreakdown{}, fmt.Errorf("no text generator")
	}
	text, err := service.generator.Generate(ctx, taskBreakdownPrompt(task))
	if err != nil {
		return models.TaskBreakdown{}, err
	}

	var subtasks []models.Subtask
	if err := decodeJSONArray(text, &subtasks); err != nil {
		return models.TaskBreakdown{}, err
	}

	breakdown := models.TaskBreakdown{Subtasks: make([]models.Subtask, 0, len(subtasks)), AIGenerated: true}
	for _, subtask := range subtasks {
		title := strings.TrimSpace(subtask.Title)
		if title == "" || subtask.EstimatedMinutes <= 0 {
			continue
		}
		breakdown.Subtasks = append(breakdown.Subtasks, models.Subtask{Title: title, EstimatedMinutes: subtask.EstimatedMinutes})
		breakdown.EstimatedDuration += subtask.EstimatedMinutes
		if len(breakdown.Subtasks) == maxSubtasks {
			break
		}
	}
	if len(breakdown.Subtasks) == 0 {
		return models.TaskBreakdown{}, fmt.Errorf("breakdown has no usable subtasks")
	}
	return breakdown, nil
}

// SuggestGoalSteps returns generated next steps for a goal, or an empty
// non-generated list when the generator is unavailable.
func (service *AssistantService) SuggestGoalSteps(ctx context.Context, userID uint, goalID uint) (GoalSteps, error) {
	goal, err := service.goals.FindByIDForUser(goalID, userID)
	if err != nil {
		return GoalSteps{}, mapMissing(err, ErrGoalNotFound)
	}

	result := GoalSteps{GoalID: goal.ID, Steps: []string{}}
	if service.generator == nil {
		metrics.TextGenRequests.WithLabelValues("fallback").Inc()
		return result, nil
	}
	text, err := service.generator.Generate(ctx, goalStepsPrompt(goal))
	if err == nil {
		var steps []string
		if err = decodeJSONArray(text, &steps); err == nil {
			for _, step := range steps {
				if trimmed := strings.TrimSpace(step); trimmed != "" && len(result.Steps) < maxGoalSteps {
					result.Steps = append(result.Steps, trimmed)
				}
			}
			result.AIGenerated = len(result.Steps) > 0
		}
	}
	if err != nil {
		metrics.TextGenRequests.WithLabelValues("fallback").Inc()
		service.logger.Warn("goal steps fell back", "goal_id", goalID, "err", err)
	}
	return result, nil
}

// MotivationalMessage picks from a fixed table. The choice depends only on
// the context and the local calendar day, so it is stable within a day. An
// unknown context falls back to the time of day.
func (service *AssistantService) MotivationalMessage(contextName string, now time.Time) MotivationalMessage {
	local := now.In(service.location)
	contextName = strings.ToLower(strings.TrimSpace(contextName))
	messages, ok := motivationalMessages[contextName]
	if !ok {
		contextName = dayPeriod(local.Hour())
		messages = motivationalMessages[contextName]
	}
	return MotivationalMessage{
		Context: contextName,
		Message: messages[local.YearDay()%len(messages)],
	}
}

func taskBreakdownPrompt(task models.Task) string {
	var prompt strings.Builder
	prompt.WriteString("Break down this task into 3-5 concrete subtasks with time estimates in minutes.\n")
	prompt.WriteString("Task: ")
	prompt.WriteString(task.Title)
	if description := strings.TrimSpace(task.Description); description != "" {
		prompt.WriteString("\nDetails: ")
		prompt.WriteString(description)
	}
	prompt.WriteString("\nReturn as JSON array only: [{\"title\":\"Subtask 1\",\"estimatedMinutes\":15}]")
	return prompt.String()
}

func goalStepsPrompt(goal models.Goal) string {
	var prompt strings.Builder
	prompt.WriteString("Suggest 3-5 actionable next steps for this goal.\n")
	prompt.WriteString("Goal: ")
	prompt.WriteString(goal.Title)
	fmt.Fprintf(&prompt, "\nCategory: %s\nCurrent progress: %d%%", goal.Category, goal.ProgressPercent)
	if goal.Deadline != nil {
		fmt.Fprintf(&prompt, "\nDeadline: %s", goal.Deadline.Format("2006-01-02"))
	}
	prompt.WriteString("\nReturn as JSON array of strings only.")
	return prompt.String()
}

// decodeJSONArray tolerates prose or code fences around the array.
func decodeJSONArray(text string, target any) error {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return fmt.Errorf("no json array in generated text")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), target); err != nil {
		return fmt.Errorf("decode generated json: %w", err)
	}
	return nil
}
