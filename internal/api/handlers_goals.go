package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/models"
	"github.com/terraincognita07/ascend/internal/services"
)

type goalCreateResponse struct {
	Goal models.Goal       `json:"goal"`
	XP   *services.XPAward `json:"xp,omitempty"`
}

type linkHabitInput struct {
	HabitID uint `json:"habit_id"`
}

func (handler *Handler) ListGoals(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	goals, err := handler.goalService.ListGoals(user.ID, strings.ToLower(strings.TrimSpace(c.Query("status"))))
	if err != nil {
		return handler.respondError(c, err, "fetch goals")
	}
	return c.JSON(goals)
}

func (handler *Handler) CreateGoal(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.GoalInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	goal, award, err := handler.goalService.CreateGoal(user.ID, input)
	if err != nil {
		return handler.respondError(c, err, "create goal")
	}
	return c.Status(fiber.StatusCreated).JSON(goalCreateResponse{Goal: goal, XP: award})
}

func (handler *Handler) GetGoal(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}

	goal, err := handler.goalService.GetGoal(user.ID, goalID)
	if err != nil {
		return handler.respondError(c, err, "fetch goal")
	}
	return c.JSON(goal)
}

func (handler *Handler) UpdateGoal(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}
	var update services.GoalUpdate
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := handler.goalService.UpdateGoal(user.ID, goalID, update)
	if err != nil {
		return handler.respondError(c, err, "update goal")
	}
	return c.JSON(result)
}

func (handler *Handler) DeleteGoal(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}

	if err := handler.goalService.DeleteGoal(user.ID, goalID); err != nil {
		return handler.respondError(c, err, "delete goal")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) GoalProbability(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}

	probability, err := handler.goalService.CalculateGoalProbability(user.ID, goalID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "calculate goal probability")
	}
	return c.JSON(probability)
}

func (handler *Handler) LinkGoalHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}
	var input linkHabitInput
	if err := c.BodyParser(&input); err != nil || input.HabitID == 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := handler.goalService.LinkHabit(user.ID, goalID, input.HabitID); err != nil {
		return handler.respondError(c, err, "link habit")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) GoalHabits(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}

	habits, err := handler.goalService.LinkedHabits(user.ID, goalID)
	if err != nil {
		return handler.respondError(c, err, "fetch linked habits")
	}
	return c.JSON(habits)
}

func (handler *Handler) GoalConflicts(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	conflicts, err := handler.goalService.Conflicts(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch goal conflicts")
	}
	return c.JSON(conflicts)
}

func (handler *Handler) GoalStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	stats, err := handler.goalService.Stats(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch goal stats")
	}
	return c.JSON(stats)
}
