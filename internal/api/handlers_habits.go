package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/models"
	"github.com/terraincognita07/ascend/internal/services"
)

type habitCreateResponse struct {
	Habit models.Habit      `json:"habit"`
	XP    *services.XPAward `json:"xp,omitempty"`
}

func (handler *Handler) ListHabits(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	habits, err := handler.habitService.ListHabits(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch habits")
	}
	return c.JSON(habits)
}

func (handler *Handler) CreateHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.HabitInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	habit, award, err := handler.habitService.CreateHabit(user.ID, input)
	if err != nil {
		return handler.respondError(c, err, "create habit")
	}
	return c.Status(fiber.StatusCreated).JSON(habitCreateResponse{Habit: habit, XP: award})
}

func (handler *Handler) GetHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid habit id")
	}

	habit, err := handler.habitService.GetHabit(user.ID, habitID)
	if err != nil {
		return handler.respondError(c, err, "fetch habit")
	}
	return c.JSON(habit)
}

func (handler *Handler) UpdateHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid habit id")
	}
	var update services.HabitUpdate
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	habit, err := handler.habitService.UpdateHabit(user.ID, habitID, update)
	if err != nil {
		return handler.respondError(c, err, "update habit")
	}
	return c.JSON(habit)
}

func (handler *Handler) DeleteHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid habit id")
	}

	if err := handler.habitService.DeleteHabit(user.ID, habitID); err != nil {
		return handler.respondError(c, err, "delete habit")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) CompleteHabit(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid habit id")
	}

	completion, err := handler.habitService.CompleteHabit(user.ID, habitID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "complete habit")
	}
	return c.JSON(completion)
}

func (handler *Handler) ResetHabitStreak(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	habitID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid habit id")
	}

	habit, err := handler.habitService.ResetStreak(user.ID, habitID)
	if err != nil {
		return handler.respondError(c, err, "reset streak")
	}
	return c.JSON(habit)
}

func (handler *Handler) HabitsDueToday(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	habits, err := handler.habitService.HabitsDueToday(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch due habits")
	}
	return c.JSON(habits)
}

func (handler *Handler) HabitStreakSummary(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	habits, err := handler.habitService.StreakSummary(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch streak summary")
	}
	return c.JSON(habits)
}

func (handler *Handler) HabitStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	stats, err := handler.habitService.Stats(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch habit stats")
	}
	return c.JSON(stats)
}

func (handler *Handler) HabitWeeklyConsistency(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	consistency, err := handler.habitService.WeeklyConsistency(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch habit consistency")
	}
	return c.JSON(fiber.Map{"consistency": consistency})
}
