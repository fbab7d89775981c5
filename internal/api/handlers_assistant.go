package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) BreakDownTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid task id")
	}

	breakdown, err := handler.assistantService.BreakDownTask(c.UserContext(), user.ID, taskID)
	if err != nil {
		return handler.respondError(c, err, "break down task")
	}
	return c.JSON(breakdown)
}

func (handler *Handler) SuggestGoalSteps(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid goal id")
	}

	steps, err := handler.assistantService.SuggestGoalSteps(c.UserContext(), user.ID, goalID)
	if err != nil {
		return handler.respondError(c, err, "suggest goal steps")
	}
	return c.JSON(steps)
}

func (handler *Handler) MotivationalMessage(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(handler.assistantService.MotivationalMessage(c.Query("context"), handler.now()))
}
