package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/services"
)

const defaultFocusHistoryLimit = 20

type endFocusInput struct {
	Completed *bool `json:"completed"`
}

func (handler *Handler) StartFocusSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.FocusStartInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	session, err := handler.focusService.StartSession(user.ID, input, handler.now())
	if err != nil {
		return handler.respondError(c, err, "start focus session")
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// EndFocusSession treats a missing body as a completed session.
func (handler *Handler) EndFocusSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	sessionID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid session id")
	}
	var input endFocusInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}
	completed := input.Completed == nil || *input.Completed

	result, err := handler.focusService.EndSession(user.ID, sessionID, completed, handler.now())
	if err != nil {
		return handler.respondError(c, err, "end focus session")
	}
	return c.JSON(result)
}

func (handler *Handler) ActiveFocusSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	active, err := handler.focusService.ActiveSession(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch active session")
	}
	return c.JSON(fiber.Map{"session": active})
}

func (handler *Handler) FocusHistory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	sessions, err := handler.focusService.History(user.ID, c.QueryInt("limit", defaultFocusHistoryLimit))
	if err != nil {
		return handler.respondError(c, err, "fetch focus history")
	}
	return c.JSON(sessions)
}

func (handler *Handler) FocusStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	stats, err := handler.focusService.Stats(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch focus stats")
	}
	return c.JSON(stats)
}

func (handler *Handler) FocusStreak(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	streak, err := handler.focusService.FocusStreak(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch focus streak")
	}
	return c.JSON(fiber.Map{"streak": streak})
}

func (handler *Handler) DetectBurnout(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	report, err := handler.focusService.DetectBurnout(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "detect burnout")
	}
	return c.JSON(report)
}

func (handler *Handler) BurnoutRecovery(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	recovery, err := handler.focusService.GetBurnoutRecovery(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch burnout recovery")
	}
	return c.JSON(recovery)
}
