package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/services"
)

const defaultReflectionLimit = 10

func (handler *Handler) GetDreamProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.dreamService.GetProfile(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch dream profile")
	}
	return c.JSON(profile)
}

func (handler *Handler) UpsertDreamProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.DreamProfileInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := handler.dreamService.UpsertProfile(user.ID, input)
	if err != nil {
		return handler.respondError(c, err, "save dream profile")
	}
	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

func (handler *Handler) DreamAlignment(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	report, err := handler.dreamService.AlignmentScore(user.ID)
	if err != nil {
		return handler.respondError(c, err, "calculate alignment")
	}
	return c.JSON(report)
}

func (handler *Handler) DreamGaps(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	gaps, err := handler.dreamService.GapAnalysis(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "analyze gaps")
	}
	return c.JSON(fiber.Map{"gaps": gaps})
}

func (handler *Handler) RecordReflection(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.ReflectionInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reflection, err := handler.dreamService.RecordReflection(user.ID, input)
	if err != nil {
		return handler.respondError(c, err, "record reflection")
	}
	return c.Status(fiber.StatusCreated).JSON(reflection)
}

func (handler *Handler) ListReflections(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	reflections, err := handler.dreamService.ListReflections(user.ID, c.QueryInt("limit", defaultReflectionLimit))
	if err != nil {
		return handler.respondError(c, err, "fetch reflections")
	}
	return c.JSON(reflections)
}

func (handler *Handler) DreamMilestones(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	milestones, err := handler.dreamService.MilestoneProgress(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch milestones")
	}
	return c.JSON(milestones)
}

func (handler *Handler) DreamInsights(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	insights, err := handler.dreamService.Insights(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch dream insights")
	}
	return c.JSON(insights)
}
