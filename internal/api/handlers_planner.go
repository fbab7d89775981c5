package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/services"
)

func (handler *Handler) SmartSchedule(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	schedule, err := handler.plannerService.SmartSchedule(user.ID, c.QueryFloat("hours", 0))
	if err != nil {
		return handler.respondError(c, err, "build schedule")
	}
	return c.JSON(schedule)
}

func (handler *Handler) DetectProcrastination(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	report, err := handler.plannerService.DetectProcrastination(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "detect procrastination")
	}
	return c.JSON(report)
}

func (handler *Handler) EstimateTaskTime(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.EstimateInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	estimate, err := handler.plannerService.EstimateTaskTime(user.ID, input, handler.now())
	if err != nil {
		return handler.respondError(c, err, "estimate task time")
	}
	return c.JSON(estimate)
}

func (handler *Handler) WeeklyReflection(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.WeeklyReflectionInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	reflection, err := services.BuildWeeklyReflection(input)
	if err != nil {
		return handler.respondError(c, err, "build weekly reflection")
	}
	return c.JSON(reflection)
}

func (handler *Handler) CoachSuggestions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	suggestions, err := handler.plannerService.Suggestions(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch suggestions")
	}
	return c.JSON(suggestions)
}

func (handler *Handler) SemesterPlan(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.SemesterPlanInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := handler.plannerService.SemesterPlan(c.UserContext(), input, handler.now())
	if err != nil {
		return handler.respondError(c, err, "build semester plan")
	}
	return c.JSON(plan)
}

func (handler *Handler) AnalyzeFallingBehind(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.FallingBehindInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	analysis, err := handler.plannerService.AnalyzeFallingBehind(c.UserContext(), input)
	if err != nil {
		return handler.respondError(c, err, "analyze progress")
	}
	return c.JSON(analysis)
}

func (handler *Handler) AnalyzeMetricGap(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.MetricGapInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	report, err := services.AnalyzeMetricGap(input)
	if err != nil {
		return handler.respondError(c, err, "analyze metric gap")
	}
	return c.JSON(report)
}
