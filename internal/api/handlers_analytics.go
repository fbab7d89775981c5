package api

import "github.com/gofiber/fiber/v2"

const (
	defaultFocusChartDays = 7
	maxFocusChartDays     = 90
)

func (handler *Handler) TaskCompletionRate(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	rate, err := handler.analyticsService.TaskCompletionRate(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch completion rate")
	}
	return c.JSON(rate)
}

func (handler *Handler) HabitConsistency(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	consistency, err := handler.analyticsService.HabitConsistency(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch habit consistency")
	}
	return c.JSON(consistency)
}

func (handler *Handler) WeeklySummary(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summary, err := handler.analyticsService.WeeklySummary(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch weekly summary")
	}
	return c.JSON(summary)
}

func (handler *Handler) DailyFocusMinutes(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	days := c.QueryInt("days", defaultFocusChartDays)
	if days < 1 || days > maxFocusChartDays {
		return apiError(c, fiber.StatusBadRequest, "invalid days")
	}

	points, err := handler.analyticsService.DailyFocusMinutes(user.ID, handler.now(), days)
	if err != nil {
		return handler.respondError(c, err, "fetch daily focus")
	}
	return c.JSON(points)
}

func (handler *Handler) MostProductiveTime(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	productive, err := handler.analyticsService.MostProductiveTime(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch productive time")
	}
	return c.JSON(fiber.Map{"productive_time": productive})
}

func (handler *Handler) AnalyticsDashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	dashboard, err := handler.analyticsService.Dashboard(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch analytics dashboard")
	}
	return c.JSON(dashboard)
}

func (handler *Handler) GoalTrends(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	points, err := handler.analyticsService.GoalTrends(user.ID, handler.now(), c.QueryInt("days", 0))
	if err != nil {
		return handler.respondError(c, err, "fetch goal trends")
	}
	return c.JSON(points)
}

func (handler *Handler) GoalProgress(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	entries, err := handler.analyticsService.GoalProgress(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch goal progress")
	}
	return c.JSON(entries)
}

func (handler *Handler) ProductivityHeatmap(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	heatmap, err := handler.analyticsService.ProductivityHeatmap(user.ID, handler.now(), c.QueryInt("weeks", 0))
	if err != nil {
		return handler.respondError(c, err, "fetch productivity heatmap")
	}
	return c.JSON(heatmap)
}

func (handler *Handler) Engagement(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	engagement, err := handler.analyticsService.Engagement(user.ID, handler.now())
	if err != nil {
		return handler.respondError(c, err, "fetch engagement")
	}
	return c.JSON(engagement)
}

func (handler *Handler) HabitsComparison(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	performance, err := handler.analyticsService.HabitsComparison(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch habit comparison")
	}
	return c.JSON(performance)
}
