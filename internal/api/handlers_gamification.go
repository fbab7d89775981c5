package api

import "github.com/gofiber/fiber/v2"

const defaultLeaderboardLimit = 10

func (handler *Handler) GamificationStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	stats, err := handler.gamificationService.GetGamificationStats(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch gamification stats")
	}
	return c.JSON(stats)
}

func (handler *Handler) ListAchievements(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	achievements, err := handler.gamificationService.ListAchievements(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch achievements")
	}
	return c.JSON(achievements)
}

func (handler *Handler) CheckAchievements(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	earned, err := handler.achievementService.CheckAndAward(user.ID)
	if err != nil {
		return handler.respondError(c, err, "check achievements")
	}
	return c.JSON(fiber.Map{"new_achievements": earned})
}

func (handler *Handler) Leaderboard(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	entries, err := handler.gamificationService.Leaderboard(c.QueryInt("limit", defaultLeaderboardLimit))
	if err != nil {
		return handler.respondError(c, err, "fetch leaderboard")
	}
	return c.JSON(entries)
}

func (handler *Handler) UserRank(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	rank, err := handler.gamificationService.UserRank(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch rank")
	}
	return c.JSON(rank)
}
