package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/models"
)

const contextUserKey = "current_user"

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	raw, err := bearerToken(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	userID, err := handler.parseToken(raw)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	user, err := handler.authService.FindByID(userID)
	if err != nil {
		// A token for a deleted account is no longer valid.
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, &user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}
