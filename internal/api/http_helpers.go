package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/services"
)

var errInvalidID = errors.New("invalid id")

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// statusForError is the single mapping from domain errors to HTTP status.
func statusForError(err error) int {
	switch {
	case services.IsNotFound(err):
		return fiber.StatusNotFound
	case services.IsConflict(err):
		return fiber.StatusConflict
	case services.IsInvalidInput(err):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError hides internal failures behind a generic message and logs
// them with the request id.
func (handler *Handler) respondError(c *fiber.Ctx, err error, action string) error {
	status := statusForError(err)
	if status == fiber.StatusInternalServerError {
		handler.logger.Error("request failed", "action", action, "path", c.Path(), "request_id", c.Locals("requestid"), "err", err)
		return apiError(c, status, "failed to "+action)
	}
	return apiError(c, status, err.Error())
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || value == 0 {
		return 0, errInvalidID
	}
	return uint(value), nil
}
