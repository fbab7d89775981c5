package api

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ascend/internal/models"
	"github.com/terraincognita07/ascend/internal/services"
)

func (handler *Handler) ListTasks(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	filter := models.TaskFilter{
		Status:   strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Priority: strings.ToLower(strings.TrimSpace(c.Query("priority"))),
	}
	if raw := strings.TrimSpace(c.Query("completed")); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid completed filter")
		}
		filter.Completed = &completed
	}

	tasks, err := handler.taskService.ListTasks(user.ID, filter)
	if err != nil {
		return handler.respondError(c, err, "fetch tasks")
	}
	return c.JSON(tasks)
}

func (handler *Handler) CreateTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	var input services.TaskInput
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := handler.taskService.CreateTask(user.ID, input)
	if err != nil {
		return handler.respondError(c, err, "create task")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (handler *Handler) GetTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid task id")
	}

	task, err := handler.taskService.GetTask(user.ID, taskID)
	if err != nil {
		return handler.respondError(c, err, "fetch task")
	}
	return c.JSON(task)
}

func (handler *Handler) UpdateTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid task id")
	}
	var update services.TaskUpdate
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := handler.taskService.UpdateTask(user.ID, taskID, update, handler.now())
	if err != nil {
		return handler.respondError(c, err, "update task")
	}
	return c.JSON(result)
}

func (handler *Handler) DeleteTask(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid task id")
	}

	if err := handler.taskService.DeleteTask(user.ID, taskID); err != nil {
		return handler.respondError(c, err, "delete task")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (handler *Handler) TaskDashboardStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	stats, err := handler.taskService.DashboardStats(user.ID)
	if err != nil {
		return handler.respondError(c, err, "fetch task stats")
	}
	return c.JSON(stats)
}
