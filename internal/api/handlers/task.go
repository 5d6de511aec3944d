package handlers

import (
	"errors"
	"strconv"
	"strings"

	"taskmanager/internal/models"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TaskHandler maps the HTTP surface onto the task service. User-facing error
// messages stay generic; the detail goes to the logs.
type TaskHandler struct {
	svc *service.TaskService
	log *zap.Logger
}

func NewTaskHandler(svc *service.TaskService, log *zap.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

// taskError translates service errors into the response contract: validation
// failures answer 400, unresolved ids 404, everything else the generic 500.
func (h *TaskHandler) taskError(c *fiber.Ctx, err error, fallback string) error {
	var vErr *service.ValidationError
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	case errors.As(err, &vErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Message})
	default:
		h.log.Error(fallback, zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}

// List handles GET /api/tasks with optional completed, priority and search
// query filters.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	var filter models.TaskFilter
	if v := c.Query("completed"); v != "" {
		completed := strings.EqualFold(v, "true")
		filter.Completed = &completed
	}
	if v := c.Query("priority"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			filter.Priority = &p
		}
	}
	filter.Search = c.Query("search")

	tasks, err := h.svc.List(c.Context(), filter)
	if err != nil {
		return h.taskError(c, err, "Failed to fetch tasks")
	}
	return c.JSON(tasks)
}

// Get handles GET /api/tasks/:id.
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	task, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return h.taskError(c, err, "Failed to fetch task")
	}
	return c.JSON(task)
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req models.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Warn("Bad request body in create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid data format"})
	}

	task, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return h.taskError(c, err, "Failed to create task")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// Update handles PUT /api/tasks/:id with partial patch semantics.
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	var req models.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Warn("Bad request body in update task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid data format"})
	}

	task, err := h.svc.Update(c.Context(), id, req)
	if err != nil {
		return h.taskError(c, err, "Failed to update task")
	}
	return c.JSON(task)
}

// Delete handles DELETE /api/tasks/:id.
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Task not found"})
	}

	if err := h.svc.Delete(c.Context(), id); err != nil {
		return h.taskError(c, err, "Failed to delete task")
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

// BatchCreate handles POST /api/tasks/batch. Item failures are reported in
// the body, not as a request failure.
func (h *TaskHandler) BatchCreate(c *fiber.Ctx) error {
	var req models.BatchCreateRequest
	if err := c.BodyParser(&req); err != nil {
		h.log.Warn("Bad request body in batch create", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid data format"})
	}
	if req.Tasks == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tasks array required"})
	}

	result, err := h.svc.BatchCreate(c.Context(), req.Tasks)
	if err != nil {
		return h.taskError(c, err, "Failed to create tasks")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Stats handles GET /api/stats.
func (h *TaskHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return h.taskError(c, err, "Failed to fetch statistics")
	}
	return c.JSON(stats)
}
