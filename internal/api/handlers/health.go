package handlers

import (
	"database/sql"
	"time"

	"taskmanager/internal/cache"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db    *sql.DB
	cache cache.TaskCache
	log   *zap.Logger
}

func NewHealthHandler(db *sql.DB, c cache.TaskCache, log *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: c, log: log}
}

// Health reports 200 when the database and any configured cache are
// reachable. A disabled cache never fails the probe.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	services := fiber.Map{}

	if err := h.db.PingContext(c.Context()); err != nil {
		h.log.Error("Database health check failed", zap.Error(err))
		services["database"] = "disconnected"
		status = "unhealthy"
	} else {
		services["database"] = "connected"
	}

	if !h.cache.Enabled() {
		services["redis"] = "disabled"
	} else if err := h.cache.Ping(c.Context()); err != nil {
		h.log.Error("Redis health check failed", zap.Error(err))
		services["redis"] = "disconnected"
		status = "unhealthy"
	} else {
		services["redis"] = "connected"
	}

	code := fiber.StatusOK
	if status != "healthy" {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"services":  services,
	})
}

// Ready reports 200 unconditionally once the process is serving.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	})
}
