package api

import (
	"net/http"

	"taskmanager/internal/api/handlers"
	"taskmanager/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Deps carries the constructed handlers into route registration.
type Deps struct {
	Tasks   *handlers.TaskHandler
	Auth    *handlers.AuthHandler
	Health  *handlers.HealthHandler
	Metrics http.Handler
	Secret  []byte
}

func RegisterRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api")

	tasks := api.Group("/tasks")
	tasks.Get("/", d.Tasks.List)
	tasks.Post("/", d.Tasks.Create)
	tasks.Post("/batch", d.Tasks.BatchCreate)
	tasks.Get("/:id", d.Tasks.Get)
	tasks.Put("/:id", d.Tasks.Update)
	tasks.Delete("/:id", d.Tasks.Delete)

	api.Get("/stats", d.Tasks.Stats)

	auth := api.Group("/auth")
	auth.Post("/register", d.Auth.Register)
	auth.Post("/login", d.Auth.Login)
	auth.Get("/me", middleware.UseToken(d.Secret), d.Auth.Me)

	app.Get("/health", d.Health.Health)
	app.Get("/ready", d.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics))

	// Fallback for unknown routes.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Resource not found"})
	})
}
