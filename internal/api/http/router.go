package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crmkit/department-service/internal/api/http/handlers"
	"github.com/crmkit/department-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Departments    *handlers.DepartmentsHandler
	Settings       *handlers.SettingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	departments := app.Group("/departments", cfg.AuthMiddleware.Handle)
	departments.Get("/", cfg.Departments.List)
	departments.Post("/", cfg.Departments.Create)
	departments.Put("/rename/:departmentId", cfg.Departments.Rename)
	// freeusers must precede the :departmentId routes or the param swallows it.
	departments.Get("/freeusers", cfg.Departments.ListFreeUsers)
	departments.Get("/:departmentId/users", cfg.Departments.ListUsers)
	departments.Put("/:departmentId/:userId", cfg.Departments.AssignUser)
	departments.Delete("/:departmentId/:userId", cfg.Departments.UnassignUser)
	departments.Delete("/:departmentId", cfg.Departments.Delete)

	settings := app.Group("/settings", cfg.AuthMiddleware.Handle)
	settings.Get("/", cfg.Settings.Get)
	settings.Get("/lists", cfg.Settings.GetLists)
	settings.Get("/lists/fields", cfg.Settings.GetListsFields)
	settings.Get("/users/roles", cfg.Settings.GetUsersRoles)
}
