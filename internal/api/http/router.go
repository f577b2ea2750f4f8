package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shiftline/workforce-service/internal/api/http/handlers"
	"github.com/shiftline/workforce-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Profile        *handlers.ProfileHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Each protected group declares the
// roles allowed through it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.RequireAuth)
	api.Get("/me", cfg.Profile.Me)

	admin := api.Group("/admin", auth.RequireRole("admin", "superadmin"))
	admin.Get("/auth/cache", cfg.Admin.CacheStats)
	admin.Post("/auth/cache/purge", cfg.Admin.PurgeCaches)
}
