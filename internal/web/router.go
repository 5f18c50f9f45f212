package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-portal/internal/auth"
	"github.com/spec-kit/ticket-portal/internal/web/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	})

	app.Get("/register", cfg.Auth.ShowRegister)
	app.Post("/register", cfg.Auth.Register)
	app.Get("/login", cfg.Auth.ShowLogin)
	app.Post("/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/logout", cfg.Auth.Logout)
	protected.Get("/dashboard", cfg.Tickets.Dashboard)

	// /ticket/new before /ticket/:id so "new" is not parsed as an id.
	protected.Get("/ticket/new", cfg.Tickets.ShowCreate)
	protected.Post("/ticket/new", cfg.Tickets.Create)
	protected.Get("/ticket/:id", cfg.Tickets.View)
	protected.Get("/ticket/:id/edit", cfg.Tickets.ShowEdit)
	protected.Post("/ticket/:id/edit", cfg.Tickets.Edit)
	protected.Post("/ticket/:id/delete", cfg.Tickets.Delete)

	protected.Get("/admin", auth.RequireAdmin(), cfg.Admin.Dashboard)
}
