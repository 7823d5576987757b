package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Categories     *handlers.CategoriesHandler
	Roles          *handlers.RolesHandler
	Employees      *handlers.EmployeesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Category and role reads are public; everything else
// needs a bearer token and is authorized inside the services.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	app.Post("/auth/workers/login", cfg.Auth.WorkerLogin)

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}
	staffOnly := chain(authenticated, auth.RequireStaff())

	categories := app.Group("/complaint-categories")
	categories.Get("/", cfg.Categories.List)
	categories.Get("/active", cfg.Categories.Active)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Post("/", chain(staffOnly, cfg.Categories.Create)...)
	categories.Put("/:id", chain(staffOnly, cfg.Categories.Update)...)
	categories.Delete("/:id", chain(staffOnly, cfg.Categories.Delete)...)

	roles := app.Group("/roles")
	roles.Get("/", cfg.Roles.List)
	roles.Get("/modules", cfg.Roles.Modules)
	roles.Get("/me/permissions", chain(authenticated, cfg.Roles.MyPermissions)...)
	roles.Get("/:id", cfg.Roles.Get)
	roles.Post("/", chain(staffOnly, cfg.Roles.Create)...)
	roles.Put("/:id", chain(staffOnly, cfg.Roles.Update)...)
	roles.Delete("/:id", chain(staffOnly, cfg.Roles.Delete)...)

	employees := app.Group("/employees", staffOnly...)
	employees.Get("/", cfg.Employees.List)
	employees.Get("/available-users", cfg.Employees.AvailableUsers)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Post("/", cfg.Employees.Create)
	employees.Put("/:id", cfg.Employees.Update)
	employees.Delete("/:id", cfg.Employees.Delete)

	tickets := app.Group("/tickets", authenticated...)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/assign", auth.RequireStaff(), cfg.Tickets.AssignTicket)
	tickets.Put("/:id/status", auth.RequireStaff(), cfg.Tickets.ChangeStatus)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/feedback", auth.RequireStudent(), cfg.Tickets.SubmitFeedback)
}

func chain(base []fiber.Handler, handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(base)+len(handlers))
	out = append(out, base...)
	return append(out, handlers...)
}
