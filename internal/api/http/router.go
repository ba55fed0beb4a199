package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-tracker/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-tracker/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Teams          *handlers.TeamsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/allocate", cfg.Tickets.AllocateTicket)
	tickets.Patch("/:id/resolve", cfg.Tickets.ResolveTicket)
	tickets.Patch("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Patch("/:id/reallocate-to-g1", cfg.Tickets.RejectToG1)
	tickets.Patch("/:id/reallocate-to-team", cfg.Tickets.RejectToSameTeam)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	notifications := api.Group("/notifications")
	notifications.Get("", cfg.Notifications.ListNotifications)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)

	teams := api.Group("/teams")
	teams.Get("", cfg.Teams.ListTeams)
	teams.Post("", cfg.Teams.CreateTeam)

	users := api.Group("/users")
	users.Get("", cfg.Users.ListUsers)
	users.Get("/me", cfg.Users.Me)
	users.Get("/:id", cfg.Users.GetUser)
}
