package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-coordinator/internal/api/http/handlers"
	"github.com/spec-kit/ticket-coordinator/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Points         *handlers.PointsHandler
	Config         *handlers.ConfigHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/token", cfg.Auth.IssueToken)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Put("/auth/key", cfg.Auth.RotateKey)

	tickets := protected.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("/:channel_id", cfg.Tickets.GetTicket)
	tickets.Post("/:channel_id/join", cfg.Tickets.JoinSlot)
	tickets.Post("/:channel_id/leave", cfg.Tickets.LeaveSlot)
	tickets.Post("/:channel_id/close", cfg.Tickets.CloseTicket)
	tickets.Delete("/:channel_id/helpers/:actor_id", cfg.Tickets.RemoveHelper)

	points := protected.Group("/points")
	points.Get("", cfg.Points.Leaderboard)
	points.Delete("", cfg.Points.ResetPoints)
	points.Get("/:user_id", cfg.Points.GetPoints)
	points.Put("/:user_id", cfg.Points.SetPoints)
	points.Post("/:user_id/adjust", cfg.Points.AdjustPoints)

	tenantCfg := protected.Group("/config")
	tenantCfg.Get("", cfg.Config.GetConfig)
	tenantCfg.Put("", cfg.Config.UpdateConfig)
	tenantCfg.Delete("", cfg.Config.ResetConfig)
	tenantCfg.Get("/catalog", cfg.Config.GetCatalog)
	tenantCfg.Put("/catalog", cfg.Config.UpdateCatalog)
}
