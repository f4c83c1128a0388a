package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// publicCORSConfig is the standard CORS configuration for public endpoints.
// Trackers and badges are embedded on third-party pages, so every public
// endpoint shares this permissive cross-origin setup.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Authorization",
}

// MountRoutes mounts all application routes on the Fiber app.
func MountRoutes(app *fiber.App, h *Handlers) {
	app.Use(recover.New())

	api := app.Group("/api", cors.New(publicCORSConfig))
	api.Post("/track", h.TrackAction)
	api.Get("/log", h.PixelLogAction)
	api.Get("/stats", h.StatsAction)
	api.Get("/badge", h.BadgeAction)

	app.Get("/health", h.HealthAction)
}
