package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthStatus represents the health check response
type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	StoreStatus string    `json:"store_status"`
}

// HealthAction handles the health check endpoint
func (h *Handlers) HealthAction(c *fiber.Ctx) error {
	storeStatus := "ok"
	if err := h.store.Ping(c.UserContext()); err != nil {
		storeStatus = "error"
		h.logger.Error("Event store ping failed", slog.Any("error", err))
	}

	health := HealthStatus{
		Status:      "ok",
		Timestamp:   time.Now(),
		StoreStatus: storeStatus,
	}
	if storeStatus != "ok" {
		health.Status = "degraded"
	}

	return c.JSON(health)
}
