package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AhmedAlfahdi/analytics-api/internal/store"
)

// TrackAction ingests one client-reported event. The payload is stored
// verbatim with the server-observed address and timestamp overlaid; clients
// are trusted to send whatever fields they have, and nothing optional is
// required. Only a body that fails to decode is rejected.
func (h *Handlers) TrackAction(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		h.logger.Debug("Rejected undecodable track payload", slog.Any("error", err))
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	ip := clientIP(c)
	payload["ip"] = ip
	payload["timestamp"] = time.Now().UTC().Format(isoTimestamp)

	record, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to serialize event", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	ctx := c.UserContext()
	if err := h.store.AppendEvent(ctx, store.VisitsKey, record); err != nil {
		h.logger.Error("Failed to store event", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	if err := h.store.TrimToMostRecent(ctx, store.VisitsKey, h.cfg.MaxStoredEvents); err != nil {
		h.logger.Error("Failed to trim event list", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	if err := h.store.AddToSet(ctx, store.UniqueIPsKey, ip); err != nil {
		h.logger.Error("Failed to record unique address", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	// Visitor identity is tracked as address:path, matching what the
	// badge's visitor metric historically counted.
	path, _ := payload["path"].(string)
	if err := h.store.AddToSet(ctx, store.UniqueVisitorsKey, ip+":"+path); err != nil {
		h.logger.Error("Failed to record unique visitor", slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{"success": true})
}
