package http

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/AhmedAlfahdi/analytics-api/internal/events"
	"github.com/AhmedAlfahdi/analytics-api/internal/store"
)

// StatsAction computes the full statistics bundle from the stored event
// log. Everything is derived on read; there is no cached or incremental
// state. A store failure aborts the whole request, partial statistics are
// never returned.
func (h *Handlers) StatsAction(c *fiber.Ctx) error {
	ctx := c.UserContext()

	visits, err := h.store.ReadAllRecords(ctx, store.VisitsKey)
	if err != nil {
		return h.statsFailure(c, err)
	}
	serverLogs, err := h.store.ReadAllRecords(ctx, store.ServerLogsKey)
	if err != nil {
		return h.statsFailure(c, err)
	}
	uniqueIPs, err := h.store.ReadSet(ctx, store.UniqueIPsKey)
	if err != nil {
		return h.statsFailure(c, err)
	}

	// Client-tracked visits and pixel logs are merged unconditionally, so a
	// visit captured by both trackers counts twice.
	merged := make([]string, 0, len(visits)+len(serverLogs))
	merged = append(merged, visits...)
	merged = append(merged, serverLogs...)

	filtered := events.Filter(events.Normalize(merged), uniqueIPs)
	return c.JSON(events.Aggregate(filtered))
}

func (h *Handlers) statsFailure(c *fiber.Ctx, err error) error {
	h.logger.Error("Failed to compute statistics", slog.Any("error", err))
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}
