package http

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AhmedAlfahdi/analytics-api/internal/events"
	"github.com/AhmedAlfahdi/analytics-api/internal/store"
)

// BadgeResponse is the shields.io endpoint-badge envelope.
type BadgeResponse struct {
	SchemaVersion int    `json:"schemaVersion"`
	Label         string `json:"label"`
	Message       string `json:"message"`
	Color         string `json:"color"`
}

// BadgeAction returns a single scalar metric for third-party badge
// renderers, as bare text or as a shields.io JSON envelope. Failures
// degrade to a sentinel "error" value in a well-formed 200 response:
// badge consumers render whatever body they get and cannot handle
// non-2xx statuses gracefully.
func (h *Handlers) BadgeAction(c *fiber.Ctx) error {
	format := c.Query("format")
	if format == "" {
		if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON) {
			format = "json"
		} else {
			format = "text"
		}
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age=300")

	ctx := c.UserContext()

	visits, err := h.store.ReadAllRecords(ctx, store.VisitsKey)
	if err != nil {
		return h.badgeFailure(c, format, err)
	}
	uniqueIPs, err := h.store.ReadSet(ctx, store.UniqueIPsKey)
	if err != nil {
		return h.badgeFailure(c, format, err)
	}

	filtered := events.Filter(events.Normalize(visits), uniqueIPs)

	visitorIDs := make(map[string]struct{})
	for _, view := range filtered.PageViews {
		if view.VisitorID != "" {
			visitorIDs[view.VisitorID] = struct{}{}
		}
	}

	var value int
	switch c.Query("metric", "visitors") {
	case "views":
		value = len(filtered.PageViews)
	case "ips":
		value = len(filtered.DistinctIPs)
	default:
		value = len(visitorIDs)
	}

	if format == "json" {
		return c.JSON(BadgeResponse{
			SchemaVersion: 1,
			Label:         "visitors",
			Message:       strconv.Itoa(value),
			Color:         "blue",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	return c.SendString(strconv.Itoa(value))
}

func (h *Handlers) badgeFailure(c *fiber.Ctx, format string, err error) error {
	h.logger.Error("Failed to compute badge metric", slog.Any("error", err))

	if format == "json" {
		return c.JSON(BadgeResponse{
			SchemaVersion: 1,
			Label:         "visitors",
			Message:       "error",
			Color:         "red",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	return c.SendString("error")
}
