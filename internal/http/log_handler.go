package http

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AhmedAlfahdi/analytics-api/internal/events"
	"github.com/AhmedAlfahdi/analytics-api/internal/pkg/useragent"
	"github.com/AhmedAlfahdi/analytics-api/internal/store"
)

// trackingPixel is a 1x1 transparent GIF.
var trackingPixel, _ = base64.StdEncoding.DecodeString(
	"R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7")

// PixelLogAction records a server-observed page view, the backup path for
// clients with JavaScript blocked. It always answers with the tracking
// pixel, even when storage fails: an <img> consumer cannot do anything
// useful with an error body.
func (h *Handlers) PixelLogAction(c *fiber.Ctx) error {
	ip := clientIP(c)
	if events.IsLoopbackAddress(ip) {
		return c.JSON(fiber.Map{"success": true, "skipped": true, "reason": "localhost"})
	}

	event := h.buildServerLogEvent(c, ip)

	record, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to serialize server log", slog.Any("error", err))
		return sendPixel(c)
	}

	ctx := c.UserContext()
	if err := h.store.AppendEvent(ctx, store.ServerLogsKey, record); err != nil {
		h.logger.Error("Failed to store server log", slog.Any("error", err))
		return sendPixel(c)
	}
	if err := h.store.TrimToMostRecent(ctx, store.ServerLogsKey, h.cfg.MaxStoredEvents); err != nil {
		h.logger.Error("Failed to trim server log list", slog.Any("error", err))
		return sendPixel(c)
	}
	if err := h.store.AddToSet(ctx, store.UniqueIPsKey, ip); err != nil {
		h.logger.Error("Failed to record unique address", slog.Any("error", err))
	}

	return sendPixel(c)
}

// buildServerLogEvent assembles the event from request metadata: path and
// referrer from the query string, device info from the User-Agent, and geo
// from proxy headers with a GeoLite2 fallback.
func (h *Handlers) buildServerLogEvent(c *fiber.Ctx, ip string) events.Event {
	path := c.Query("path", "/")

	referrer := c.Query("ref")
	if referrer == "" {
		referrer = c.Get("Referer")
	}
	if referrer == "" {
		referrer = "direct"
	}

	userAgent := c.Get("User-Agent")
	if userAgent == "" {
		userAgent = "unknown"
	}
	info := useragent.Parse(userAgent)

	event := events.Event{
		IP:         ip,
		Path:       path,
		Referrer:   referrer,
		UserAgent:  userAgent,
		Timestamp:  time.Now().UTC().Format(isoTimestamp),
		Source:     events.SourceServerLog,
		DeviceType: info.DeviceType,
		Browser:    info.Browser,
		OS:         info.OS,
	}

	h.enrichGeo(c, ip, &event)
	return event
}

// enrichGeo fills geo fields from reverse-proxy headers when present,
// otherwise from the optional GeoLite2 database. Failure is non-fatal; the
// event is simply stored without geo fields.
func (h *Handlers) enrichGeo(c *fiber.Ctx, ip string, event *events.Event) {
	event.CountryCode = c.Get("X-Vercel-IP-Country")
	event.RegionCode = c.Get("X-Vercel-IP-Country-Region")
	event.City = c.Get("X-Vercel-IP-City")
	if lat, err := strconv.ParseFloat(c.Get("X-Vercel-IP-Latitude"), 64); err == nil {
		event.Latitude = &lat
	}
	if lon, err := strconv.ParseFloat(c.Get("X-Vercel-IP-Longitude"), 64); err == nil {
		event.Longitude = &lon
	}

	if event.CountryCode != "" || h.geo == nil {
		return
	}
	if location, ok := h.geo.Lookup(ip); ok {
		event.CountryCode = location.CountryCode
		event.RegionCode = location.RegionCode
		event.City = location.City
		lat, lon := location.Latitude, location.Longitude
		event.Latitude = &lat
		event.Longitude = &lon
	}
}

func sendPixel(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate, max-age=0")
	return c.Send(trackingPixel)
}
