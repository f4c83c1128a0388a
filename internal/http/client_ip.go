package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// clientIP extracts the originating address from reverse-proxy headers:
// the first X-Forwarded-For entry, then X-Real-IP. Requests with neither
// are recorded as "unknown" rather than rejected; lossy tracking beats
// dropping legitimate events.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	if real := strings.TrimSpace(c.Get("X-Real-IP")); real != "" {
		return real
	}

	return "unknown"
}
