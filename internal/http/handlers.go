// Package http contains the Fiber handlers for the tracking and query
// endpoints.
package http

import (
	"log/slog"

	"github.com/AhmedAlfahdi/analytics-api/internal/config"
	"github.com/AhmedAlfahdi/analytics-api/internal/pkg/geoip"
	"github.com/AhmedAlfahdi/analytics-api/internal/store"
)

// Timestamps are written the way JavaScript's toISOString renders them, so
// stored records stay compatible with events tracked by browser clients.
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

// Handlers bundles the dependencies shared by all endpoint actions.
type Handlers struct {
	store  *store.Store
	geo    *geoip.Reader
	cfg    *config.Config
	logger *slog.Logger
}

// NewHandlers wires the endpoint actions to their collaborators.
func NewHandlers(s *store.Store, geo *geoip.Reader, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:  s,
		geo:    geo,
		cfg:    cfg,
		logger: logger,
	}
}
