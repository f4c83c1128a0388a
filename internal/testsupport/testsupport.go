// Package testsupport provides shared helpers for handler and store tests,
// backed by an in-process miniredis server.
package testsupport

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/AhmedAlfahdi/analytics-api/internal/config"
	apphttp "github.com/AhmedAlfahdi/analytics-api/internal/http"
	"github.com/AhmedAlfahdi/analytics-api/internal/logging"
	"github.com/AhmedAlfahdi/analytics-api/internal/pkg/geoip"
	"github.com/AhmedAlfahdi/analytics-api/internal/store"
)

// NewTestConfig returns a config suitable for tests, without consulting the
// process environment.
func NewTestConfig() *config.Config {
	return &config.Config{
		AppName:         "analytics-api",
		AppPort:         "0",
		Environment:     config.Test,
		LogLevel:        config.LogLevelError,
		MaxStoredEvents: 10000,
	}
}

// NewTestStore creates a Store connected to a fresh miniredis instance.
// Both are cleaned up when the test finishes.
func NewTestStore(t *testing.T) (*store.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	s, err := store.New("redis://"+mr.Addr(), "", logging.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, mr
}

// NewTestApp builds a Fiber app with all routes mounted against a fresh
// miniredis-backed store.
func NewTestApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()

	s, mr := NewTestStore(t)
	cfg := NewTestConfig()
	logger := logging.NewTestLogger()

	handlers := apphttp.NewHandlers(s, geoip.Open("", logger), cfg, logger)

	app := fiber.New()
	apphttp.MountRoutes(app, handlers)
	return app, mr
}
