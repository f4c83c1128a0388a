// main.go - HTTP server application
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/AhmedAlfahdi/analytics-api/internal/config"
	apphttp "github.com/AhmedAlfahdi/analytics-api/internal/http"
	"github.com/AhmedAlfahdi/analytics-api/internal/logging"
	"github.com/AhmedAlfahdi/analytics-api/internal/pkg/geoip"
	"github.com/AhmedAlfahdi/analytics-api/internal/store"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	cfg := config.GetConfig()
	logger := logging.NewLogger(cfg)

	eventStore, err := store.New(cfg.RedisURL, cfg.RedisKeyPrefix, logger)
	if err != nil {
		log.Fatalf("Failed to create event store: %v", err)
	}
	defer eventStore.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := eventStore.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to reach event store: %v", err)
	}
	cancel()

	geo := geoip.Open(cfg.GeoDBPath, logger)
	defer geo.Close()

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	apphttp.MountRoutes(app, apphttp.NewHandlers(eventStore, geo, cfg, logger))

	go func() {
		logger.Info("Starting server", slog.String("port", cfg.AppPort))
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	waitForShutdownSignal(app, logger)
}

// waitForShutdownSignal sets up signal handling and performs graceful shutdown
func waitForShutdownSignal(app *fiber.App, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigChan
	logger.Info("Received signal, shutting down", slog.String("signal", sig.String()))

	if err := app.ShutdownWithTimeout(defaultShutdownTimeout); err != nil {
		logger.Error("Error during shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Server shutdown complete")
}
