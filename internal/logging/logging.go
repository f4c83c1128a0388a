// Package logging builds the application logger on top of log/slog with
// size-based rotation for file output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AhmedAlfahdi/analytics-api/internal/config"
)

// NewLogger creates a structured logger writing JSON records to a rotated
// log file. Outside production the output is mirrored to stdout.
func NewLogger(cfg *config.Config) *slog.Logger {
	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogsDirectory, cfg.AppName+".log"),
		MaxSize:    cfg.LogsMaxSizeInMb,
		MaxBackups: cfg.LogsMaxBackups,
		MaxAge:     cfg.LogsMaxAgeInDays,
		Compress:   true,
	}

	var out io.Writer = rotated
	if !cfg.IsProduction() {
		out = io.MultiWriter(os.Stdout, rotated)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	})
	return slog.New(handler)
}

// NewTestLogger returns a logger that discards everything, for use in tests.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
