// Package logger provides structured logging built on log/slog.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/fx"
)

// Module provides the application logger as an fx module
var Module = fx.Module("logger",
	fx.Provide(NewLogger),
)

// NewLogger creates the root slog.Logger.
//
// Output format is JSON unless GO_ENV=development, in which case a
// human-readable text handler is used. The minimum level is taken from
// LOG_LEVEL (debug, info, warn/warning, error), defaulting to info.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("GO_ENV"), "development") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Scope returns a scope attribute identifying the logging component.
// Convention: log.With(logger.Scope("chat.handler")).
func Scope(scope string) slog.Attr {
	return slog.String("scope", scope)
}

// Error returns an error attribute.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}
