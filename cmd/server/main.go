// Package main provides the entry point for the Mesa analytics API server
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/mesa-hq/mesa-server/domain/agent"
	"github.com/mesa-hq/mesa-server/domain/chat"
	"github.com/mesa-hq/mesa-server/domain/health"
	"github.com/mesa-hq/mesa-server/domain/monitoring"
	"github.com/mesa-hq/mesa-server/domain/tools"
	"github.com/mesa-hq/mesa-server/domain/tracing"
	"github.com/mesa-hq/mesa-server/internal/config"
	"github.com/mesa-hq/mesa-server/internal/database"
	"github.com/mesa-hq/mesa-server/internal/server"
	"github.com/mesa-hq/mesa-server/pkg/auth"
	"github.com/mesa-hq/mesa-server/pkg/logger"
)

func main() {
	// Load .env files if present (for local development)
	// Load() won't overwrite existing vars, Overload() will
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		// Logging
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		server.Module,

		// Auth module
		auth.Module,

		// Domain modules
		tracing.Module,
		health.Module,
		monitoring.Module,
		tools.Module,
		agent.Module,
		chat.Module,
	).Run()
}
