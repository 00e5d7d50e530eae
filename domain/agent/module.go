package agent

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/mesa-hq/mesa-server/domain/tools"
	"github.com/mesa-hq/mesa-server/internal/config"
)

var Module = fx.Module("agent",
	fx.Provide(
		fx.Annotate(newEngine, fx.As(new(Engine))),
	),
)

func newEngine(cfg *config.Config, registry *tools.Registry, log *slog.Logger) (*GeminiEngine, error) {
	return NewGeminiEngine(context.Background(), cfg, registry, log)
}
