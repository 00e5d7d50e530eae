package tools

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/mesa-hq/mesa-server/domain/monitoring"
	"github.com/mesa-hq/mesa-server/internal/config"
)

var Module = fx.Module("tools",
	fx.Provide(
		fx.Annotate(NewPgxRunner, fx.As(new(SQLRunner))),
		newExecuteSQLTool,
		NewCreateChartTool,
		newRegistry,
	),
)

func newExecuteSQLTool(runner SQLRunner, cfg *config.Config, metrics *monitoring.Metrics, log *slog.Logger) *ExecuteSQLTool {
	return NewExecuteSQLTool(runner, cfg.Agent.SQLTimeout, metrics, log)
}

func newRegistry(sql *ExecuteSQLTool, chart *CreateChartTool) *Registry {
	return NewRegistry(sql, chart)
}
