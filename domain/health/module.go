package health

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// Module provides health check dependencies
var Module = fx.Module("health",
	fx.Provide(NewHandler),
	fx.Provide(NewSystemHandler),
	fx.Invoke(RegisterRoutes),
)

// RegisterRoutes registers health routes with the Echo router
func RegisterRoutes(e *echo.Echo, h *Handler, sys *SystemHandler) {
	e.GET("/health", h.Health)
	e.GET("/health/system", sys.System)
	e.GET("/healthz", h.Healthz)
	e.GET("/ready", h.Ready)
}
