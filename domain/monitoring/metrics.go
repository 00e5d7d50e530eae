// Package monitoring exposes Prometheus metrics for the chat pipeline.
package monitoring

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("monitoring",
	fx.Provide(
		NewRegistry,
		NewMetrics,
	),
	fx.Invoke(RegisterRoutes),
)

// Metrics holds the counters instrumenting the streaming pipeline.
type Metrics struct {
	// Streams counts chat stream requests by terminal status
	// (done, error, disconnected).
	Streams *prometheus.CounterVec

	// ToolInvocations counts tool calls by tool name and outcome (ok, error).
	ToolInvocations *prometheus.CounterVec

	// SQLRejected counts queries refused by the SQL guard.
	SQLRejected prometheus.Counter
}

// NewRegistry creates the Prometheus registry with standard process and Go
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		Streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_streams_total",
			Help: "Chat stream requests by terminal status.",
		}, []string{"status"}),
		ToolInvocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agent_tool_invocations_total",
			Help: "Agent tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		SQLRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sql_guard_rejected_total",
			Help: "SQL queries refused by the guard.",
		}),
	}

	reg.MustRegister(m.Streams, m.ToolInvocations, m.SQLRejected)
	return m
}

// RegisterRoutes exposes the registry on GET /metrics.
func RegisterRoutes(e *echo.Echo, reg *prometheus.Registry) {
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
}
