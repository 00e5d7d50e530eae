package health

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/mesa-hq/mesa-server/pkg/logger"
)

// SystemHandler reports host resource utilization alongside the liveness
// probes, for operators checking whether a slow stream is the host or the
// model.
type SystemHandler struct {
	pool *pgxpool.Pool
	log  *slog.Logger

	// Collection functions for mocking
	getLoadAvg  func(context.Context) (*load.AvgStat, error)
	getMemStats func(context.Context) (*mem.VirtualMemoryStat, error)
	getCPUCores func() int
}

// NewSystemHandler creates a new system metrics handler
func NewSystemHandler(pool *pgxpool.Pool, log *slog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:        pool,
		log:         log.With(logger.Scope("health.system")),
		getLoadAvg:  load.AvgWithContext,
		getMemStats: mem.VirtualMemoryWithContext,
		getCPUCores: runtime.NumCPU,
	}
}

// SystemResponse is the body of GET /health/system.
type SystemResponse struct {
	Timestamp     string      `json:"timestamp"`
	CPUCores      int         `json:"cpu_cores"`
	Load1         float64     `json:"load_1m"`
	Load5         float64     `json:"load_5m"`
	Load15        float64     `json:"load_15m"`
	MemoryPercent float64     `json:"memory_percent"`
	DBPool        DBPoolStats `json:"db_pool"`
}

// DBPoolStats summarizes pgx pool utilization.
type DBPoolStats struct {
	Total    int32 `json:"total"`
	Idle     int32 `json:"idle"`
	Acquired int32 `json:"acquired"`
	Max      int32 `json:"max"`
}

// System returns host load, memory, and connection pool utilization.
// Collection failures degrade to zero values rather than failing the request.
func (h *SystemHandler) System(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	resp := SystemResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		CPUCores:  h.getCPUCores(),
	}

	if l, err := h.getLoadAvg(ctx); err == nil {
		resp.Load1 = l.Load1
		resp.Load5 = l.Load5
		resp.Load15 = l.Load15
	} else {
		h.log.Warn("failed to collect load average", logger.Error(err))
	}

	if v, err := h.getMemStats(ctx); err == nil {
		resp.MemoryPercent = v.UsedPercent
	} else {
		h.log.Warn("failed to collect memory stats", logger.Error(err))
	}

	if h.pool != nil {
		stats := h.pool.Stat()
		resp.DBPool = DBPoolStats{
			Total:    stats.TotalConns(),
			Idle:     stats.IdleConns(),
			Acquired: stats.AcquiredConns(),
			Max:      stats.MaxConns(),
		}
	}

	return c.JSON(http.StatusOK, resp)
}
