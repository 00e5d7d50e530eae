package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"github.com/mesa-hq/mesa-server/domain/monitoring"
	"github.com/mesa-hq/mesa-server/pkg/logger"
	"github.com/mesa-hq/mesa-server/pkg/tracing"
)

// Tool is a capability the agent can invoke during a stream. Invoke always
// returns a JSON envelope string, using the error envelope instead of a Go
// error so the model can read the failure and retry with corrected input.
type Tool interface {
	Name() string
	Description() string
	Parameters() *genai.Schema
	Invoke(ctx context.Context, args map[string]any) string
}

// SQLRunner executes a read query and returns its rows as generic maps.
type SQLRunner interface {
	RunQuery(ctx context.Context, query string) ([]map[string]any, error)
}

func errorEnvelope(err error) string {
	raw, _ := json.Marshal(map[string]any{"error": err.Error()})
	return string(raw)
}

// ExecuteSQLTool runs guarded SELECT queries against the analytics tables.
type ExecuteSQLTool struct {
	runner  SQLRunner
	timeout time.Duration
	metrics *monitoring.Metrics
	log     *slog.Logger
}

func NewExecuteSQLTool(runner SQLRunner, timeout time.Duration, metrics *monitoring.Metrics, log *slog.Logger) *ExecuteSQLTool {
	return &ExecuteSQLTool{
		runner:  runner,
		timeout: timeout,
		metrics: metrics,
		log:     log.With(logger.Scope("tools.execute_sql")),
	}
}

func (t *ExecuteSQLTool) Name() string { return "execute_sql" }

func (t *ExecuteSQLTool) Description() string {
	return "Execute a read-only SQL query against the restaurant analytics database. " +
		"Only SELECT statements against the allowed tables are permitted. " +
		"Returns the result rows as JSON."
}

func (t *ExecuteSQLTool) Parameters() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"query": {
				Type:        genai.TypeString,
				Description: "The SELECT statement to execute.",
			},
		},
		Required: []string{"query"},
	}
}

func (t *ExecuteSQLTool) Invoke(ctx context.Context, args map[string]any) string {
	query, _ := args["query"].(string)
	if query == "" {
		t.metrics.ToolInvocations.WithLabelValues(t.Name(), "error").Inc()
		return errorEnvelope(fmt.Errorf("query is required"))
	}

	if err := ValidateSQL(query); err != nil {
		t.log.Warn("rejected query", "query", query, logger.Error(err))
		t.metrics.SQLRejected.Inc()
		t.metrics.ToolInvocations.WithLabelValues(t.Name(), "rejected").Inc()
		return errorEnvelope(err)
	}

	ctx, span := tracing.Start(ctx, "tools.execute_sql",
		attribute.Int("mesa.sql.query_length", len(query)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	rows, err := t.runner.RunQuery(ctx, query)
	if err != nil {
		t.log.Error("query failed", "query", query, logger.Error(err))
		t.metrics.ToolInvocations.WithLabelValues(t.Name(), "error").Inc()
		return errorEnvelope(fmt.Errorf("query failed: %w", err))
	}

	t.metrics.ToolInvocations.WithLabelValues(t.Name(), "ok").Inc()
	raw, err := json.Marshal(map[string]any{"data": rows})
	if err != nil {
		return errorEnvelope(fmt.Errorf("encode result: %w", err))
	}
	return string(raw)
}

// CreateChartTool validates a chart configuration produced by the model and
// echoes it back in a success envelope for the stream pipeline to forward.
type CreateChartTool struct {
	metrics *monitoring.Metrics
}

func NewCreateChartTool(metrics *monitoring.Metrics) *CreateChartTool {
	return &CreateChartTool{metrics: metrics}
}

func (t *CreateChartTool) Name() string { return "create_chart" }

func (t *CreateChartTool) Description() string {
	return "Render a chart from query results. Supported types: bar, bar-horizontal, " +
		"bar-grouped, line, line-multi, pie, card, table. Provide the fields required " +
		"by the chosen type."
}

func (t *CreateChartTool) Parameters() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"chartConfig": t.chartConfigSchema(),
		},
		Required: []string{"chartConfig"},
	}
}

func (t *CreateChartTool) chartConfigSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: "The chart to render.",
		Properties: map[string]*genai.Schema{
			"type": {
				Type: genai.TypeString,
				Enum: []string{
					string(ChartBar), string(ChartBarHorizontal), string(ChartBarGrouped),
					string(ChartLine), string(ChartLineMulti), string(ChartPie),
					string(ChartCard), string(ChartTable),
				},
				Description: "The chart type to render.",
			},
			"title": {Type: genai.TypeString, Description: "Chart title."},
			"data": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeObject},
				Description: "Data rows to plot. Required for all types except card.",
			},
			"xAxis": {Type: genai.TypeString, Description: "Field used for the x axis."},
			"yAxis": {Type: genai.TypeString, Description: "Field used for the y axis."},
			"series": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Fields plotted as separate series for grouped and multi-line charts.",
			},
			"nameKey":  {Type: genai.TypeString, Description: "Pie slice label field. Defaults to name."},
			"valueKey": {Type: genai.TypeString, Description: "Pie slice value field. Defaults to value."},
			"value":    {Type: genai.TypeString, Description: "Headline value for card charts."},
			"label":    {Type: genai.TypeString, Description: "Caption under a card value."},
			"change":   {Type: genai.TypeNumber, Description: "Signed percentage change for card charts, e.g. 12.5 or -3."},
			"columns": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"key":   {Type: genai.TypeString},
						"label": {Type: genai.TypeString},
					},
					Required: []string{"key", "label"},
				},
				Description: "Column definitions for table charts.",
			},
		},
		Required: []string{"type"},
	}
}

func (t *CreateChartTool) Invoke(_ context.Context, args map[string]any) string {
	raw, ok := args["chartConfig"].(map[string]any)
	if !ok {
		t.metrics.ToolInvocations.WithLabelValues(t.Name(), "error").Inc()
		return errorEnvelope(fmt.Errorf("chartConfig is required"))
	}

	cfg, err := DecodeChart(raw)
	if err != nil {
		t.metrics.ToolInvocations.WithLabelValues(t.Name(), "error").Inc()
		return errorEnvelope(err)
	}
	if err := ValidateChart(cfg); err != nil {
		t.metrics.ToolInvocations.WithLabelValues(t.Name(), "rejected").Inc()
		return errorEnvelope(err)
	}

	t.metrics.ToolInvocations.WithLabelValues(t.Name(), "ok").Inc()
	out, err := json.Marshal(map[string]any{"success": true, "chart": cfg})
	if err != nil {
		return errorEnvelope(fmt.Errorf("encode chart: %w", err))
	}
	return string(out)
}
