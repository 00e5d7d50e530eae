package tools

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesa-hq/mesa-server/domain/monitoring"
)

type fakeRunner struct {
	rows    []map[string]any
	err     error
	gotSQL  string
	gotCtx  context.Context
	invoked bool
}

func (f *fakeRunner) RunQuery(ctx context.Context, query string) ([]map[string]any, error) {
	f.invoked = true
	f.gotSQL = query
	f.gotCtx = ctx
	return f.rows, f.err
}

func testMetrics() *monitoring.Metrics {
	return monitoring.NewMetrics(prometheus.NewRegistry())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeEnvelope(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\n%s", err, raw)
	}
	return out
}

func TestExecuteSQLToolReturnsRows(t *testing.T) {
	runner := &fakeRunner{rows: []map[string]any{{"name": "Downtown", "total": float64(4200)}}}
	tool := NewExecuteSQLTool(runner, time.Second, testMetrics(), testLogger())

	out := tool.Invoke(context.Background(), map[string]any{
		"query": "SELECT name, total FROM ai_orders",
	})

	env := decodeEnvelope(t, out)
	if _, hasErr := env["error"]; hasErr {
		t.Fatalf("unexpected error envelope: %s", out)
	}
	data, ok := env["data"].([]any)
	if !ok || len(data) != 1 {
		t.Fatalf("data = %v, want one row", env["data"])
	}
	if runner.gotSQL != "SELECT name, total FROM ai_orders" {
		t.Errorf("runner received %q", runner.gotSQL)
	}
	if _, ok := runner.gotCtx.Deadline(); !ok {
		t.Error("query context has no deadline")
	}
}

func TestExecuteSQLToolRejectsUnsafeQuery(t *testing.T) {
	runner := &fakeRunner{}
	tool := NewExecuteSQLTool(runner, time.Second, testMetrics(), testLogger())

	out := tool.Invoke(context.Background(), map[string]any{
		"query": "DROP TABLE orders",
	})

	env := decodeEnvelope(t, out)
	if env["error"] == nil {
		t.Fatalf("expected error envelope, got %s", out)
	}
	if runner.invoked {
		t.Error("runner must not be called for a rejected query")
	}
}

func TestExecuteSQLToolQueryFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("relation does not exist")}
	tool := NewExecuteSQLTool(runner, time.Second, testMetrics(), testLogger())

	out := tool.Invoke(context.Background(), map[string]any{
		"query": "SELECT missing FROM orders",
	})

	env := decodeEnvelope(t, out)
	errMsg, _ := env["error"].(string)
	if errMsg == "" {
		t.Fatalf("expected error envelope, got %s", out)
	}
}

func TestExecuteSQLToolMissingQuery(t *testing.T) {
	tool := NewExecuteSQLTool(&fakeRunner{}, time.Second, testMetrics(), testLogger())
	env := decodeEnvelope(t, tool.Invoke(context.Background(), map[string]any{}))
	if env["error"] == nil {
		t.Fatal("expected error envelope for missing query")
	}
}

func TestCreateChartToolSuccess(t *testing.T) {
	tool := NewCreateChartTool(testMetrics())
	out := tool.Invoke(context.Background(), map[string]any{
		"chartConfig": map[string]any{
			"type":  "pie",
			"title": "Sales by channel",
			"data": []any{
				map[string]any{"name": "DoorDash", "value": float64(1200)},
				map[string]any{"name": "Square", "value": float64(900)},
			},
		},
	})

	env := decodeEnvelope(t, out)
	if env["success"] != true {
		t.Fatalf("expected success envelope, got %s", out)
	}
	chart, ok := env["chart"].(map[string]any)
	if !ok {
		t.Fatalf("chart missing from envelope: %s", out)
	}
	if chart["type"] != "pie" {
		t.Errorf("chart type = %v", chart["type"])
	}
	if chart["nameKey"] != "name" || chart["valueKey"] != "value" {
		t.Errorf("pie defaults not applied: %v", chart)
	}
}

func TestCreateChartToolCardRoundTrip(t *testing.T) {
	tool := NewCreateChartTool(testMetrics())

	// Model arguments arrive as loosely-typed maps with JSON numbers.
	out := tool.Invoke(context.Background(), map[string]any{
		"chartConfig": map[string]any{
			"type":   "card",
			"title":  "Average order value",
			"value":  float64(42.5),
			"label":  "vs last week",
			"change": float64(-3.2),
		},
	})

	env := decodeEnvelope(t, out)
	if env["success"] != true {
		t.Fatalf("expected success envelope, got %s", out)
	}
	chart, _ := env["chart"].(map[string]any)
	if chart["value"] != float64(42.5) {
		t.Errorf("card value = %v (%T), want 42.5", chart["value"], chart["value"])
	}
	if chart["change"] != float64(-3.2) {
		t.Errorf("card change = %v, want -3.2", chart["change"])
	}
}

func TestCreateChartToolCardStringValueNumericChange(t *testing.T) {
	tool := NewCreateChartTool(testMetrics())

	// Formatted string values are fine; change must stay numeric.
	out := tool.Invoke(context.Background(), map[string]any{
		"chartConfig": map[string]any{
			"type":  "card",
			"value": "$1,284.50",
		},
	})
	env := decodeEnvelope(t, out)
	if env["success"] != true {
		t.Fatalf("expected success envelope for string value, got %s", out)
	}

	out = tool.Invoke(context.Background(), map[string]any{
		"chartConfig": map[string]any{
			"type":   "card",
			"value":  float64(42.5),
			"change": "+12%",
		},
	})
	env = decodeEnvelope(t, out)
	if env["error"] == nil {
		t.Fatalf("string change must fail to decode, got %s", out)
	}
}

func TestCreateChartToolInvalidConfig(t *testing.T) {
	tool := NewCreateChartTool(testMetrics())
	out := tool.Invoke(context.Background(), map[string]any{
		"chartConfig": map[string]any{
			"type": "bar",
			"data": []any{map[string]any{"name": "x"}},
		},
	})

	env := decodeEnvelope(t, out)
	if env["error"] == nil {
		t.Fatalf("expected error envelope, got %s", out)
	}
	if env["success"] != nil {
		t.Errorf("failed validation must not report success: %s", out)
	}
}

func TestCreateChartToolMissingConfig(t *testing.T) {
	tool := NewCreateChartTool(testMetrics())
	env := decodeEnvelope(t, tool.Invoke(context.Background(), map[string]any{"type": "bar"}))
	if env["error"] == nil {
		t.Fatal("expected error envelope when chartConfig is absent")
	}
}

func TestRegistryDispatch(t *testing.T) {
	chart := NewCreateChartTool(testMetrics())
	reg := NewRegistry(chart)

	if _, ok := reg.Get("create_chart"); !ok {
		t.Fatal("create_chart not registered")
	}

	out := reg.Invoke(context.Background(), "no_such_tool", nil)
	env := decodeEnvelope(t, out)
	if env["error"] == nil {
		t.Fatal("unknown tool must return an error envelope")
	}

	decls := reg.Declarations()
	if len(decls) != 1 || decls[0].Name != "create_chart" {
		t.Fatalf("declarations = %v", decls)
	}
	if decls[0].Parameters == nil {
		t.Error("declaration has no parameter schema")
	}
}
