package tools

import (
	"encoding/json"
	"fmt"
)

// ChartType enumerates the visualizations the frontend can render.
type ChartType string

const (
	ChartBar           ChartType = "bar"
	ChartBarHorizontal ChartType = "bar-horizontal"
	ChartBarGrouped    ChartType = "bar-grouped"
	ChartLine          ChartType = "line"
	ChartLineMulti     ChartType = "line-multi"
	ChartPie           ChartType = "pie"
	ChartCard          ChartType = "card"
	ChartTable         ChartType = "table"
)

// ChartColumn describes one column of a table chart.
type ChartColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ChartConfig is the renderable chart payload forwarded to the client.
// Which fields are required depends on Type; ValidateChart enforces that.
type ChartConfig struct {
	Type  ChartType        `json:"type"`
	Title string           `json:"title,omitempty"`
	Data  []map[string]any `json:"data"`

	// Axis charts (bar, bar-horizontal, bar-grouped, line, line-multi).
	XAxis  string   `json:"xAxis,omitempty"`
	YAxis  string   `json:"yAxis,omitempty"`
	Series []string `json:"series,omitempty"`

	// Pie.
	NameKey  string `json:"nameKey,omitempty"`
	ValueKey string `json:"valueKey,omitempty"`

	// Card.
	Value  any      `json:"value,omitempty"`
	Label  string   `json:"label,omitempty"`
	Change *float64 `json:"change,omitempty"`

	// Table.
	Columns []ChartColumn `json:"columns,omitempty"`
}

// DecodeChart converts the loosely-typed arguments of a tool call into a
// ChartConfig by round-tripping through JSON.
func DecodeChart(args map[string]any) (*ChartConfig, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode chart args: %w", err)
	}
	var cfg ChartConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode chart config: %w", err)
	}
	return &cfg, nil
}

// ValidateChart checks that cfg carries the fields its chart type renders
// from, filling defaults where the frontend has them. Unknown types are
// rejected rather than passed through.
func ValidateChart(cfg *ChartConfig) error {
	if cfg == nil {
		return fmt.Errorf("chart config is required")
	}

	switch cfg.Type {
	case ChartBar, ChartBarHorizontal, ChartBarGrouped, ChartLine, ChartLineMulti:
		if err := requireData(cfg); err != nil {
			return err
		}
		if cfg.XAxis == "" {
			return fmt.Errorf("%s chart requires xAxis", cfg.Type)
		}
		// The renderer falls back to yAxis when the grouped and multi-series
		// variants carry no series list, so either field satisfies them.
		if cfg.YAxis == "" && len(cfg.Series) == 0 {
			return fmt.Errorf("%s chart requires yAxis or series", cfg.Type)
		}
	case ChartPie:
		if err := requireData(cfg); err != nil {
			return err
		}
		if cfg.NameKey == "" {
			cfg.NameKey = "name"
		}
		if cfg.ValueKey == "" {
			cfg.ValueKey = "value"
		}
	case ChartCard:
		switch cfg.Value.(type) {
		case string, float64, int, int64, json.Number:
		case nil:
			return fmt.Errorf("card chart requires value")
		default:
			return fmt.Errorf("card chart value must be a number or string")
		}
	case ChartTable:
		if err := requireData(cfg); err != nil {
			return err
		}
		if len(cfg.Columns) == 0 {
			return fmt.Errorf("table chart requires columns")
		}
		for i, col := range cfg.Columns {
			if col.Key == "" || col.Label == "" {
				return fmt.Errorf("table chart column %d requires key and label", i)
			}
		}
	default:
		return fmt.Errorf("unknown chart type: %q", cfg.Type)
	}

	return nil
}

func requireData(cfg *ChartConfig) error {
	if len(cfg.Data) == 0 {
		return fmt.Errorf("%s chart requires data rows", cfg.Type)
	}
	return nil
}
