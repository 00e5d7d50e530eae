package agent

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesa-hq/mesa-server/domain/tools"
	"github.com/mesa-hq/mesa-server/pkg/sse"
)

func newTestDedup() *Deduplicator {
	return NewDeduplicator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDeduplicatorSuppressesRepeatedFrames(t *testing.T) {
	d := newTestDedup()
	frame := UpdateFrame{Node: "agent", Kind: FrameChunk, Content: "Here are yesterday's totals."}

	require.Len(t, d.Process(frame), 1)
	assert.Empty(t, d.Process(frame), "repeated frame must be discarded")
}

func TestDeduplicatorDistinguishesKindAndNode(t *testing.T) {
	d := newTestDedup()
	content := "same content"

	assert.Len(t, d.Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: content}), 1)
	assert.Len(t, d.Process(UpdateFrame{Node: "agent", Kind: FrameText, Content: content}), 1,
		"same content with a different kind is a different key")
	assert.Len(t, d.Process(UpdateFrame{Node: "other", Kind: FrameChunk, Content: content}), 1,
		"same content from a different node is a different key")
}

func TestDeduplicatorLongContentPrefixCollision(t *testing.T) {
	d := newTestDedup()
	prefix := strings.Repeat("a", dedupPrefixLen)

	require.Len(t, d.Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: prefix + " first tail"}), 1)
	// Same 100-rune prefix collides; the second frame is suppressed.
	assert.Empty(t, d.Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: prefix + " second tail"}))
}

func TestDeduplicatorChunkJoin(t *testing.T) {
	d := newTestDedup()

	first := d.Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: "Looking at the data."})
	require.Len(t, first, 1)
	assert.Equal(t, "Looking at the data.", first[0].Content, "first chunk is emitted unmodified")

	second := d.Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: "Sales are up 12%."})
	require.Len(t, second, 1)
	assert.Equal(t, "\n\nSales are up 12%.", second[0].Content, "consecutive chunks get a paragraph separator")
}

func TestDeduplicatorFinalizedTextDoesNotJoin(t *testing.T) {
	d := newTestDedup()

	d.Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: "partial"})
	finalized := d.Process(UpdateFrame{Node: "agent", Kind: FrameText, Content: "complete answer"})
	require.Len(t, finalized, 1)
	assert.Equal(t, "complete answer", finalized[0].Content)

	// A chunk after finalized text starts fresh, no separator.
	next := d.Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: "new thought"})
	require.Len(t, next, 1)
	assert.Equal(t, "new thought", next[0].Content)
}

func TestDeduplicatorToolCallProducesNothing(t *testing.T) {
	d := newTestDedup()
	frame := UpdateFrame{Node: "agent", Kind: FrameToolCall, Tool: "execute_sql", Content: `{"query":"SELECT 1"}`}

	assert.Empty(t, d.Process(frame))
	// Still marked seen.
	assert.Empty(t, d.Process(frame))
}

func TestDeduplicatorChartResult(t *testing.T) {
	d := newTestDedup()
	payload := `{"success":true,"chart":{"type":"bar","title":"Sales","data":[{"location_name":"Downtown","total":420}],"xAxis":"location_name","yAxis":"total"}}`

	got := d.Process(UpdateFrame{Node: "tools", Kind: FrameToolResult, Tool: "create_chart", Content: payload})
	require.Len(t, got, 1)
	require.Equal(t, sse.EventChart, got[0].Type)

	chart, ok := got[0].Content.(*tools.ChartConfig)
	require.True(t, ok, "chart content has type %T", got[0].Content)
	assert.Equal(t, tools.ChartBar, chart.Type)
	assert.Equal(t, "Sales", chart.Title)
}

func TestDeduplicatorNonChartResultsDiscarded(t *testing.T) {
	tests := []struct {
		name  string
		frame UpdateFrame
	}{
		{
			name:  "sql data envelope",
			frame: UpdateFrame{Node: "tools", Kind: FrameToolResult, Tool: "execute_sql", Content: `{"data":[{"total":100}]}`},
		},
		{
			name:  "chart error envelope",
			frame: UpdateFrame{Node: "tools", Kind: FrameToolResult, Tool: "create_chart", Content: `{"error":"bar chart requires xAxis"}`},
		},
		{
			name:  "malformed payload",
			frame: UpdateFrame{Node: "tools", Kind: FrameToolResult, Tool: "create_chart", Content: `not json at all`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, newTestDedup().Process(tt.frame))
		})
	}
}

func TestDeduplicatorEmptyTextSkipped(t *testing.T) {
	assert.Empty(t, newTestDedup().Process(UpdateFrame{Node: "agent", Kind: FrameChunk, Content: ""}))
}
