package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mesa-hq/mesa-server/domain/tools"
	"github.com/mesa-hq/mesa-server/pkg/logger"
	"github.com/mesa-hq/mesa-server/pkg/sse"
)

// dedupPrefixLen is how much frame content participates in the dedup key.
// Kept at the historical value for compatibility with existing streams;
// two long messages sharing a 100-rune prefix from the same node would
// collide, which has not been observed in practice.
const dedupPrefixLen = 100

// chunkSeparator joins consecutive streamed chunks so they read as separate
// utterances instead of a run-on string.
const chunkSeparator = "\n\n"

// chartEnvelope is the tagged success shape of a create_chart tool result.
type chartEnvelope struct {
	Success bool               `json:"success"`
	Chart   *tools.ChartConfig `json:"chart"`
}

// Deduplicator filters one request's raw update frames down to the logical
// events the client should see. The engine may replay the same frame across
// state snapshots; each dedup key is emitted at most once. Not safe for
// concurrent use; create one per request.
type Deduplicator struct {
	seen         map[string]struct{}
	prevWasChunk bool
	log          *slog.Logger
}

func NewDeduplicator(log *slog.Logger) *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]struct{}),
		log:  log.With(logger.Scope("agent.dedup")),
	}
}

func dedupKey(frame UpdateFrame) string {
	content := frame.Content
	if runes := []rune(content); len(runes) > dedupPrefixLen {
		content = string(runes[:dedupPrefixLen])
	}
	return fmt.Sprintf("%s|%s|%s", frame.Node, frame.Kind, content)
}

// Process consumes one raw frame and returns the events to emit for it,
// usually zero or one.
func (d *Deduplicator) Process(frame UpdateFrame) []sse.Event {
	key := dedupKey(frame)
	if _, ok := d.seen[key]; ok {
		return nil
	}
	d.seen[key] = struct{}{}

	switch frame.Kind {
	case FrameToolCall:
		// Intent only, nothing to surface.
		return nil

	case FrameToolResult:
		return d.processToolResult(frame)

	case FrameText, FrameChunk:
		if frame.Content == "" {
			return nil
		}
		content := frame.Content
		isChunk := frame.Kind == FrameChunk
		if isChunk && d.prevWasChunk {
			content = chunkSeparator + content
		}
		d.prevWasChunk = isChunk
		return []sse.Event{sse.NewTextEvent(content)}

	default:
		d.log.Warn("skipping frame of unknown kind", "node", frame.Node, "kind", int(frame.Kind))
		return nil
	}
}

// processToolResult surfaces successful create_chart envelopes as chart
// events. All other tool results feed only the model, never the client.
func (d *Deduplicator) processToolResult(frame UpdateFrame) []sse.Event {
	if frame.Tool != "" && frame.Tool != "create_chart" {
		return nil
	}

	var env chartEnvelope
	if err := json.Unmarshal([]byte(frame.Content), &env); err != nil {
		if strings.TrimSpace(frame.Content) != "" {
			d.log.Warn("skipping malformed tool result", "node", frame.Node, logger.Error(err))
		}
		return nil
	}
	if !env.Success || env.Chart == nil {
		return nil
	}

	d.prevWasChunk = false
	return []sse.Event{sse.NewChartEvent(env.Chart)}
}
