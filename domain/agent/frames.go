// Package agent drives the tool-using model loop and turns its raw update
// frames into an ordered stream of client events.
package agent

// FrameKind tags a raw update frame at the engine boundary so downstream
// consumers can switch on it exhaustively instead of sniffing payload shapes.
type FrameKind int

const (
	// FrameText is a finalized message from a node.
	FrameText FrameKind = iota
	// FrameChunk is a streaming partial of an in-progress message.
	FrameChunk
	// FrameToolCall records the intent to invoke a tool. It carries no
	// user-facing text.
	FrameToolCall
	// FrameToolResult carries a tool's JSON envelope payload.
	FrameToolResult
)

func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "text"
	case FrameChunk:
		return "chunk"
	case FrameToolCall:
		return "tool_call"
	case FrameToolResult:
		return "tool_result"
	default:
		return "unknown"
	}
}

// UpdateFrame is one raw update from the agent engine. Node identifies the
// producing stage, Tool is set for tool call and result frames.
type UpdateFrame struct {
	Node    string
	Kind    FrameKind
	Content string
	Tool    string
}
