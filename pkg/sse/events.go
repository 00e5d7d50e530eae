package sse

// EventType identifies the kind of stream event sent to the client.
type EventType string

const (
	// EventText carries a piece of assistant prose.
	EventText EventType = "text"

	// EventSQL carries the SQL statement the agent executed.
	EventSQL EventType = "sql"

	// EventChart carries a chart configuration produced by the agent.
	EventChart EventType = "chart"

	// EventDone signals successful end of stream.
	EventDone EventType = "done"

	// EventError signals a fatal streaming error. Terminal, mutually
	// exclusive with done.
	EventError EventType = "error"
)

// Event is a single member of the stream event union. Content holds a string
// for text/sql/error events and a chart configuration for chart events; it is
// absent for done.
type Event struct {
	Type    EventType `json:"type"`
	Content any       `json:"content,omitempty"`
}

// Terminal reports whether no further events may follow this one.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// NewTextEvent creates a text event.
func NewTextEvent(content string) Event {
	return Event{Type: EventText, Content: content}
}

// NewSQLEvent creates an sql event.
func NewSQLEvent(query string) Event {
	return Event{Type: EventSQL, Content: query}
}

// NewChartEvent creates a chart event. Content is the chart configuration as
// produced by the create_chart tool.
func NewChartEvent(chart any) Event {
	return Event{Type: EventChart, Content: chart}
}

// NewDoneEvent creates the final event of a successful stream.
func NewDoneEvent() Event {
	return Event{Type: EventDone}
}

// NewErrorEvent creates a fatal error event.
func NewErrorEvent(message string) Event {
	return Event{Type: EventError, Content: message}
}
