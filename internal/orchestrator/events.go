package orchestrator

// Event is the interface for all loop progress events.
// The UI handles events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted when the model is generating.
type ThinkingEvent struct{}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted when the model produces text output.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins. Query carries the
// tool's query argument when it has one, for status display.
type ToolStartEvent struct {
	Name  string
	Query string
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool execution completes.
type ToolEndEvent struct {
	Name   string
	Failed bool
}

func (ToolEndEvent) isEvent() {}

// DoneEvent is emitted when the loop finishes, successfully or not.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
