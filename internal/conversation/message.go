// Package conversation defines the message model for a single analysis run.
//
// Messages form a closed set of variants handled by type switch; code that
// consumes a Transcript never inspects role strings or probes for optional
// fields.
package conversation

// Part is one segment of a user message.
// The set of part types is closed; consumers switch on the concrete type.
type Part interface {
	isPart()
}

// TextPart is a plain text segment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ImagePart is a self-contained image payload. Data holds the raw encoded
// image bytes (not base64); providers encode as their wire format demands.
type ImagePart struct {
	MIME string
	Data []byte
}

func (ImagePart) isPart() {}

// Message is a single entry in a Transcript.
// The set of message types is closed; consumers switch on the concrete type.
type Message interface {
	isMessage()
}

// UserMessage carries the ordered parts of one user turn.
type UserMessage struct {
	Parts []Part
}

func (UserMessage) isMessage() {}

// AssistantMessage is one model reply: text content, tool call requests,
// or both.
type AssistantMessage struct {
	Text      string
	ToolCalls []ToolCall
}

func (AssistantMessage) isMessage() {}

// HasToolCalls reports whether the model requested tool execution this turn.
// This predicate is the loop's only branching condition.
func (m AssistantMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ToolResultMessage answers exactly one prior ToolCall, correlated by CallID.
// IsError marks results that describe a tool failure rather than tool output.
type ToolResultMessage struct {
	CallID  string
	Name    string
	Content string
	IsError bool
}

func (ToolResultMessage) isMessage() {}

// ToolCall is a structured tool invocation requested by the model.
// Only providers construct these; the ID correlates the eventual result.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}
