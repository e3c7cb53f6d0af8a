package conversation

import (
	"fmt"
)

// Transcript is the append-only message history of one analysis run.
// A Transcript is owned by exactly one run and is not safe for concurrent
// use; runs never share an instance.
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...Message) {
	t.messages = append(t.messages, msgs...)
}

// Len returns the number of messages appended so far.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the message list in insertion order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// LastAssistant returns the most recent AssistantMessage, if any.
func (t *Transcript) LastAssistant() (AssistantMessage, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if m, ok := t.messages[i].(AssistantMessage); ok {
			return m, true
		}
	}
	return AssistantMessage{}, false
}

// PendingCalls returns the tool calls that have not yet been answered by a
// correlated ToolResultMessage, in the order they were requested.
func (t *Transcript) PendingCalls() []ToolCall {
	answered := make(map[string]bool)
	var pending []ToolCall
	for _, msg := range t.messages {
		switch m := msg.(type) {
		case UserMessage:
			// no tool bookkeeping
		case AssistantMessage:
			pending = append(pending, m.ToolCalls...)
		case ToolResultMessage:
			answered[m.CallID] = true
		}
	}
	var out []ToolCall
	for _, tc := range pending {
		if !answered[tc.ID] {
			out = append(out, tc)
		}
	}
	return out
}

// Verify checks the correlation invariant: every ToolResultMessage must
// answer exactly one prior unanswered ToolCall. It returns the first
// violation found, or nil.
func (t *Transcript) Verify() error {
	pending := make(map[string]bool)
	answered := make(map[string]bool)
	for i, msg := range t.messages {
		switch m := msg.(type) {
		case UserMessage:
			// nothing to check
		case AssistantMessage:
			for _, tc := range m.ToolCalls {
				if tc.ID == "" {
					return fmt.Errorf("message %d: tool call %q has empty id", i, tc.Name)
				}
				pending[tc.ID] = true
			}
		case ToolResultMessage:
			if answered[m.CallID] {
				return fmt.Errorf("message %d: tool call %q answered more than once", i, m.CallID)
			}
			if !pending[m.CallID] {
				return fmt.Errorf("message %d: tool result %q answers no prior call", i, m.CallID)
			}
			delete(pending, m.CallID)
			answered[m.CallID] = true
		}
	}
	return nil
}
