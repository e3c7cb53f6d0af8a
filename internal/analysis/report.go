package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/mia/internal/conversation"
)

// ErrEmptyReport indicates the loop completed without producing any
// renderable text.
var ErrEmptyReport = errors.New("response content is missing or improperly formatted")

// render flattens a completed transcript into report markdown. Assistant
// turns are concatenated in order; tool results become "### Tool Result:"
// sections only when includeToolResults is set.
func render(transcript *conversation.Transcript, includeToolResults bool) (string, error) {
	var b strings.Builder
	for _, msg := range transcript.Messages() {
		switch m := msg.(type) {
		case conversation.UserMessage:
			// The prompt and image are not part of the report.
		case conversation.AssistantMessage:
			if m.Text != "" {
				b.WriteString(m.Text)
			}
		case conversation.ToolResultMessage:
			if includeToolResults {
				fmt.Fprintf(&b, "\n\n### Tool Result:\n%s", m.Content)
			}
		}
	}

	out := b.String()
	if strings.TrimSpace(out) == "" {
		return "", ErrEmptyReport
	}
	return out, nil
}
