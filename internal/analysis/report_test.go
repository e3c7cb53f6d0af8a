package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/mia/internal/conversation"
)

func transcriptWith(msgs ...conversation.Message) *conversation.Transcript {
	tr := conversation.NewTranscript()
	tr.Append(msgs...)
	return tr
}

func TestRender_ConcatenatesAssistantTurns(t *testing.T) {
	tr := transcriptWith(
		conversation.UserMessage{Parts: []conversation.Part{conversation.TextPart{Text: "prompt"}}},
		conversation.AssistantMessage{Text: "Searching for references."},
		conversation.AssistantMessage{Text: "\n\n### 1. Image Type & Region\nChest X-ray."},
	)

	out, err := render(tr, false)

	require.NoError(t, err)
	assert.Equal(t, "Searching for references.\n\n### 1. Image Type & Region\nChest X-ray.", out)
}

func TestRender_PromptNeverRendered(t *testing.T) {
	tr := transcriptWith(
		conversation.UserMessage{Parts: []conversation.Part{conversation.TextPart{Text: "secret prompt"}}},
		conversation.AssistantMessage{Text: "report"},
	)

	out, err := render(tr, false)

	require.NoError(t, err)
	assert.NotContains(t, out, "secret prompt")
}

func TestRender_ToolResultsExcludedByDefault(t *testing.T) {
	tr := transcriptWith(
		conversation.AssistantMessage{ToolCalls: []conversation.ToolCall{
			{ID: "call_1", Name: "web_search", Args: map[string]any{"query": "q"}},
		}},
		conversation.ToolResultMessage{CallID: "call_1", Name: "web_search", Content: "1. Some link"},
		conversation.AssistantMessage{Text: "final text"},
	)

	out, err := render(tr, false)

	require.NoError(t, err)
	assert.Equal(t, "final text", out)
	assert.NotContains(t, out, "Tool Result")
}

func TestRender_ToolResultsIncludedWhenOptedIn(t *testing.T) {
	tr := transcriptWith(
		conversation.AssistantMessage{ToolCalls: []conversation.ToolCall{
			{ID: "call_1", Name: "web_search", Args: map[string]any{"query": "q"}},
		}},
		conversation.ToolResultMessage{CallID: "call_1", Name: "web_search", Content: "1. Some link"},
		conversation.AssistantMessage{Text: "final text"},
	)

	out, err := render(tr, true)

	require.NoError(t, err)
	assert.Contains(t, out, "### Tool Result:\n1. Some link")
	assert.Contains(t, out, "final text")
}

func TestRender_EmptyTranscript(t *testing.T) {
	_, err := render(conversation.NewTranscript(), false)
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestRender_WhitespaceOnly(t *testing.T) {
	tr := transcriptWith(conversation.AssistantMessage{Text: "  \n\t "})

	_, err := render(tr, false)
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestPrompt_HasAllFiveSections(t *testing.T) {
	sections := []string{
		"### 1. Image Type & Region",
		"### 2. Key Findings",
		"### 3. Diagnostic Assessment",
		"### 4. Patient-Friendly Explanation",
		"### 5. Research Context",
	}
	for _, s := range sections {
		assert.Contains(t, analysisPrompt, s)
	}
}
