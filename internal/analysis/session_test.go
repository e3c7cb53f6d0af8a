package analysis

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/mia/internal/config"
	"github.com/Cyclone1070/mia/internal/conversation"
	"github.com/Cyclone1070/mia/internal/credential"
	"github.com/Cyclone1070/mia/internal/imaging"
)

type mockRunner struct {
	runFunc func(ctx context.Context, transcript *conversation.Transcript) (string, error)
}

func (m *mockRunner) Run(ctx context.Context, transcript *conversation.Transcript) (string, error) {
	return m.runFunc(ctx, transcript)
}

// answeringRunner mimics a loop that answers in one reasoning step.
func answeringRunner(text string) *mockRunner {
	return &mockRunner{
		runFunc: func(ctx context.Context, transcript *conversation.Transcript) (string, error) {
			transcript.Append(conversation.AssistantMessage{Text: text})
			return text, nil
		},
	}
}

func encodePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 3, 2))))
	return buf.Bytes()
}

func readyStore(t *testing.T) *credential.Store {
	t.Helper()
	store := credential.NewStore()
	require.NoError(t, store.Set("sk-test"))
	return store
}

func TestAnalyze_HappyPath(t *testing.T) {
	report := "### 1. Image Type & Region\nPA chest X-ray, good quality."
	session := NewSession(readyStore(t), answeringRunner(report), config.DefaultConfig(), t.TempDir())

	got, err := session.Analyze(context.Background(), encodePNG(t))

	require.NoError(t, err)
	assert.Equal(t, report, got.Markdown)
	assert.Equal(t, "image/png", got.Image.MIME)
	assert.Equal(t, 3, got.Image.Width)
	assert.Equal(t, 2, got.Image.Height)
	assert.NotEmpty(t, got.Image.Fingerprint)
	assert.Equal(t, 1, got.Steps)
	assert.Equal(t, 0, got.ToolResults)
}

func TestAnalyze_SendsPromptAndImage(t *testing.T) {
	imageData := encodePNG(t)

	var gotMessages []conversation.Message
	loop := &mockRunner{
		runFunc: func(ctx context.Context, transcript *conversation.Transcript) (string, error) {
			gotMessages = transcript.Messages()
			transcript.Append(conversation.AssistantMessage{Text: "report"})
			return "report", nil
		},
	}
	session := NewSession(readyStore(t), loop, config.DefaultConfig(), t.TempDir())

	_, err := session.Analyze(context.Background(), imageData)
	require.NoError(t, err)

	require.Len(t, gotMessages, 1)
	user, ok := gotMessages[0].(conversation.UserMessage)
	require.True(t, ok)
	require.Len(t, user.Parts, 2)

	text, ok := user.Parts[0].(conversation.TextPart)
	require.True(t, ok)
	assert.Contains(t, text.Text, "professor of radiology")
	assert.Contains(t, text.Text, "### 5. Research Context")
	assert.Contains(t, text.Text, "web_search")

	img, ok := user.Parts[1].(conversation.ImagePart)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, imageData, img.Data)
}

func TestAnalyze_CountsStepsAndToolResults(t *testing.T) {
	loop := &mockRunner{
		runFunc: func(ctx context.Context, transcript *conversation.Transcript) (string, error) {
			transcript.Append(
				conversation.AssistantMessage{ToolCalls: []conversation.ToolCall{
					{ID: "call_1", Name: "web_search", Args: map[string]any{"query": "q"}},
				}},
				conversation.ToolResultMessage{CallID: "call_1", Name: "web_search", Content: "results"},
				conversation.AssistantMessage{Text: "final"},
			)
			return "final", nil
		},
	}
	session := NewSession(readyStore(t), loop, config.DefaultConfig(), t.TempDir())

	got, err := session.Analyze(context.Background(), encodePNG(t))

	require.NoError(t, err)
	assert.Equal(t, 2, got.Steps)
	assert.Equal(t, 1, got.ToolResults)
}

func TestAnalyze_MissingCredential(t *testing.T) {
	loopCalled := false
	loop := &mockRunner{
		runFunc: func(ctx context.Context, transcript *conversation.Transcript) (string, error) {
			loopCalled = true
			return "", nil
		},
	}
	session := NewSession(credential.NewStore(), loop, config.DefaultConfig(), t.TempDir())

	_, err := session.Analyze(context.Background(), encodePNG(t))

	assert.ErrorIs(t, err, credential.ErrNotSet)
	assert.False(t, loopCalled)
}

func TestAnalyze_OversizedImage(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Image.MaxBytes = 10

	loopCalled := false
	loop := &mockRunner{
		runFunc: func(ctx context.Context, transcript *conversation.Transcript) (string, error) {
			loopCalled = true
			return "", nil
		},
	}
	session := NewSession(readyStore(t), loop, cfg, t.TempDir())

	_, err := session.Analyze(context.Background(), encodePNG(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "10 byte limit")
	assert.False(t, loopCalled)
}

func TestAnalyze_UnsupportedFormat(t *testing.T) {
	session := NewSession(readyStore(t), answeringRunner("x"), config.DefaultConfig(), t.TempDir())

	_, err := session.Analyze(context.Background(), []byte("GIF89a..."))

	assert.ErrorIs(t, err, imaging.ErrUnsupportedFormat)
}

func TestAnalyze_LoopError_Propagates(t *testing.T) {
	loop := &mockRunner{
		runFunc: func(ctx context.Context, transcript *conversation.Transcript) (string, error) {
			return "", fmt.Errorf("provider.Generate: rate limit")
		},
	}
	session := NewSession(readyStore(t), loop, config.DefaultConfig(), t.TempDir())

	_, err := session.Analyze(context.Background(), encodePNG(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestAnalyze_EmptyAnswer_ErrEmptyReport(t *testing.T) {
	session := NewSession(readyStore(t), answeringRunner("   \n  "), config.DefaultConfig(), t.TempDir())

	_, err := session.Analyze(context.Background(), encodePNG(t))

	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestAnalyze_StagedArtifactRemoved_OnSuccess(t *testing.T) {
	stageDir := t.TempDir()
	session := NewSession(readyStore(t), answeringRunner("report"), config.DefaultConfig(), stageDir)

	_, err := session.Analyze(context.Background(), encodePNG(t))
	require.NoError(t, err)

	entries, err := os.ReadDir(stageDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAnalyze_StagedArtifactRemoved_OnLoopError(t *testing.T) {
	stageDir := t.TempDir()

	var stagedDuringRun int
	loop := &mockRunner{
		runFunc: func(ctx context.Context, transcript *conversation.Transcript) (string, error) {
			entries, readErr := os.ReadDir(stageDir)
			if readErr == nil {
				stagedDuringRun = len(entries)
			}
			return "", fmt.Errorf("network down")
		},
	}
	session := NewSession(readyStore(t), loop, config.DefaultConfig(), stageDir)

	_, err := session.Analyze(context.Background(), encodePNG(t))
	require.Error(t, err)

	assert.Equal(t, 1, stagedDuringRun)
	entries, err := os.ReadDir(stageDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
