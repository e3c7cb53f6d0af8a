// Package analysis runs one image analysis end to end: credential check,
// image staging, prompt construction, the orchestration loop, and report
// assembly.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/Cyclone1070/mia/internal/config"
	"github.com/Cyclone1070/mia/internal/conversation"
	"github.com/Cyclone1070/mia/internal/credential"
	"github.com/Cyclone1070/mia/internal/imaging"
)

// Report is the rendered outcome of one analysis run.
type Report struct {
	// Markdown is the combined report text, ready for rendering.
	Markdown string

	// Image describes the analyzed upload.
	Image imaging.Info

	// Elapsed is the wall-clock duration of the loop.
	Elapsed time.Duration

	// Steps counts the reasoning turns the model took.
	Steps int

	// ToolResults counts the tool results fed back to the model.
	ToolResults int
}

// Session runs analyses against a configured loop. One Session serves many
// runs; each run gets its own transcript and staged artifact.
type Session struct {
	credentials *credential.Store
	loop        runner
	cfg         *config.Config
	stageDir    string
}

// NewSession creates a session. stageDir is where the transient image
// artifact of each run is written; empty means the system temp directory.
func NewSession(credentials *credential.Store, loop runner, cfg *config.Config, stageDir string) *Session {
	return &Session{
		credentials: credentials,
		loop:        loop,
		cfg:         cfg,
		stageDir:    stageDir,
	}
}

// Analyze runs the full pipeline on one uploaded image and returns the
// rendered report. The staged copy of the image is removed before Analyze
// returns, on every path.
func (s *Session) Analyze(ctx context.Context, imageData []byte) (*Report, error) {
	if _, err := s.credentials.MustGet(); err != nil {
		return nil, err
	}

	if max := s.cfg.Image.MaxBytes; max > 0 && int64(len(imageData)) > max {
		return nil, fmt.Errorf("image is %d bytes, above the %d byte limit", len(imageData), max)
	}

	info, err := imaging.Describe(imageData)
	if err != nil {
		return nil, err
	}

	staged, err := imaging.Stage(s.stageDir, imageData)
	if err != nil {
		return nil, err
	}
	defer staged.Cleanup()

	// The model receives the bytes as staged on disk, not the original
	// upload buffer.
	payload, err := staged.Read()
	if err != nil {
		return nil, err
	}

	transcript := conversation.NewTranscript()
	transcript.Append(conversation.UserMessage{Parts: []conversation.Part{
		conversation.TextPart{Text: analysisPrompt},
		conversation.ImagePart{MIME: info.MIME, Data: payload},
	}})

	start := time.Now()
	if _, err := s.loop.Run(ctx, transcript); err != nil {
		return nil, err
	}

	markdown, err := render(transcript, s.cfg.Report.IncludeToolResults)
	if err != nil {
		return nil, err
	}

	steps, toolResults := 0, 0
	for _, msg := range transcript.Messages() {
		switch msg.(type) {
		case conversation.AssistantMessage:
			steps++
		case conversation.ToolResultMessage:
			toolResults++
		}
	}

	return &Report{
		Markdown:    markdown,
		Image:       info,
		Elapsed:     time.Since(start),
		Steps:       steps,
		ToolResults: toolResults,
	}, nil
}
