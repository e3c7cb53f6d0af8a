package ui

import (
	"context"

	"github.com/Cyclone1070/mia/internal/ui/models"
)

// UICommand is a request initiated inside the TUI, handled by the
// command goroutine outside the Bubble Tea loop.
type UICommand struct {
	Type string
	Args map[string]string
}

// UserInterface defines the contract for all user interactions.
// It follows a Read/Write pattern for clarity.
//
// Context Usage:
// Read methods accept context.Context for cancellation support.
// If the run is cancelled, implementations should return immediately
// with the context error.
type UserInterface interface {
	// Start runs the UI and blocks until it exits
	Start() error

	// ReadInput prompts the user for general text input
	ReadInput(ctx context.Context, prompt string) (string, error)

	// ReadSecret prompts the user for input with masked echo, used for API keys
	ReadSecret(ctx context.Context, prompt string) (string, error)

	// WriteStatus displays ephemeral status updates (e.g. "Analyzing...")
	WriteStatus(phase string, message string)

	// WriteMessage displays a notice or error in the transcript
	WriteMessage(content string)

	// WriteReport displays a rendered analysis report in the transcript
	WriteReport(markdown string)

	// WriteImageInfo updates the loaded-image panel in the header
	WriteImageInfo(info models.ImagePanel)

	// WriteModelList opens the model selection popup
	WriteModelList(names []string)

	// SetModel updates the model name shown in the status bar
	SetModel(name string)

	// Commands returns the channel of UI-initiated commands
	Commands() <-chan UICommand

	// Ready returns a channel that is closed when the UI accepts requests
	Ready() <-chan struct{}
}
