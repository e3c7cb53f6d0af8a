// Package models holds the view state shared between the update loop and the views.
package models

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// Message is a single entry in the transcript viewport.
// Role is "user" for typed input, "report" for a rendered analysis
// and "system" for notices and errors.
type Message struct {
	Role    string
	Content string
}

// ImagePanel summarises the image currently loaded for analysis.
// It is shown in the header once a file has been read and validated.
type ImagePanel struct {
	Path        string
	MIME        string
	Width       int
	Height      int
	ByteSize    int64
	Fingerprint string
}

// State is the complete Bubble Tea view state.
type State struct {
	Messages []Message
	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model

	Width  int
	Height int

	StatusPhase   string
	StatusMessage string
	DotCount      int
	CurrentModel  string

	// CanSubmit is true while an input request is pending. Enter is
	// ignored otherwise so responses are never sent without a reader.
	CanSubmit bool
	// Masked is true when the pending input request is for a secret.
	Masked bool
	// KeyEntry is true while /key has switched the input bar into
	// local masked entry, independent of any pending input request.
	KeyEntry bool
	// InputPrompt is the prompt of the active input request, restored
	// as the placeholder when key entry ends.
	InputPrompt string

	Image *ImagePanel

	ShowModelList  bool
	ModelList      []string
	ModelListIndex int
}
