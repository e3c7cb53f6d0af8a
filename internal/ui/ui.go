// Package ui implements the terminal interface with Bubble Tea.
package ui

import (
	"context"

	"github.com/Cyclone1070/mia/internal/ui/models"
	"github.com/Cyclone1070/mia/internal/ui/services"
	tea "github.com/charmbracelet/bubbletea"
)

// UI implements the UserInterface using Bubble Tea.
type UI struct {
	program *tea.Program

	// Session -> UI channels
	inputReq      chan inputRequest
	inputResp     chan string
	statusChan    chan statusMsg
	messageChan   chan string
	reportChan    chan string
	imageInfoChan chan models.ImagePanel
	modelListChan chan []string
	setModelChan  chan string

	// UI -> Session
	commandChan chan UICommand

	// Ready signal
	readyChan chan struct{}
}

// Internal message types
type inputRequest struct {
	prompt string
	masked bool
}

type statusMsg struct {
	phase   string
	message string
}

// UIChannels holds the channels for UI communication.
type UIChannels struct {
	InputReq      chan inputRequest
	InputResp     chan string
	StatusChan    chan statusMsg
	MessageChan   chan string
	ReportChan    chan string
	ImageInfoChan chan models.ImagePanel
	ModelListChan chan []string
	SetModelChan  chan string
	CommandChan   chan UICommand
	ReadyChan     chan struct{} // Signals when UI is ready to accept requests
}

// NewUIChannels creates a new UIChannels struct with default buffers.
func NewUIChannels() *UIChannels {
	return &UIChannels{
		InputReq:      make(chan inputRequest),
		InputResp:     make(chan string),
		StatusChan:    make(chan statusMsg, 10),
		MessageChan:   make(chan string, 10),
		ReportChan:    make(chan string, 10),
		ImageInfoChan: make(chan models.ImagePanel, 10),
		ModelListChan: make(chan []string),
		SetModelChan:  make(chan string, 10),
		CommandChan:   make(chan UICommand, 10),
		ReadyChan:     make(chan struct{}),
	}
}

// NewUI creates a new Bubble Tea UI.
func NewUI(
	channels *UIChannels,
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
) *UI {
	ui := &UI{
		inputReq:      channels.InputReq,
		inputResp:     channels.InputResp,
		statusChan:    channels.StatusChan,
		messageChan:   channels.MessageChan,
		reportChan:    channels.ReportChan,
		imageInfoChan: channels.ImageInfoChan,
		modelListChan: channels.ModelListChan,
		setModelChan:  channels.SetModelChan,
		commandChan:   channels.CommandChan,
		readyChan:     channels.ReadyChan,
	}

	model := newBubbleTeaModel(
		ui.inputReq,
		ui.inputResp,
		ui.statusChan,
		ui.messageChan,
		ui.reportChan,
		ui.imageInfoChan,
		ui.modelListChan,
		ui.setModelChan,
		ui.commandChan,
		ui.readyChan,
		renderer,
		spinnerFactory,
	)

	ui.program = tea.NewProgram(model, tea.WithAltScreen())

	return ui
}

// Start starts the UI program.
func (u *UI) Start() error {
	_, err := u.program.Run()
	return err
}

// ReadInput prompts the user for input.
func (u *UI) ReadInput(ctx context.Context, prompt string) (string, error) {
	return u.read(ctx, inputRequest{prompt: prompt})
}

// ReadSecret prompts the user for input with masked echo.
func (u *UI) ReadSecret(ctx context.Context, prompt string) (string, error) {
	return u.read(ctx, inputRequest{prompt: prompt, masked: true})
}

func (u *UI) read(ctx context.Context, req inputRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case u.inputReq <- req:
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case response := <-u.inputResp:
			return response, nil
		}
	}
}

// WriteStatus updates the status bar.
func (u *UI) WriteStatus(phase string, message string) {
	select {
	case u.statusChan <- statusMsg{phase: phase, message: message}:
	default:
		// Drop if channel is full
	}
}

// WriteMessage sends a notice to the transcript.
func (u *UI) WriteMessage(content string) {
	select {
	case u.messageChan <- content:
	default:
		// Drop if channel is full
	}
}

// WriteReport sends a finished report to the transcript.
func (u *UI) WriteReport(markdown string) {
	select {
	case u.reportChan <- markdown:
	default:
		// Drop if channel is full
	}
}

// WriteImageInfo updates the header's image panel.
func (u *UI) WriteImageInfo(info models.ImagePanel) {
	select {
	case u.imageInfoChan <- info:
	default:
		// Drop if channel is full
	}
}

// WriteModelList sends a list of models to the UI.
func (u *UI) WriteModelList(names []string) {
	select {
	case u.modelListChan <- names:
	default:
		// Drop if channel is full
	}
}

// SetModel updates the model name in the status bar.
func (u *UI) SetModel(name string) {
	select {
	case u.setModelChan <- name:
	default:
		// Drop if channel is full
	}
}

// Commands returns the command channel.
func (u *UI) Commands() <-chan UICommand {
	return u.commandChan
}

// Ready returns a channel that is closed when the UI is ready to accept requests.
func (u *UI) Ready() <-chan struct{} {
	return u.readyChan
}
