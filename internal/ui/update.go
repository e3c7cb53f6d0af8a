package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/mia/internal/ui/models"
	"github.com/Cyclone1070/mia/internal/ui/services"
	"github.com/Cyclone1070/mia/internal/ui/views"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const defaultPrompt = "Path to a medical image (PNG or JPEG)"

const helpText = `Available commands:
- /key - Enter a new API key
- /key clear - Forget the stored API key
- /model <name> - Switch to a model by name
- /model - Pick a model from a list
- /help - Show this help
- /quit - Exit`

// BubbleTeaModel implements tea.Model.
type BubbleTeaModel struct {
	state models.State

	// Dependencies
	renderer services.MarkdownRenderer

	// Session -> UI channels
	inputReq      <-chan inputRequest
	statusChan    <-chan statusMsg
	messageChan   <-chan string
	reportChan    <-chan string
	imageInfoChan <-chan models.ImagePanel
	modelListChan <-chan []string
	setModelChan  <-chan string

	// UI -> Session
	inputResp   chan<- string
	commandChan chan<- UICommand

	// Ready signal
	readyChan chan<- struct{}
}

// View renders the UI.
func (m BubbleTeaModel) View() string {
	return views.RenderRoot(m.state, m.renderer)
}

// SpinnerFactory creates a new spinner.
type SpinnerFactory func() spinner.Model

// newBubbleTeaModel creates a new Bubble Tea model.
func newBubbleTeaModel(
	inputReq <-chan inputRequest,
	inputResp chan<- string,
	statusChan <-chan statusMsg,
	messageChan <-chan string,
	reportChan <-chan string,
	imageInfoChan <-chan models.ImagePanel,
	modelListChan <-chan []string,
	setModelChan <-chan string,
	commandChan chan<- UICommand,
	readyChan chan<- struct{},
	renderer services.MarkdownRenderer,
	spinnerFactory SpinnerFactory,
) BubbleTeaModel {
	// Initialize components
	ti := textinput.New()
	ti.Placeholder = defaultPrompt
	ti.EchoCharacter = '•'
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinnerFactory()

	return BubbleTeaModel{
		state: models.State{
			Input:       ti,
			Viewport:    vp,
			Spinner:     sp,
			Messages:    []models.Message{},
			InputPrompt: defaultPrompt,
		},
		renderer:      renderer,
		inputReq:      inputReq,
		inputResp:     inputResp,
		statusChan:    statusChan,
		messageChan:   messageChan,
		reportChan:    reportChan,
		imageInfoChan: imageInfoChan,
		modelListChan: modelListChan,
		setModelChan:  setModelChan,
		commandChan:   commandChan,
		readyChan:     readyChan,
	}
}

// Internal messages
type tickMsg time.Time
type inputRequestMsg inputRequest
type statusUpdateMsg statusMsg
type messageReceivedMsg string
type reportReceivedMsg string
type imageInfoMsg models.ImagePanel
type modelListReceivedMsg []string
type setModelMsg string

// Init initializes the model.
func (m BubbleTeaModel) Init() tea.Cmd {
	// Signal that UI is ready
	if m.readyChan != nil {
		close(m.readyChan)
	}

	return tea.Batch(
		textinput.Blink,
		m.state.Spinner.Tick,
		tick(),
		listenForInputRequests(m.inputReq),
		listenForStatus(m.statusChan),
		listenForMessages(m.messageChan),
		listenForReports(m.reportChan),
		listenForImageInfo(m.imageInfoChan),
		listenForModelList(m.modelListChan),
		listenForSetModel(m.setModelChan),
	)
}

// Update handles messages.
func (m BubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		m.state.Viewport.Width = msg.Width
		// Reserve space for the header, input and status bar
		m.state.Viewport.Height = msg.Height - views.HeaderHeight - 6
		if m.state.Viewport.Height < 3 {
			m.state.Viewport.Height = 3
		}
		m.updateViewport()

	case tickMsg:
		// Update dot animation
		m.state.DotCount = (m.state.DotCount + 1) % 4
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, tea.Batch(cmd, tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd

	case inputRequestMsg:
		m.state.CanSubmit = true
		m.state.Masked = msg.masked
		m.state.InputPrompt = msg.prompt
		m.state.Input.Placeholder = msg.prompt
		if msg.masked {
			m.state.Input.EchoMode = textinput.EchoPassword
		} else {
			m.state.Input.EchoMode = textinput.EchoNormal
		}
		return m, listenForInputRequests(m.inputReq)

	case statusUpdateMsg:
		m.state.StatusPhase = msg.phase
		m.state.StatusMessage = msg.message
		return m, listenForStatus(m.statusChan)

	case messageReceivedMsg:
		m.state.Messages = append(m.state.Messages, models.Message{
			Role:    "system",
			Content: string(msg),
		})
		m.updateViewport()
		return m, listenForMessages(m.messageChan)

	case reportReceivedMsg:
		m.state.Messages = append(m.state.Messages, models.Message{
			Role:    "report",
			Content: string(msg),
		})
		m.updateViewport()
		return m, listenForReports(m.reportChan)

	case imageInfoMsg:
		info := models.ImagePanel(msg)
		m.state.Image = &info
		return m, listenForImageInfo(m.imageInfoChan)

	case modelListReceivedMsg:
		m.state.ModelList = []string(msg)
		m.state.ShowModelList = true
		m.state.ModelListIndex = 0
		return m, listenForModelList(m.modelListChan)

	case setModelMsg:
		m.state.CurrentModel = string(msg)
		return m, listenForSetModel(m.setModelChan)
	}

	// Update input
	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input.
func (m BubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle model popup navigation
	if m.state.ShowModelList {
		switch msg.String() {
		case "up", "k":
			if m.state.ModelListIndex > 0 {
				m.state.ModelListIndex--
			}
		case "down", "j":
			if m.state.ModelListIndex < len(m.state.ModelList)-1 {
				m.state.ModelListIndex++
			}
		case "enter":
			// Send switch model command
			if m.state.ModelListIndex < len(m.state.ModelList) {
				m.commandChan <- UICommand{
					Type: "switch_model",
					Args: map[string]string{
						"model": m.state.ModelList[m.state.ModelListIndex],
					},
				}
			}
			m.state.ShowModelList = false
		case "esc":
			m.state.ShowModelList = false
		}
		return m, nil
	}

	// Handle normal input
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.state.Viewport, cmd = m.state.Viewport.Update(msg)
		return m, cmd

	case "enter":
		value := m.state.Input.Value()

		// Local /key entry completes with a command, not an input response
		if m.state.KeyEntry {
			if value == "" {
				return m, nil
			}
			m.commandChan <- UICommand{
				Type: "set_key",
				Args: map[string]string{"key": value},
			}
			m.state.Input.SetValue("")
			m.exitKeyEntry()
			return m, nil
		}

		if m.state.CanSubmit && value != "" {
			// Check for commands; a masked value is never a command
			if !m.state.Masked && strings.HasPrefix(value, "/") {
				return m.handleCommand(value)
			}

			if m.state.Masked {
				// Secrets are not echoed into the transcript
				m.state.Masked = false
				m.state.Input.EchoMode = textinput.EchoNormal
			} else {
				m.state.Messages = append(m.state.Messages, models.Message{
					Role:    "user",
					Content: value,
				})
				m.updateViewport()
			}

			// Send to the waiting reader
			m.inputResp <- value
			m.state.Input.SetValue("")
			m.state.CanSubmit = false
		}
		return m, nil
	}

	// Forward everything else to the input
	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	return m, cmd
}

// handleCommand handles slash commands.
func (m BubbleTeaModel) handleCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	m.state.Input.SetValue("")

	switch parts[0] {
	case "/key":
		if len(parts) > 1 && parts[1] == "clear" {
			m.commandChan <- UICommand{Type: "clear_key"}
			return m, nil
		}
		m.enterKeyEntry()

	case "/model", "/models":
		if len(parts) > 1 {
			m.commandChan <- UICommand{
				Type: "switch_model",
				Args: map[string]string{"model": parts[1]},
			}
		} else {
			m.commandChan <- UICommand{Type: "list_models"}
		}

	case "/help":
		m.state.Messages = append(m.state.Messages, models.Message{
			Role:    "system",
			Content: helpText,
		})
		m.updateViewport()

	case "/quit":
		return m, tea.Quit

	default:
		m.state.Messages = append(m.state.Messages, models.Message{
			Role:    "system",
			Content: fmt.Sprintf("Unknown command %q. Type /help for the command list.", parts[0]),
		})
		m.updateViewport()
	}

	return m, nil
}

// enterKeyEntry switches the input bar into masked API key entry.
func (m *BubbleTeaModel) enterKeyEntry() {
	m.state.KeyEntry = true
	m.state.Input.Placeholder = "Enter API key"
	m.state.Input.EchoMode = textinput.EchoPassword
}

// exitKeyEntry restores the input bar to the pending request's prompt.
func (m *BubbleTeaModel) exitKeyEntry() {
	m.state.KeyEntry = false
	m.state.Input.Placeholder = m.state.InputPrompt
	m.state.Input.EchoMode = textinput.EchoNormal
}

// updateViewport updates the viewport content.
func (m *BubbleTeaModel) updateViewport() {
	content := views.FormatChatContent(m.state.Messages, m.state.Width-4, m.renderer)
	m.state.Viewport.SetContent(content)
	m.state.Viewport.GotoBottom()
}

// Helper commands for listening to channels
func listenForInputRequests(ch <-chan inputRequest) tea.Cmd {
	return func() tea.Msg {
		return inputRequestMsg(<-ch)
	}
}

func listenForStatus(ch <-chan statusMsg) tea.Cmd {
	return func() tea.Msg {
		return statusUpdateMsg(<-ch)
	}
}

func listenForMessages(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return messageReceivedMsg(<-ch)
	}
}

func listenForReports(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return reportReceivedMsg(<-ch)
	}
}

func listenForImageInfo(ch <-chan models.ImagePanel) tea.Cmd {
	return func() tea.Msg {
		return imageInfoMsg(<-ch)
	}
}

func listenForModelList(ch <-chan []string) tea.Cmd {
	return func() tea.Msg {
		return modelListReceivedMsg(<-ch)
	}
}

func listenForSetModel(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		return setModelMsg(<-ch)
	}
}

func tick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
