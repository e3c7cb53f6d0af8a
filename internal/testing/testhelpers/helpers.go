// Package testhelpers provides shared utilities for integration testing.
package testhelpers

import (
	"context"
	"sync"

	"github.com/Cyclone1070/mia/internal/conversation"
	providermodel "github.com/Cyclone1070/mia/internal/provider/model"
	"github.com/Cyclone1070/mia/internal/ui"
	uimodels "github.com/Cyclone1070/mia/internal/ui/models"
)

// MockProvider is a controllable provider that replays queued responses.
type MockProvider struct {
	mu        sync.Mutex
	responses []providermodel.GenerateResponse
	index     int
	modelName string

	// OnGenerateCalled is a callback for observing Generate calls
	OnGenerateCalled func(*providermodel.GenerateRequest)
	SetModelFunc     func(model string) error
}

// NewMockProvider creates a new mock provider with default settings.
func NewMockProvider() *MockProvider {
	return &MockProvider{modelName: "mock-model"}
}

// WithTextResponse adds a text response to the queue.
func (m *MockProvider) WithTextResponse(text string) *MockProvider {
	m.responses = append(m.responses, providermodel.GenerateResponse{
		Message: conversation.AssistantMessage{Text: text},
	})
	return m
}

// WithToolCallResponse adds a tool call response to the queue.
func (m *MockProvider) WithToolCallResponse(calls ...conversation.ToolCall) *MockProvider {
	m.responses = append(m.responses, providermodel.GenerateResponse{
		Message: conversation.AssistantMessage{ToolCalls: calls},
	})
	return m
}

// Generate implements the Provider interface.
func (m *MockProvider) Generate(ctx context.Context, req *providermodel.GenerateRequest) (*providermodel.GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.OnGenerateCalled != nil {
		m.OnGenerateCalled(req)
	}

	if m.index >= len(m.responses) {
		// Return a default text response if we run out
		return &providermodel.GenerateResponse{
			Message: conversation.AssistantMessage{Text: "Done"},
		}, nil
	}

	resp := m.responses[m.index]
	m.index++
	return &resp, nil
}

// SetModel implements the Provider interface.
func (m *MockProvider) SetModel(model string) error {
	if m.SetModelFunc != nil {
		return m.SetModelFunc(model)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modelName = model
	return nil
}

// GetModel implements the Provider interface.
func (m *MockProvider) GetModel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.modelName
}

// GetCapabilities implements the Provider interface.
func (m *MockProvider) GetCapabilities() providermodel.Capabilities {
	return providermodel.Capabilities{
		SupportsVision:      true,
		SupportsToolCalling: true,
	}
}

// MockUI implements ui.UserInterface for testing.
type MockUI struct {
	mu         sync.Mutex
	Messages   []string
	Reports    []string
	Statuses   []string
	Panels     []uimodels.ImagePanel
	Models     []string
	ModelNames []string

	InputFunc  func(ctx context.Context, prompt string) (string, error)
	SecretFunc func(ctx context.Context, prompt string) (string, error)

	// OnReadyCalled is a callback for observing Ready calls
	OnReadyCalled func()
	ReadyChan     chan struct{}
	// StartBlocker controls when Start() returns (for tests)
	StartBlocker chan struct{}

	OnModelListWritten func(names []string)
	OnReportWritten    func(markdown string)
	OnModelSet         func(name string)
	CommandsChan       chan ui.UICommand
}

// NewMockUI creates a MockUI whose Ready channel reports ready immediately.
func NewMockUI() *MockUI {
	return &MockUI{}
}

func (m *MockUI) Start() error {
	if m.StartBlocker != nil {
		<-m.StartBlocker // Block until test signals
	}
	return nil
}

func (m *MockUI) ReadInput(ctx context.Context, prompt string) (string, error) {
	if m.InputFunc != nil {
		return m.InputFunc(ctx, prompt)
	}
	return "test input", nil
}

func (m *MockUI) ReadSecret(ctx context.Context, prompt string) (string, error) {
	if m.SecretFunc != nil {
		return m.SecretFunc(ctx, prompt)
	}
	return "test-api-key", nil
}

func (m *MockUI) WriteStatus(phase, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses = append(m.Statuses, phase+": "+message)
}

func (m *MockUI) WriteMessage(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, content)
}

func (m *MockUI) WriteReport(markdown string) {
	m.mu.Lock()
	m.Reports = append(m.Reports, markdown)
	m.mu.Unlock()

	if m.OnReportWritten != nil {
		m.OnReportWritten(markdown)
	}
}

func (m *MockUI) WriteImageInfo(info uimodels.ImagePanel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Panels = append(m.Panels, info)
}

func (m *MockUI) WriteModelList(names []string) {
	m.mu.Lock()
	m.Models = names
	m.mu.Unlock()

	if m.OnModelListWritten != nil {
		m.OnModelListWritten(names)
	}
}

func (m *MockUI) SetModel(name string) {
	m.mu.Lock()
	m.ModelNames = append(m.ModelNames, name)
	m.mu.Unlock()

	if m.OnModelSet != nil {
		m.OnModelSet(name)
	}
}

func (m *MockUI) Commands() <-chan ui.UICommand {
	// A nil channel blocks forever, so an unset channel means "no commands"
	return m.CommandsChan
}

func (m *MockUI) Ready() <-chan struct{} {
	// Invoke callback if set
	if m.OnReadyCalled != nil {
		m.OnReadyCalled()
	}

	if m.ReadyChan != nil {
		return m.ReadyChan
	}
	// Return closed channel (always ready)
	ch := make(chan struct{})
	close(ch)
	return ch
}

// GetMessages returns a copy of the messages written so far.
func (m *MockUI) GetMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := make([]string, len(m.Messages))
	copy(msgs, m.Messages)
	return msgs
}

// GetReports returns a copy of the reports written so far.
func (m *MockUI) GetReports() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	reports := make([]string, len(m.Reports))
	copy(reports, m.Reports)
	return reports
}

// GetStatuses returns a copy of the status updates written so far,
// formatted as "phase: message".
func (m *MockUI) GetStatuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	statuses := make([]string, len(m.Statuses))
	copy(statuses, m.Statuses)
	return statuses
}
