package model

import (
	"context"
)

// Provider defines the interface for LLM backends.
type Provider interface {
	// Generate sends the conversation to the model and returns its reply.
	// The reply is always a complete assistant turn: plain text, tool call
	// requests, or both. Errors are mapped to *ProviderError.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// SetModel changes the active model at runtime.
	// Returns an error if the model name is empty or unavailable.
	SetModel(model string) error

	// GetModel returns the currently active model name.
	GetModel() string

	// GetCapabilities returns what features the provider/model supports.
	GetCapabilities() Capabilities
}
