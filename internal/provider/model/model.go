package model

import (
	"github.com/Cyclone1070/mia/internal/conversation"
)

// GenerateRequest encapsulates all parameters for a generation request.
type GenerateRequest struct {
	// History contains the full conversation so far, oldest first
	History []conversation.Message

	// Tools contains tool definitions for native tool calling
	Tools []ToolDefinition

	// Config contains optional generation parameters
	Config *GenerateConfig
}

// GenerateConfig contains optional generation parameters.
// All fields are pointers to distinguish between "not set" and "zero value".
type GenerateConfig struct {
	Temperature     *float64
	TopP            *float64
	MaxOutputTokens *int
}

// GenerateResponse contains the model's reply and metadata.
type GenerateResponse struct {
	// Message is the assistant turn produced by the model
	Message conversation.AssistantMessage

	// Metadata contains information about the generation
	Metadata ResponseMetadata
}

// ResponseMetadata contains information about the generation.
type ResponseMetadata struct {
	// Token usage
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	// Model used
	ModelUsed string

	// Performance
	LatencyMs int64
}

// ToolDefinition defines a tool that the model can invoke.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ParameterSchema // Pointer to allow nil (no params)
}

// ParameterSchema maps directly to standard JSON Schema.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema defines a single parameter property.
type PropertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Items       *PropertySchema `json:"items,omitempty"`
}

// Capabilities describes what features a provider supports.
type Capabilities struct {
	// Feature support
	SupportsVision      bool
	SupportsToolCalling bool

	// Model limits
	MaxContextTokens int
	MaxOutputTokens  int
}
