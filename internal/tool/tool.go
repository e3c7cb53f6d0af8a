// Package tool defines the contract between the orchestration loop and the
// capabilities the model can request, plus the registry that holds them.
package tool

import (
	"context"
)

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Tool represents a capability the model can request during a run.
// Implementations must be safe for concurrent use.
//
// Execute returns the text fed back to the model as the tool result. A
// returned error marks the call as failed; the loop reports the failure to
// the model rather than aborting, except for context cancellation, which
// ends the run.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Declaration returns the function signature advertised to the model.
	Declaration() Declaration

	// Execute runs the tool with the argument map provided by the model.
	Execute(ctx context.Context, args map[string]any) (string, error)
}
