package openai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/mia/internal/provider/model"
)

// OpenAIProvider implements the model.Provider interface for OpenAI.
type OpenAIProvider struct {
	client    OpenAIClient
	mu        sync.RWMutex
	modelName string
}

// New creates a new OpenAIProvider with the specified client and model.
func New(client OpenAIClient, modelName string) *OpenAIProvider {
	return &OpenAIProvider{
		client:    client,
		modelName: modelName,
	}
}

// Generate sends the conversation to the OpenAI API and returns the reply.
func (p *OpenAIProvider) Generate(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	p.mu.RLock()
	modelName := p.modelName
	p.mu.RUnlock()

	params, err := buildParams(modelName, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.client.NewChatCompletion(ctx, params)
	if err != nil {
		return nil, mapOpenAIError(err)
	}

	out, err := fromOpenAIResponse(resp, modelName)
	if err != nil {
		return nil, err
	}
	out.Metadata.LatencyMs = time.Since(start).Milliseconds()
	return out, nil
}

// SetModel changes the active model at runtime.
func (p *OpenAIProvider) SetModel(modelName string) error {
	if modelName == "" {
		return errors.New("model name must not be empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelName = modelName
	return nil
}

// GetModel returns the currently active model name.
func (p *OpenAIProvider) GetModel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelName
}

// GetCapabilities returns what features the provider/model supports.
func (p *OpenAIProvider) GetCapabilities() model.Capabilities {
	p.mu.RLock()
	modelName := p.modelName
	p.mu.RUnlock()

	caps := model.Capabilities{
		SupportsVision:      false,
		SupportsToolCalling: true,
		MaxContextTokens:    128_000,
		MaxOutputTokens:     4_096,
	}

	lower := strings.ToLower(modelName)
	switch {
	case strings.HasPrefix(lower, "gpt-4o"):
		caps.MaxOutputTokens = 16_384
		caps.SupportsVision = true
	case strings.HasPrefix(lower, "gpt-4-turbo"):
		caps.SupportsVision = true
	case strings.HasPrefix(lower, "gpt-4"):
		caps.MaxContextTokens = 8_192
	case strings.HasPrefix(lower, "o1"), strings.HasPrefix(lower, "o3"):
		caps.MaxContextTokens = 200_000
		caps.MaxOutputTokens = 100_000
		caps.SupportsVision = true
	}
	return caps
}
