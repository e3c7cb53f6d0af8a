package gemini

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Cyclone1070/mia/internal/provider/model"
)

// GeminiProvider implements the model.Provider interface for Google Gemini.
type GeminiProvider struct {
	client    GeminiClient
	mu        sync.RWMutex
	modelName string
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
}

// Generate sends the conversation to the Gemini API and returns the reply.
func (p *GeminiProvider) Generate(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error) {
	p.mu.RLock()
	modelName := p.modelName
	p.mu.RUnlock()

	contents, err := toGeminiContents(req.History)
	if err != nil {
		return nil, err
	}
	config := toGeminiConfig(req.Config)

	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	start := time.Now()
	resp, err := p.client.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	out, err := fromGeminiResponse(resp, modelName)
	if err != nil {
		return nil, err
	}
	out.Metadata.LatencyMs = time.Since(start).Milliseconds()
	return out, nil
}

// SetModel changes the active model at runtime.
func (p *GeminiProvider) SetModel(modelName string) error {
	if modelName == "" {
		return errors.New("model name must not be empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.modelName = modelName
	return nil
}

// GetModel returns the currently active model name.
func (p *GeminiProvider) GetModel() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.modelName
}

// GetCapabilities returns what features the provider/model supports.
func (p *GeminiProvider) GetCapabilities() model.Capabilities {
	return model.Capabilities{
		SupportsVision:      true,
		SupportsToolCalling: true,
		MaxContextTokens:    1_000_000,
		MaxOutputTokens:     8192, // Gemini default
	}
}
