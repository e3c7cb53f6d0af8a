package openai

import (
	"context"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient defines the interface for interacting with the OpenAI API.
// This abstraction allows for easier testing and potential future implementations.
type OpenAIClient interface {
	// NewChatCompletion sends a chat completion request and returns the response
	NewChatCompletion(ctx context.Context, params oai.ChatCompletionNewParams) (*oai.ChatCompletion, error)
}

// ClientOption is a functional option for RealOpenAIClient.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// RealOpenAIClient wraps the official SDK client to satisfy OpenAIClient.
type RealOpenAIClient struct {
	client oai.Client
}

// NewRealOpenAIClient creates a RealOpenAIClient from an API key.
func NewRealOpenAIClient(apiKey string, opts ...ClientOption) *RealOpenAIClient {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &RealOpenAIClient{client: oai.NewClient(reqOpts...)}
}

// NewChatCompletion calls the SDK's chat completion method.
func (c *RealOpenAIClient) NewChatCompletion(ctx context.Context, params oai.ChatCompletionNewParams) (*oai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}
