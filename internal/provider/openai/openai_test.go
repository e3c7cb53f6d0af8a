package openai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/mia/internal/conversation"
	"github.com/Cyclone1070/mia/internal/provider/model"
)

func TestGenerate_TextResponse(t *testing.T) {
	mockClient := &MockOpenAIClient{
		NewChatCompletionFunc: func(ctx context.Context, params oai.ChatCompletionNewParams) (*oai.ChatCompletion, error) {
			return completionFromJSON(t, `{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"choices": [{"index": 0, "finish_reason": "stop",
					"message": {"role": "assistant", "content": "### 1. Image Type & Region"}}],
				"usage": {"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150}
			}`), nil
		},
	}
	p := New(mockClient, "gpt-4o-mini")

	resp, err := p.Generate(context.Background(), &model.GenerateRequest{
		History: []conversation.Message{
			conversation.UserMessage{Parts: []conversation.Part{conversation.TextPart{Text: "analyze"}}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "### 1. Image Type & Region", resp.Message.Text)
	assert.Equal(t, 150, resp.Metadata.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", resp.Metadata.ModelUsed)
}

func TestGenerate_PassesModelConfigAndTools(t *testing.T) {
	var gotParams oai.ChatCompletionNewParams
	mockClient := &MockOpenAIClient{
		NewChatCompletionFunc: func(ctx context.Context, params oai.ChatCompletionNewParams) (*oai.ChatCompletion, error) {
			gotParams = params
			return completionFromJSON(t, `{
				"id": "chatcmpl-1",
				"object": "chat.completion",
				"choices": [{"index": 0, "finish_reason": "stop",
					"message": {"role": "assistant", "content": "ok"}}]
			}`), nil
		},
	}
	p := New(mockClient, "gpt-4o-mini")

	temp := 0.7
	_, err := p.Generate(context.Background(), &model.GenerateRequest{
		History: []conversation.Message{
			conversation.UserMessage{Parts: []conversation.Part{
				conversation.TextPart{Text: "analyze"},
				conversation.ImagePart{MIME: "image/jpeg", Data: []byte{0xFF, 0xD8}},
			}},
		},
		Tools: []model.ToolDefinition{
			{Name: "web_search", Description: "search"},
		},
		Config: &model.GenerateConfig{Temperature: &temp},
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", string(gotParams.Model))
	require.Len(t, gotParams.Messages, 1)
	require.NotNil(t, gotParams.Messages[0].OfUser)
	assert.InDelta(t, 0.7, gotParams.Temperature.Value, 0.001)
	require.Len(t, gotParams.Tools, 1)
	assert.Equal(t, "web_search", gotParams.Tools[0].Function.Name)
}

func TestGenerate_ClientError_Mapped(t *testing.T) {
	mockClient := &MockOpenAIClient{
		NewChatCompletionFunc: func(ctx context.Context, params oai.ChatCompletionNewParams) (*oai.ChatCompletion, error) {
			return nil, &oai.Error{StatusCode: 401}
		},
	}
	p := New(mockClient, "gpt-4o-mini")

	_, err := p.Generate(context.Background(), &model.GenerateRequest{})

	assert.True(t, model.IsAuthError(err))
}

func TestGenerate_ContextCancelled_PassesThrough(t *testing.T) {
	mockClient := &MockOpenAIClient{
		NewChatCompletionFunc: func(ctx context.Context, params oai.ChatCompletionNewParams) (*oai.ChatCompletion, error) {
			return nil, context.Canceled
		},
	}
	p := New(mockClient, "gpt-4o-mini")

	_, err := p.Generate(context.Background(), &model.GenerateRequest{})

	assert.True(t, errors.Is(err, context.Canceled))
	_, isProviderErr := model.AsProviderError(err)
	assert.False(t, isProviderErr)
}

func TestParseRetryAfter_Header(t *testing.T) {
	t.Run("Seconds", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"20"}}}
		got := parseRetryAfter(resp)
		require.NotNil(t, got)
		assert.Equal(t, 20*time.Second, *got)
	})

	t.Run("Absent", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{}}
		assert.Nil(t, parseRetryAfter(resp))
	})

	t.Run("Nil Response", func(t *testing.T) {
		assert.Nil(t, parseRetryAfter(nil))
	})
}

func TestSetModel(t *testing.T) {
	p := New(&MockOpenAIClient{}, "gpt-4o-mini")

	assert.Equal(t, "gpt-4o-mini", p.GetModel())

	require.NoError(t, p.SetModel("gpt-4o"))
	assert.Equal(t, "gpt-4o", p.GetModel())

	assert.Error(t, p.SetModel(""))
}

func TestGetCapabilities_PerModel(t *testing.T) {
	tests := []struct {
		model      string
		vision     bool
		maxOutput  int
		maxContext int
	}{
		{"gpt-4o-mini", true, 16_384, 128_000},
		{"gpt-4o", true, 16_384, 128_000},
		{"gpt-4", false, 4_096, 8_192},
		{"o1", true, 100_000, 200_000},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p := New(&MockOpenAIClient{}, tt.model)
			caps := p.GetCapabilities()
			assert.Equal(t, tt.vision, caps.SupportsVision)
			assert.Equal(t, tt.maxOutput, caps.MaxOutputTokens)
			assert.Equal(t, tt.maxContext, caps.MaxContextTokens)
		})
	}
}
