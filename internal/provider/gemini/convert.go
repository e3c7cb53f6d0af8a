package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cyclone1070/mia/internal/conversation"
	"github.com/Cyclone1070/mia/internal/provider/model"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// toGeminiContents converts the conversation to Gemini Content format.
func toGeminiContents(history []conversation.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))

	for _, msg := range history {
		content, err := messageToGeminiContent(msg)
		if err != nil {
			return nil, err
		}
		if content != nil {
			contents = append(contents, content)
		}
	}

	return contents, nil
}

// messageToGeminiContent converts a single message to Gemini Content format.
func messageToGeminiContent(msg conversation.Message) (*genai.Content, error) {
	switch m := msg.(type) {
	case conversation.UserMessage:
		parts := make([]*genai.Part, 0, len(m.Parts))
		for _, part := range m.Parts {
			switch p := part.(type) {
			case conversation.TextPart:
				if p.Text != "" {
					parts = append(parts, genai.NewPartFromText(p.Text))
				}
			case conversation.ImagePart:
				parts = append(parts, &genai.Part{
					InlineData: &genai.Blob{
						MIMEType: p.MIME,
						Data:     p.Data,
					},
				})
			default:
				return nil, &model.ProviderError{
					Code:    model.ErrorCodeInvalidRequest,
					Message: fmt.Sprintf("unsupported message part type %T", part),
				}
			}
		}
		if len(parts) == 0 {
			return nil, nil
		}
		return &genai.Content{Role: "user", Parts: parts}, nil

	case conversation.AssistantMessage:
		parts := make([]*genai.Part, 0, 1+len(m.ToolCalls))
		if m.Text != "" {
			parts = append(parts, genai.NewPartFromText(m.Text))
		}
		for _, call := range m.ToolCalls {
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					Name: call.Name,
					Args: call.Args,
				},
			})
		}
		if len(parts) == 0 {
			return nil, nil
		}
		return &genai.Content{Role: "model", Parts: parts}, nil

	case conversation.ToolResultMessage:
		// Gemini correlates function responses by name and order, not id.
		responseContent := m.Content
		if m.IsError {
			responseContent = fmt.Sprintf("Error: %s", m.Content)
		}
		return &genai.Content{
			Role: "user",
			Parts: []*genai.Part{
				{
					FunctionResponse: &genai.FunctionResponse{
						Name: m.Name,
						Response: map[string]any{
							"content": responseContent,
						},
					},
				},
			},
		}, nil

	default:
		return nil, &model.ProviderError{
			Code:    model.ErrorCodeInvalidRequest,
			Message: fmt.Sprintf("unsupported message type %T", msg),
		}
	}
}

// toGeminiConfig converts internal GenerateConfig to Gemini config.
func toGeminiConfig(config *model.GenerateConfig) *genai.GenerateContentConfig {
	geminiConfig := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}

	if config == nil {
		return geminiConfig
	}

	if config.Temperature != nil {
		temp := float32(*config.Temperature)
		geminiConfig.Temperature = &temp
	}
	if config.TopP != nil {
		topP := float32(*config.TopP)
		geminiConfig.TopP = &topP
	}
	if config.MaxOutputTokens != nil {
		geminiConfig.MaxOutputTokens = int32(*config.MaxOutputTokens)
	}

	return geminiConfig
}

// defaultSafetySettings returns permissive safety settings. Medical imagery
// trips the default filters, which would block legitimate analyses.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts internal ToolDefinition to Gemini tools.
func toGeminiTools(tools []model.ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(tools))

	for _, tool := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}

		if tool.Parameters != nil {
			fd.Parameters = toGeminiSchema(tool.Parameters)
		}

		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts ParameterSchema to Gemini Schema.
func toGeminiSchema(params *model.ParameterSchema) *genai.Schema {
	schema := &genai.Schema{
		Type: genai.TypeObject,
	}

	if params.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range params.Properties {
			schema.Properties[name] = &genai.Schema{
				Type:        toGeminiType(prop.Type),
				Description: prop.Description,
			}

			if len(prop.Enum) > 0 {
				schema.Properties[name].Enum = prop.Enum
			}

			if prop.Items != nil {
				schema.Properties[name].Items = &genai.Schema{
					Type:        toGeminiType(prop.Items.Type),
					Description: prop.Items.Description,
				}
			}
		}
	}

	if len(params.Required) > 0 {
		schema.Required = params.Required
	}

	return schema
}

// toGeminiType converts string type to Gemini Type.
func toGeminiType(typeStr string) genai.Type {
	switch typeStr {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to internal format.
func fromGeminiResponse(resp *genai.GenerateContentResponse, modelUsed string) (*model.GenerateResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, &model.ProviderError{
			Code:    model.ErrorCodeMalformed,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &model.ProviderError{
			Code:      model.ErrorCodeContentBlocked,
			Message:   "content blocked by safety filters",
			Retryable: false,
		}
	}

	if candidate.Content == nil {
		return nil, &model.ProviderError{
			Code:    model.ErrorCodeMalformed,
			Message: "candidate has no content",
		}
	}

	var message conversation.AssistantMessage
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			message.Text += part.Text
		}
		if part.FunctionCall != nil {
			message.ToolCalls = append(message.ToolCalls, conversation.ToolCall{
				ID:   callID(part.FunctionCall.ID),
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}

	if message.Text == "" && len(message.ToolCalls) == 0 {
		return nil, &model.ProviderError{
			Code:    model.ErrorCodeMalformed,
			Message: "candidate has neither text nor tool calls",
		}
	}

	return &model.GenerateResponse{
		Message:  message,
		Metadata: buildMetadata(resp.UsageMetadata, modelUsed),
	}, nil
}

// callID returns the API-provided call id, or synthesizes one when the API
// omits it. Every tool call needs a unique id for result correlation.
func callID(id string) string {
	if id != "" {
		return id
	}
	return "call_" + uuid.NewString()
}

// buildMetadata builds response metadata from usage data.
func buildMetadata(usage *genai.GenerateContentResponseUsageMetadata, modelUsed string) model.ResponseMetadata {
	metadata := model.ResponseMetadata{
		ModelUsed: modelUsed,
	}

	if usage != nil {
		metadata.PromptTokens = int(usage.PromptTokenCount)
		metadata.CompletionTokens = int(usage.CandidatesTokenCount)
		metadata.TotalTokens = int(usage.TotalTokenCount)
	}

	return metadata
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	// Cancellation is not a provider failure
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &model.ProviderError{
				Code:       model.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
				Retryable:  false,
			}
		case 429:
			return &model.ProviderError{
				Code:       model.ErrorCodeRateLimit,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  true,
				RetryAfter: parseRetryAfter(apiErr),
			}
		case 400:
			return &model.ProviderError{
				Code:       model.ErrorCodeInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
				Retryable:  false,
			}
		case 404:
			return &model.ProviderError{
				Code:       model.ErrorCodeInvalidModel,
				Message:    fmt.Sprintf("model not found: %s", apiErr.Message),
				Underlying: err,
				Retryable:  false,
			}
		case 500, 502, 503, 504:
			return &model.ProviderError{
				Code:       model.ErrorCodeUnavailable,
				Message:    "service unavailable",
				Underlying: err,
				Retryable:  true,
			}
		default:
			return &model.ProviderError{
				Code:       model.ErrorCodeNetwork,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
				Retryable:  true,
			}
		}
	}

	// Generic network error
	return &model.ProviderError{
		Code:       model.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}

// parseRetryAfter extracts the retry delay from RetryInfo error details.
func parseRetryAfter(apiErr *genai.APIError) *time.Duration {
	for _, detail := range apiErr.Details {
		if detail["@type"] != "type.googleapis.com/google.rpc.RetryInfo" {
			continue
		}
		delay, ok := detail["retryDelay"].(string)
		if !ok {
			continue
		}
		if d, err := time.ParseDuration(delay); err == nil {
			return &d
		}
	}
	return nil
}
