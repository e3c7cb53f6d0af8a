package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/Cyclone1070/mia/internal/conversation"
	"github.com/Cyclone1070/mia/internal/imaging"
	"github.com/Cyclone1070/mia/internal/provider/model"
	"github.com/google/uuid"
)

// imageDetail controls how much resolution the model spends on an image.
// "low" keeps token cost flat regardless of image size.
const imageDetail = "low"

// buildParams converts a GenerateRequest into OpenAI SDK params.
func buildParams(modelName string, req *model.GenerateRequest) (oai.ChatCompletionNewParams, error) {
	var messages []oai.ChatCompletionMessageParamUnion

	for _, m := range req.History {
		msg, err := convertMessage(m)
		if err != nil {
			return oai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, msg)
	}

	params := oai.ChatCompletionNewParams{
		Model:    shared.ChatModel(modelName),
		Messages: messages,
	}

	if req.Config != nil {
		if req.Config.Temperature != nil {
			params.Temperature = param.NewOpt(*req.Config.Temperature)
		}
		if req.Config.TopP != nil {
			params.TopP = param.NewOpt(*req.Config.TopP)
		}
		if req.Config.MaxOutputTokens != nil {
			params.MaxCompletionTokens = param.NewOpt(int64(*req.Config.MaxOutputTokens))
		}
	}

	for _, td := range req.Tools {
		params.Tools = append(params.Tools, oai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        td.Name,
				Description: param.NewOpt(td.Description),
				Parameters:  shared.FunctionParameters(schemaToMap(td.Parameters)),
			},
		})
	}

	return params, nil
}

// convertMessage converts a conversation message to an OpenAI SDK message param.
func convertMessage(msg conversation.Message) (oai.ChatCompletionMessageParamUnion, error) {
	switch m := msg.(type) {
	case conversation.UserMessage:
		parts := make([]oai.ChatCompletionContentPartUnionParam, 0, len(m.Parts))
		for _, part := range m.Parts {
			switch p := part.(type) {
			case conversation.TextPart:
				parts = append(parts, oai.TextContentPart(p.Text))
			case conversation.ImagePart:
				parts = append(parts, oai.ImageContentPart(oai.ChatCompletionContentPartImageImageURLParam{
					URL:    imaging.DataURL(p.MIME, p.Data),
					Detail: imageDetail,
				}))
			default:
				return oai.ChatCompletionMessageParamUnion{}, &model.ProviderError{
					Code:    model.ErrorCodeInvalidRequest,
					Message: fmt.Sprintf("unsupported message part type %T", part),
				}
			}
		}
		return oai.UserMessageParts(parts...), nil

	case conversation.AssistantMessage:
		asst := oai.ChatCompletionAssistantMessageParam{}
		if m.Text != "" {
			asst.Content.OfString = oai.String(m.Text)
		}
		for _, call := range m.ToolCalls {
			args, err := json.Marshal(call.Args)
			if err != nil {
				return oai.ChatCompletionMessageParamUnion{}, &model.ProviderError{
					Code:       model.ErrorCodeInvalidRequest,
					Message:    fmt.Sprintf("tool call %s has unencodable arguments", call.ID),
					Underlying: err,
				}
			}
			asst.ToolCalls = append(asst.ToolCalls, oai.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: oai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		return oai.ChatCompletionMessageParamUnion{OfAssistant: &asst}, nil

	case conversation.ToolResultMessage:
		content := m.Content
		if m.IsError {
			content = fmt.Sprintf("Error: %s", m.Content)
		}
		return oai.ToolMessage(content, m.CallID), nil

	default:
		return oai.ChatCompletionMessageParamUnion{}, &model.ProviderError{
			Code:    model.ErrorCodeInvalidRequest,
			Message: fmt.Sprintf("unsupported message type %T", msg),
		}
	}
}

// schemaToMap converts ParameterSchema to the JSON Schema map the SDK expects.
func schemaToMap(s *model.ParameterSchema) map[string]any {
	if s == nil {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	properties := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		properties[name] = propertyToMap(prop)
	}

	schemaType := s.Type
	if schemaType == "" {
		schemaType = "object"
	}
	m := map[string]any{
		"type":       schemaType,
		"properties": properties,
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}

func propertyToMap(p model.PropertySchema) map[string]any {
	m := map[string]any{"type": p.Type}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		m["enum"] = p.Enum
	}
	if p.Items != nil {
		m["items"] = propertyToMap(*p.Items)
	}
	return m
}

// fromOpenAIResponse converts an OpenAI response to internal format.
func fromOpenAIResponse(resp *oai.ChatCompletion, modelUsed string) (*model.GenerateResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, &model.ProviderError{
			Code:    model.ErrorCodeMalformed,
			Message: "empty choices in response",
		}
	}

	choice := resp.Choices[0]

	if choice.Message.Refusal != "" {
		return nil, &model.ProviderError{
			Code:    model.ErrorCodeContentBlocked,
			Message: fmt.Sprintf("model refused: %s", choice.Message.Refusal),
		}
	}

	message := conversation.AssistantMessage{Text: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, &model.ProviderError{
					Code:       model.ErrorCodeMalformed,
					Message:    fmt.Sprintf("tool call arguments are not valid JSON: %s", tc.Function.Arguments),
					Underlying: err,
				}
			}
		}
		message.ToolCalls = append(message.ToolCalls, conversation.ToolCall{
			ID:   callID(tc.ID),
			Name: tc.Function.Name,
			Args: args,
		})
	}

	if message.Text == "" && len(message.ToolCalls) == 0 {
		return nil, &model.ProviderError{
			Code:    model.ErrorCodeMalformed,
			Message: "choice has neither text nor tool calls",
		}
	}

	return &model.GenerateResponse{
		Message: message,
		Metadata: model.ResponseMetadata{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
			ModelUsed:        modelUsed,
		},
	}, nil
}

// callID returns the API-provided call id, or synthesizes one when absent.
func callID(id string) string {
	if id != "" {
		return id
	}
	return "call_" + uuid.NewString()
}

// mapOpenAIError maps OpenAI API errors to provider errors.
func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	// Cancellation is not a provider failure
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return &model.ProviderError{
				Code:       model.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
				Retryable:  false,
			}
		case 429:
			code := model.ErrorCodeRateLimit
			if apiErr.Type == "insufficient_quota" || apiErr.Code == "insufficient_quota" {
				code = model.ErrorCodeQuota
			}
			return &model.ProviderError{
				Code:       code,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  code == model.ErrorCodeRateLimit,
				RetryAfter: parseRetryAfter(apiErr.Response),
			}
		case 400:
			if apiErr.Code == "context_length_exceeded" {
				return &model.ProviderError{
					Code:       model.ErrorCodeContextLength,
					Message:    "context length exceeded",
					Underlying: err,
					Retryable:  false,
				}
			}
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

// parseRetryAfter reads the Retry-After header from the failed response.
func parseRetryAfter(resp *http.Response) *time.Duration {
	if resp == nil {
		return nil
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return nil
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		d := time.Duration(seconds) * time.Second
		return &d
	}
	if at, err := http.ParseTime(header); err == nil {
		d := time.Until(at)
		if d > 0 {
			return &d
		}
	}
	return nil
}
