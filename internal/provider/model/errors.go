package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a provider error code.
type ErrorCode string

const (
	ErrorCodeContextLength  ErrorCode = "context_length_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeQuota          ErrorCode = "quota_exceeded"
	ErrorCodeInvalidModel   ErrorCode = "invalid_model"
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodeNetwork        ErrorCode = "network_error"
	ErrorCodeTimeout        ErrorCode = "timeout"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeInvalidRequest ErrorCode = "invalid_request"
	// ErrorCodeMalformed marks replies that cannot be mapped to an
	// assistant message (no candidates, neither text nor tool calls).
	ErrorCodeMalformed ErrorCode = "malformed_response"
)

// ProviderError wraps errors with additional context.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
	Retryable  bool
	RetryAfter *time.Duration
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// AsProviderError extracts a *ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given provider error code.
func HasCode(err error, code ErrorCode) bool {
	if providerErr, ok := AsProviderError(err); ok {
		return providerErr.Code == code
	}
	return false
}

// IsAuthError reports whether err is an authentication failure.
// The UI uses this to prompt for a new API key instead of just failing.
func IsAuthError(err error) bool {
	return HasCode(err, ErrorCodeAuth)
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	if providerErr, ok := AsProviderError(err); ok {
		return providerErr.Retryable
	}
	return false
}

// GetRetryAfter returns the retry-after duration if present.
func GetRetryAfter(err error) *time.Duration {
	if providerErr, ok := AsProviderError(err); ok {
		return providerErr.RetryAfter
	}
	return nil
}
