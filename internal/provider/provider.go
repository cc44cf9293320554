// Package provider adapts external LLM completion APIs to a single
// contract: a message list in, one reply string out. One adapter per
// provider, selected by configuration at startup.
package provider

import (
	"context"
	"fmt"

	"chatrelay-backend/internal/models"
)

// Provider performs exactly one outbound completion call. The message
// list is assembled by the caller: system prompt first, then the
// recent history window verbatim, then the new user turn.
type Provider interface {
	Complete(ctx context.Context, messages []models.Turn) (string, error)
}

// ConfigError means the provider is missing required configuration
// (typically an API key). Detected at construction, before any call.
type ConfigError struct{ Message string }

func (e *ConfigError) Error() string { return e.Message }

// UnavailableError wraps a transport-level failure reaching the
// provider endpoint.
type UnavailableError struct{ Err error }

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider unreachable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// APIError carries an explicit error message returned by the provider.
type APIError struct{ Message string }

func (e *APIError) Error() string { return e.Message }

// ResponseError means the provider answered with a shape the adapter
// does not recognize, or the reply field was absent or empty.
type ResponseError struct{ Message string }

func (e *ResponseError) Error() string { return e.Message }
