package chatgpt

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Unconfigured for every call.
var ErrNotConfigured = errors.New("llm api key not configured")

// Unconfigured stands in for Client when no API key is set, so callers that
// treat narration as optional keep working.
type Unconfigured struct{}

// CreateChatCompletion always fails with ErrNotConfigured.
func (Unconfigured) CreateChatCompletion(context.Context, ChatCompletionRequest) (ChatCompletionResponse, error) {
	return ChatCompletionResponse{}, ErrNotConfigured
}
