package ai

import (
	"context"
)

// Provider is implemented by completion-service clients.
type Provider interface {
	// SendMessage sends a chat request and returns the first choice.
	// A response that is not a well-formed completion yields an error
	// matching ErrCompletionProtocol; non-2xx responses yield *StatusError.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, request ChatRequest) (*ChatResponse, error)

func (f ProviderFunc) SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	return f(ctx, request)
}
