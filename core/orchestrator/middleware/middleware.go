package middleware

import (
	"context"
	"errors"

	"github.com/leofalp/jarvis/providers/ai"
)

// SendFunc sends one chat request to the completion service. It is the unit
// threaded through the middleware chain.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps the next SendFunc in the chain.
type Middleware func(next SendFunc) SendFunc

// Config is one entry of a middleware chain. Send is required.
type Config struct {
	Send Middleware
}

// ErrNilMiddleware is returned by Chain for a Config without Send.
var ErrNilMiddleware = errors.New("jarvis: middleware config has nil Send")

// Chain wraps provider with configs. configs[0] is the outermost wrapper,
// i.e. the first to see an incoming request.
func Chain(provider ai.Provider, configs ...Config) (SendFunc, error) {
	var chain SendFunc = provider.SendMessage

	for i := len(configs) - 1; i >= 0; i-- {
		if configs[i].Send == nil {
			return nil, ErrNilMiddleware
		}
		chain = configs[i].Send(chain)
	}
	return chain, nil
}
