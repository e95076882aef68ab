package middleware

import (
	"context"
	"time"

	"github.com/leofalp/jarvis/providers/ai"
)

// NewTimeoutMiddleware bounds every request with timeout. A shorter deadline
// already on the caller's context wins. Placed inside the retry middleware it
// bounds each attempt; placed outside, the whole retry loop.
func NewTimeoutMiddleware(timeout time.Duration) Config {
	return Config{Send: func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}}
}
