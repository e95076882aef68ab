package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/ai"
	"github.com/leofalp/jarvis/providers/observability"
)

// RetryConfig tunes NewRetryMiddleware. Zero values take the defaults noted
// on each field.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first failure. Default: 3.
	MaxRetries int

	// Backoff is the wait schedule between attempts. Default:
	// utils.DefaultBackoff (1s doubling up to 30s, 10% jitter).
	Backoff utils.Backoff

	// RetryableFunc reports whether err should trigger another attempt.
	// Default: a non-2xx *ai.StatusError with status 429, 500, 502, 503 or 504.
	RetryableFunc func(error) bool

	// sleep is swapped in tests.
	sleep func(ctx context.Context, attempt int) error
}

func defaultRetryableFunc(err error) bool {
	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) {
		return utils.RetryableStatus(statusErr.StatusCode)
	}
	return false
}

func applyRetryDefaults(config *RetryConfig) {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	config.Backoff = config.Backoff.WithDefaults()
	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
	if config.sleep == nil {
		backoff := config.Backoff
		config.sleep = func(ctx context.Context, attempt int) error {
			return utils.Sleep(ctx, backoff.Duration(attempt))
		}
	}
}

// NewRetryMiddleware retries retryable failures with exponential backoff and
// jitter. Protocol errors and other non-retryable errors pass through at once.
// On exhaustion the returned error wraps ErrRetryExhausted and the last
// provider error.
func NewRetryMiddleware(config RetryConfig) Config {
	applyRetryDefaults(&config)

	return Config{Send: func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					if span := observability.SpanFromContext(ctx); span != nil {
						span.AddEvent(observability.EventHTTPRetry,
							observability.Int(observability.AttrHTTPRetryAttempt, attempt),
							observability.String(observability.AttrErrorType, errorType(lastErr)),
							observability.Error(lastErr),
						)
					}
					if err := config.sleep(ctx, attempt-1); err != nil {
						return nil, err
					}
				}

				response, err := next(ctx, request)
				if err == nil {
					return response, nil
				}
				lastErr = err

				if !config.RetryableFunc(err) {
					return nil, err
				}
			}

			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}}
}
