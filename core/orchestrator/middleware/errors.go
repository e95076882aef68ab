package middleware

import (
	"context"
	"errors"

	"github.com/leofalp/jarvis/providers/ai"
)

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed with a retryable error. The last provider error is wrapped as well,
// so both errors.Is(err, ErrRetryExhausted) and errors.As on the cause work.
var ErrRetryExhausted = errors.New("jarvis: all retry attempts exhausted")

// errorType names the class of a completion failure for the error.type
// attribute.
func errorType(err error) string {
	var statusErr *ai.StatusError
	var protoErr *ai.ProtocolError
	switch {
	case errors.Is(err, ErrRetryExhausted):
		return "retry_exhausted"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.As(err, &protoErr), errors.Is(err, ai.ErrCompletionProtocol):
		return "protocol"
	default:
		return "transport"
	}
}
