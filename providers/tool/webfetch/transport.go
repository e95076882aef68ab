package webfetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/observability"
)

// DefaultMaxRetries is the number of extra attempts RetryTransport makes.
const DefaultMaxRetries = 3

// RetryTransport retries idempotent requests (GET and HEAD) that fail with a
// network error or a retryable status (429, 500, 502, 503, 504). Waits follow
// Backoff unless the server sends Retry-After in seconds.
type RetryTransport struct {
	Base       http.RoundTripper
	MaxRetries int
	Backoff    utils.Backoff

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryTransport wraps base (http.DefaultTransport when nil) with the
// default retry policy.
func NewRetryTransport(base http.RoundTripper) *RetryTransport {
	return &RetryTransport{
		Base:       base,
		MaxRetries: DefaultMaxRetries,
		Backoff:    utils.DefaultBackoff(),
	}
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		return base.RoundTrip(req)
	}

	sleep := t.sleep
	if sleep == nil {
		sleep = utils.Sleep
	}
	backoff := t.Backoff.WithDefaults()
	ctx := req.Context()

	for attempt := 0; ; attempt++ {
		resp, err := base.RoundTrip(req)
		if attempt >= t.MaxRetries || !shouldRetry(ctx, resp, err) {
			return resp, err
		}

		wait := backoff.Duration(attempt)
		recordRetry(ctx, req, attempt+1, resp, err)
		if resp != nil {
			if d, ok := retryAfter(resp.Header.Get("Retry-After")); ok {
				wait = d
			}
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			utils.CloseWithLog(resp.Body)
		}

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// recordRetry adds an http.retry event to the span in ctx, if any.
func recordRetry(ctx context.Context, req *http.Request, attempt int, resp *http.Response, err error) {
	span := observability.SpanFromContext(ctx)
	if span == nil {
		return
	}
	attrs := []observability.Attribute{
		observability.Int(observability.AttrHTTPRetryAttempt, attempt),
		observability.String(observability.AttrHTTPMethod, req.Method),
		observability.String(observability.AttrHTTPURL, req.URL.String()),
	}
	if resp != nil {
		attrs = append(attrs,
			observability.Int(observability.AttrHTTPStatusCode, resp.StatusCode),
			observability.String(observability.AttrErrorType, "http_status"),
		)
	} else {
		attrs = append(attrs,
			observability.Error(err),
			observability.String(observability.AttrErrorType, "network"),
		)
	}
	span.AddEvent(observability.EventHTTPRetry, attrs...)
}

func shouldRetry(ctx context.Context, resp *http.Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return utils.RetryableStatus(resp.StatusCode)
}

// retryAfter parses the delay-seconds form of Retry-After. HTTP dates are
// ignored and fall back to the backoff schedule.
func retryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}
