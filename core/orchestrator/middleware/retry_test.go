package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/ai"
)

// noSleep records attempts instead of waiting.
func noSleep(attempts *[]int) func(context.Context, int) error {
	return func(ctx context.Context, attempt int) error {
		*attempts = append(*attempts, attempt)
		return ctx.Err()
	}
}

func statusErr(code int) error {
	return &ai.StatusError{StatusCode: code, Body: http.StatusText(code)}
}

// TestRetryMiddleware_SuccessOnFirstTry verifies that a successful call is not
// retried.
func TestRetryMiddleware_SuccessOnFirstTry(t *testing.T) {
	seq := &mockSendSequence{responses: []*ai.ChatResponse{{Content: "ok"}}}
	var attempts []int

	send := NewRetryMiddleware(RetryConfig{sleep: noSleep(&attempts)}).Send(seq.next)
	resp, err := send(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" || seq.callCount != 1 || len(attempts) != 0 {
		t.Errorf("Content = %q calls = %d sleeps = %v", resp.Content, seq.callCount, attempts)
	}
}

func TestRetryMiddleware_RetriesTransientStatus(t *testing.T) {
	seq := &mockSendSequence{
		errors:    []error{statusErr(429), statusErr(503), nil},
		responses: []*ai.ChatResponse{nil, nil, {Content: "recovered"}},
	}
	var attempts []int

	send := NewRetryMiddleware(RetryConfig{sleep: noSleep(&attempts)}).Send(seq.next)
	resp, err := send(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "recovered" {
		t.Errorf("Content = %q", resp.Content)
	}
	if seq.callCount != 3 {
		t.Errorf("calls = %d, want 3", seq.callCount)
	}
	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("sleep attempts = %v, want [0 1]", attempts)
	}
}

func TestRetryMiddleware_NonRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"client error", statusErr(400)},
		{"unauthorized", statusErr(401)},
		{"protocol", &ai.ProtocolError{Reason: "no choices"}},
		{"plain", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := &mockSendSequence{errors: []error{tt.err}}
			var attempts []int

			send := NewRetryMiddleware(RetryConfig{sleep: noSleep(&attempts)}).Send(seq.next)
			_, err := send(context.Background(), ai.ChatRequest{})
			if !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if errors.Is(err, ErrRetryExhausted) {
				t.Error("non-retryable error reported as exhausted")
			}
			if seq.callCount != 1 {
				t.Errorf("calls = %d, want 1", seq.callCount)
			}
		})
	}
}

func TestRetryMiddleware_Exhausted(t *testing.T) {
	last := statusErr(502)
	seq := &mockSendSequence{errors: []error{statusErr(500), statusErr(500), last}}
	var attempts []int

	send := NewRetryMiddleware(RetryConfig{MaxRetries: 2, sleep: noSleep(&attempts)}).Send(seq.next)
	_, err := send(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("err = %v, want ErrRetryExhausted", err)
	}
	var se *ai.StatusError
	if !errors.As(err, &se) || se.StatusCode != 502 {
		t.Errorf("cause = %v, want last status error", se)
	}
	if seq.callCount != 3 {
		t.Errorf("calls = %d, want 3", seq.callCount)
	}
}

func TestRetryMiddleware_CustomRetryable(t *testing.T) {
	flaky := errors.New("flaky")
	seq := &mockSendSequence{errors: []error{flaky}}
	var attempts []int

	send := NewRetryMiddleware(RetryConfig{
		RetryableFunc: func(err error) bool { return errors.Is(err, flaky) },
		sleep:         noSleep(&attempts),
	}).Send(seq.next)
	if _, err := send(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq.callCount != 2 {
		t.Errorf("calls = %d, want 2", seq.callCount)
	}
}

// TestRetryMiddleware_ContextCancelledDuringBackoff verifies that the real
// backoff wait honours cancellation.
func TestRetryMiddleware_ContextCancelledDuringBackoff(t *testing.T) {
	seq := &mockSendSequence{errors: []error{statusErr(503), statusErr(503)}}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	send := NewRetryMiddleware(RetryConfig{}).Send(seq.next)
	start := time.Now()
	_, err := send(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("elapsed = %v, backoff ignored cancellation", elapsed)
	}
	if seq.callCount != 1 {
		t.Errorf("calls = %d, want 1", seq.callCount)
	}
}

func TestApplyRetryDefaults(t *testing.T) {
	var config RetryConfig
	applyRetryDefaults(&config)

	if config.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", config.MaxRetries)
	}
	if config.Backoff != utils.DefaultBackoff() {
		t.Errorf("Backoff = %+v, want %+v", config.Backoff, utils.DefaultBackoff())
	}
	if config.Backoff.Jitter <= 0 {
		t.Errorf("default backoff has no jitter: %+v", config.Backoff)
	}
	if !config.RetryableFunc(statusErr(504)) || config.RetryableFunc(statusErr(404)) {
		t.Error("default RetryableFunc misclassifies status codes")
	}
}
