package utils

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestBackoff_Duration(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: time.Second, Factor: 2, Jitter: 0}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second},
		{10, time.Second},
	}

	for _, tt := range tests {
		if got := b.Duration(tt.attempt); got != tt.want {
			t.Errorf("Duration(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_JitterBounded(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: time.Second, Factor: 2, Jitter: 0.5}

	for i := 0; i < 50; i++ {
		got := b.Duration(0)
		if got < 100*time.Millisecond || got > 150*time.Millisecond {
			t.Fatalf("Duration with jitter out of range: %v", got)
		}
	}
}

func TestBackoff_WithDefaults(t *testing.T) {
	b := Backoff{}.WithDefaults()
	if b != DefaultBackoff() {
		t.Errorf("expected defaults %+v, got %+v", DefaultBackoff(), b)
	}

	custom := Backoff{Initial: time.Millisecond}.WithDefaults()
	if custom.Initial != time.Millisecond || custom.Factor != 2 {
		t.Errorf("expected custom initial to survive, got %+v", custom)
	}
}

// TestBackoff_WithDefaults_JitterOptOut verifies a negative Jitter turns
// jitter off and the delays become exact.
func TestBackoff_WithDefaults_JitterOptOut(t *testing.T) {
	b := Backoff{Jitter: -1}.WithDefaults()
	if b.Jitter != 0 {
		t.Fatalf("Jitter = %v, want 0", b.Jitter)
	}
	if b.Initial != time.Second || b.Max != 30*time.Second || b.Factor != 2 {
		t.Errorf("schedule not defaulted: %+v", b)
	}
	for attempt, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		if got := b.Duration(attempt); got != want {
			t.Errorf("Duration(%d) = %v, want %v", attempt, got, want)
		}
	}
}

func TestSleep_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return promptly on canceled context")
	}
}

func TestSleep_Elapses(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRetryableStatus(t *testing.T) {
	retryable := []int{429, 500, 502, 503, 504}
	for _, code := range retryable {
		if !RetryableStatus(code) {
			t.Errorf("expected %d to be retryable", code)
		}
	}

	for _, code := range []int{200, 301, 400, 401, 403, 404, 501} {
		if RetryableStatus(code) {
			t.Errorf("expected %d to not be retryable", code)
		}
	}

	if RetryableStatus(http.StatusOK) {
		t.Error("200 must not be retryable")
	}
}
