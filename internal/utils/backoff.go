package utils

import (
	"context"
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// Backoff describes an exponential backoff schedule with jitter:
// delay = min(Initial * Factor^attempt, Max) + rand[0, Jitter*delay).
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64
	Jitter  float64
}

// DefaultBackoff returns the schedule used by both the completion retry
// middleware and the page-fetch transport: 1s, 2s, 4s... capped at 30s with
// 10% jitter.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial: time.Second,
		Max:     30 * time.Second,
		Factor:  2.0,
		Jitter:  0.1,
	}
}

// WithDefaults fills zero-valued fields from [DefaultBackoff]. The zero
// Backoff becomes DefaultBackoff, jitter included. A zero Jitter alongside a
// custom schedule is kept as is; a negative Jitter disables jitter.
func (b Backoff) WithDefaults() Backoff {
	d := DefaultBackoff()
	if b == (Backoff{}) {
		return d
	}
	if b.Initial <= 0 {
		b.Initial = d.Initial
	}
	if b.Max <= 0 {
		b.Max = d.Max
	}
	if b.Factor <= 0 {
		b.Factor = d.Factor
	}
	if b.Jitter < 0 {
		b.Jitter = 0
	}
	return b
}

// Duration returns the wait before retry number attempt (0-indexed).
func (b Backoff) Duration(attempt int) time.Duration {
	base := float64(b.Initial) * math.Pow(b.Factor, float64(attempt))
	if base > float64(b.Max) {
		base = float64(b.Max)
	}

	jitter := base * b.Jitter * rand.Float64() //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(base + jitter)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryableStatus reports whether an HTTP status code is worth retrying:
// 429 and the transient 5xx family (500, 502, 503, 504).
func RetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
