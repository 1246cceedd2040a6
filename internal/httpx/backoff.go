package httpx

import (
	"math/rand"
	"time"
)

// Backoff computes capped exponential delays with optional jitter.
type Backoff struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    float64
}

// NewBackoff returns a Backoff initialized with the supplied parameters.
func NewBackoff(base, max time.Duration, jitter float64) Backoff {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if max <= 0 {
		max = time.Second
	}
	if max < base {
		max = base
	}
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 1 {
		jitter = 1
	}
	return Backoff{BaseDelay: base, MaxDelay: max, Jitter: jitter}
}

// ForAttempt returns the backoff duration for the given attempt (0-indexed).
func (b Backoff) ForAttempt(attempt int) time.Duration {
	delay := b.BaseDelay
	for i := 0; i < attempt && delay < b.MaxDelay; i++ {
		delay *= 2
	}
	if delay > b.MaxDelay {
		delay = b.MaxDelay
	}
	if b.Jitter == 0 {
		return delay
	}
	// rand/v2 top level functions are safe for concurrent use.
	factor := 1 + (rand.Float64()*2-1)*b.Jitter
	return time.Duration(float64(delay) * factor)
}
