// Package retry re-attempts an operation with exponential backoff.
// The probe client uses it to wait for a server that is still starting.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError stops the loop on the attempt that returned it.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying.  Permanent(nil) is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with [Permanent].
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff doubles the wait between attempts up to MaxDelay.
type Backoff struct {
	InitialDelay time.Duration // 0 → 200ms
	MaxDelay     time.Duration // 0 → 5s
	Multiplier   float64       // ≤0 → 2
	// MaxAttempts counts the first try.  0 means retry until ctx ends.
	MaxAttempts int
	Jitter      bool // ±25%
}

// ForAttempts returns the backoff the probe dialer uses: n total tries
// starting 200ms apart.
func ForAttempts(n int) *Backoff {
	if n < 1 {
		n = 1
	}
	return &Backoff{
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		MaxAttempts:  n,
		Jitter:       true,
	}
}

// Do calls fn (attempt is 1-based) until it returns nil, returns a
// permanent error, runs out of attempts, or ctx ends.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	delay := b.InitialDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	mult := b.Multiplier
	if mult <= 0 {
		mult = 2
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return errors.Unwrap(err)
		}
		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			if b.MaxAttempts == 1 {
				return err
			}
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}

		wait := delay
		if b.Jitter {
			wait = jitter(delay)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}

		delay = time.Duration(math.Min(float64(delay)*mult, float64(maxDelay)))
	}
}

func jitter(d time.Duration) time.Duration {
	quarter := float64(d) / 4
	delta := rand.Float64()*2*quarter - quarter
	return time.Duration(math.Max(float64(d)+delta, float64(time.Millisecond)))
}
