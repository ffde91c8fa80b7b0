// Package budget enforces a shared ceiling on outbound request rate.
//
// Every fetcher in the resolution pipeline, indexed or exhaustive, acquires a
// token from one shared Budget before issuing a request, so the aggregate rate
// against the external host never exceeds the configured limit regardless of
// how many workers are active.
package budget

import (
	"context"
	"sync"
	"time"

	"github.com/fintrace/insider/errors"
)

// Budget is a token bucket with configurable capacity and refill rate.
// Safe for concurrent use; all state mutation happens inside take().
type Budget struct {
	mu       sync.Mutex
	capacity float64
	tokens   float64
	rate     float64 // tokens per second
	last     time.Time
	timeNow  func() time.Time // Injectable for testing
}

// New creates a budget with real time
func New(ratePerSecond float64, burst int) *Budget {
	return NewWithClock(ratePerSecond, burst, time.Now)
}

// NewWithClock creates a budget with an injectable clock (for testing)
func NewWithClock(ratePerSecond float64, burst int, timeNow func() time.Time) *Budget {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	if burst <= 0 {
		burst = int(ratePerSecond)
	}
	return &Budget{
		capacity: float64(burst),
		tokens:   float64(burst),
		rate:     ratePerSecond,
		last:     timeNow(),
		timeNow:  timeNow,
	}
}

// Acquire blocks until a token is available or the context's deadline elapses.
// Tokens are delayed under contention, never dropped; a caller that cannot be
// served before its deadline gets ErrRateLimited rather than a bypassed limit.
func (b *Budget) Acquire(ctx context.Context) error {
	for {
		wait, ok := b.take()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Wrap(errors.ErrRateLimited, ctx.Err().Error())
		case <-timer.C:
		}
	}
}

// TryAcquire takes a token without blocking. Returns false when the bucket
// is empty.
func (b *Budget) TryAcquire() bool {
	_, ok := b.take()
	return ok
}

// take refills the bucket from elapsed time and attempts to remove one token.
// On failure it returns the duration until the next token becomes available.
func (b *Budget) take() (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.timeNow()
	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * b.rate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}

	deficit := 1 - b.tokens
	wait := time.Duration(deficit / b.rate * float64(time.Second))
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait, false
}

// Stats returns the current token count and capacity
func (b *Budget) Stats() (available float64, capacity float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.timeNow()
	elapsed := now.Sub(b.last).Seconds()
	tokens := b.tokens + elapsed*b.rate
	if tokens > b.capacity {
		tokens = b.capacity
	}
	return tokens, b.capacity
}
