package budget

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mockClock allows controlling time in tests
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock(now time.Time) *mockClock {
	return &mockClock{now: now}
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func TestBudget_BurstThenEmpty(t *testing.T) {
	clock := newMockClock(time.Now())
	b := NewWithClock(10, 10, clock.Now)

	// Full bucket serves the burst immediately
	for i := 0; i < 10; i++ {
		if !b.TryAcquire() {
			t.Fatalf("call %d: expected token, bucket should hold 10", i+1)
		}
	}

	// 11th call finds an empty bucket
	if b.TryAcquire() {
		t.Error("call 11: expected empty bucket")
	}
}

func TestBudget_Refill(t *testing.T) {
	clock := newMockClock(time.Now())
	b := NewWithClock(10, 10, clock.Now)

	for i := 0; i < 10; i++ {
		b.TryAcquire()
	}
	if b.TryAcquire() {
		t.Fatal("bucket should be empty")
	}

	// 100ms at 10 tokens/second refills exactly one token
	clock.Advance(100 * time.Millisecond)
	if !b.TryAcquire() {
		t.Error("expected one token after 100ms refill")
	}
	if b.TryAcquire() {
		t.Error("expected only one token after 100ms refill")
	}
}

func TestBudget_RefillCapsAtCapacity(t *testing.T) {
	clock := newMockClock(time.Now())
	b := NewWithClock(10, 5, clock.Now)

	clock.Advance(time.Hour)

	count := 0
	for b.TryAcquire() {
		count++
	}
	if count != 5 {
		t.Errorf("expected refill capped at burst 5, got %d tokens", count)
	}
}

// The 11th request against a full 10 token/second bucket is delayed until a
// token refills, not dropped and not an error.
func TestBudget_EleventhRequestDelayed(t *testing.T) {
	b := New(10, 10)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := b.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i+1, err)
		}
	}

	start := time.Now()
	if err := b.Acquire(ctx); err != nil {
		t.Fatalf("acquire 11: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond {
		t.Errorf("11th acquire returned after %v; expected a delay near 100ms", elapsed)
	}
}

func TestBudget_AcquireDeadline(t *testing.T) {
	clock := newMockClock(time.Now())
	b := NewWithClock(0.001, 1, clock.Now) // ~17 minutes per token
	b.TryAcquire()                         // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := b.Acquire(ctx)
	if err == nil {
		t.Fatal("expected deadline error from empty bucket")
	}
}

func TestBudget_Concurrent(t *testing.T) {
	b := New(100, 100)

	var wg sync.WaitGroup
	results := make(chan bool, 200)

	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				results <- b.TryAcquire()
			}
		}()
	}

	wg.Wait()
	close(results)

	success := 0
	for ok := range results {
		if ok {
			success++
		}
	}

	// 100 tokens in the bucket; a few more may refill while goroutines run
	if success < 100 || success > 105 {
		t.Errorf("expected ~100 successful acquires, got %d", success)
	}
}
