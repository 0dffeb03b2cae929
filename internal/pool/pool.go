// Package pool provides a bounded concurrency limiter.
//
// A Pool is a counting semaphore sized at construction time. The scanner
// runs two independent instances: a large one gating HTTP probes and a
// small one gating browser captures. Acquisition blocks the calling
// goroutine until a slot frees up or the context is cancelled; it never
// fails while the context is live.
package pool

import "context"

// Pool is a bounded set of slots. The number of holders never exceeds
// the configured capacity.
type Pool struct {
	slots chan struct{}
}

// New creates a pool with the given capacity. Capacity must be at least 1;
// smaller values are clamped.
func New(capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	return &Pool{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is available or ctx is cancelled.
// On success the caller owns one slot and must call Release exactly once.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (p *Pool) Release() {
	select {
	case <-p.slots:
	default:
		panic("pool: release without acquire")
	}
}

// InFlight reports the number of currently held slots.
func (p *Pool) InFlight() int {
	return len(p.slots)
}

// Cap reports the pool capacity.
func (p *Pool) Cap() int {
	return cap(p.slots)
}
