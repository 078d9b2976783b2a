package util

import (
	"context"
	"sync"
	"time"
)

// Pacer enforces a minimum spacing between calls to an external service.
// The first call passes immediately; each subsequent call waits until the
// interval since the previously granted slot has elapsed. Safe for
// concurrent use; slots are granted in arrival order at the lock.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewPacer creates a Pacer allowing perMinute operations per minute.
func NewPacer(perMinute int) *Pacer {
	if perMinute < 1 {
		perMinute = 1
	}
	return &Pacer{interval: time.Minute / time.Duration(perMinute)}
}

// Wait blocks until the caller's slot arrives or the context is cancelled.
// On cancellation the slot is forfeited, not returned to the schedule.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	if p.next.Before(now) {
		p.next = now
	}
	wait := p.next.Sub(now)
	p.next = p.next.Add(p.interval)
	p.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
