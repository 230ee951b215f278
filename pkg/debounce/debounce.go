// Package debounce coalesces bursts of calls: the last call within a quiet window wins.
package debounce

import (
	"context"
	"sync"
	"time"
)

var withCancel = context.WithCancel

// Debouncer runs only the most recent scheduled task once the quiet window has passed
// without another Trigger. Scheduling a task cancels the pending one.
type Debouncer struct {
	quiet time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// New creates a debouncer with the given quiet window
func New(quiet time.Duration) *Debouncer {
	return &Debouncer{quiet: quiet}
}

// Trigger schedules fn, superseding any task still waiting. It returns false after Stop.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}
	if d.cancel != nil {
		d.cancel()
	}

	d.gen++
	gen := d.gen
	ctx, cancel := withCancel(context.Background())
	d.cancel = cancel

	go d.wait(ctx, gen, fn)
	return true
}

func (d *Debouncer) wait(ctx context.Context, gen uint64, fn func()) {
	timer := time.NewTimer(d.quiet)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	d.mu.Lock()
	current := gen == d.gen && !d.closed
	if current {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	if current {
		fn()
	}
}

// Pending reports whether a task is waiting for its quiet window
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Stop cancels the pending task and rejects further triggers
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.gen++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
