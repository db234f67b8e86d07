// Package debounce delays evaluation of rapidly repeated input until it has
// been quiescent for a fixed interval. A superseded trigger is cancelled
// outright rather than queued — last write wins.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs at most one pending function at a time. Trigger schedules
// fn to run after the configured delay; triggering again before the delay
// elapses cancels the pending run, and cancels the context of a run already
// in flight so it can stop early.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

// New returns a Debouncer with the given quiescence interval.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the delay, replacing any pending or
// in-flight run. fn receives a context that is cancelled if this trigger is
// itself superseded or the Debouncer is stopped.
func (d *Debouncer) Trigger(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelPendingLocked()

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		defer cancel()
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
}

// Stop cancels any pending or in-flight run. The Debouncer remains usable.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelPendingLocked()
}

func (d *Debouncer) cancelPendingLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
