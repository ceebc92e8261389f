package session

import (
	"sync"
	"time"
)

// debouncer runs the most recently armed callback once its delay elapses
// without another Arm. Each Arm supersedes the previous one; a timer that
// fires after being superseded or cancelled does nothing.
type debouncer struct {
	clock Clock

	mu      sync.Mutex
	gen     uint64
	timer   Timer
	stopped bool
}

func newDebouncer(clock Clock) *debouncer {
	return &debouncer{clock: clock}
}

// Arm (re)starts the quiet period. It is a no-op after Stop.
func (d *debouncer) Arm(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.stopped || gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending callback, if any.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels the pending callback and refuses further Arm calls.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

// Pending reports whether a callback is armed.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *debouncer) cancelLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
