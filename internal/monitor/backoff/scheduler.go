package backoff

import (
	"sync"
	"time"
)

// Scheduler arms at most one pending callback. Arming while armed
// replaces the pending timer; Cancel is idempotent and safe when nothing
// is armed. A callback that has already started running cannot be
// stopped, so callers re-check their own state when it fires.
type Scheduler interface {
	Arm(d time.Duration, fn func())
	Cancel()
	Pending() bool
}

// Timer is the production Scheduler backed by time.AfterFunc. A
// generation counter drops stale fires after a rearm or cancel.
type Timer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewTimer creates an unarmed Timer.
func NewTimer() *Timer {
	return &Timer{}
}

// Arm schedules fn after d, replacing any pending callback.
func (t *Timer) Arm(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.gen != gen {
			// Replaced or canceled while the fire was in flight.
			t.mu.Unlock()
			return
		}
		t.timer = nil
		t.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending callback, if any.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
}

// Pending reports whether a callback is armed.
func (t *Timer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer != nil
}
