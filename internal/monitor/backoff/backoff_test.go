package backoff

import (
	"sync"
	"testing"
	"time"
)

func TestPolicy_Delay(t *testing.T) {
	p := DefaultPolicy

	want := []time.Duration{
		5 * time.Second,
		10 * time.Second,
		20 * time.Second,
		40 * time.Second,
		60 * time.Second,
		60 * time.Second,
	}

	for attempt, expected := range want {
		if got := p.Delay(attempt); got != expected {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestPolicy_DelayEdges(t *testing.T) {
	p := DefaultPolicy

	if got := p.Delay(-1); got != 5*time.Second {
		t.Errorf("Delay(-1) = %v, want 5s", got)
	}

	// Very large attempts stay clamped instead of overflowing.
	if got := p.Delay(500); got != 60*time.Second {
		t.Errorf("Delay(500) = %v, want 60s", got)
	}
}

func TestPolicy_CustomBounds(t *testing.T) {
	p := Policy{Base: 100 * time.Millisecond, Max: 300 * time.Millisecond}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 300 * time.Millisecond},
		{3, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := p.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestTimer_ArmAndFire(t *testing.T) {
	timer := NewTimer()
	fired := make(chan struct{})

	timer.Arm(10*time.Millisecond, func() { close(fired) })
	if !timer.Pending() {
		t.Fatal("expected pending after Arm")
	}

	select {
	case <-fired:
	case <-time.After(1 * time.Second):
		t.Fatal("callback did not fire")
	}

	if timer.Pending() {
		t.Error("expected not pending after fire")
	}
}

func TestTimer_CancelPreventsFire(t *testing.T) {
	timer := NewTimer()
	fired := make(chan struct{}, 1)

	timer.Arm(20*time.Millisecond, func() { fired <- struct{}{} })
	timer.Cancel()

	if timer.Pending() {
		t.Error("expected not pending after Cancel")
	}

	select {
	case <-fired:
		t.Fatal("canceled callback fired")
	case <-time.After(100 * time.Millisecond):
	}

	// Cancel with nothing armed is a no-op.
	timer.Cancel()
}

func TestTimer_RearmReplaces(t *testing.T) {
	timer := NewTimer()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	timer.Arm(60*time.Millisecond, func() {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	timer.Arm(10*time.Millisecond, func() {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		close(done)
	})

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("replacement callback did not fire")
	}

	// Give the replaced timer time to misfire if it was going to.
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 1 || order[0] != "second" {
		t.Errorf("expected only the replacement callback, got %v", order)
	}
}
