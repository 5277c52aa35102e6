package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/apiwatch/internal/core/domain"
	"github.com/vietddude/apiwatch/internal/monitor/metrics"
)

// DefaultInterval is the periodic check cadence.
const DefaultInterval = 30 * time.Second

// Checker is the tracker surface the runner drives.
type Checker interface {
	Check(ctx context.Context) domain.Status
	Status() domain.Status
}

// Runner drives periodic health checks: one immediately on start, then
// one per interval. Ticks are skipped while a probe is in flight or a
// backoff retry is armed, so the two schedules never compete.
type Runner struct {
	checker  Checker
	interval time.Duration
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a runner. interval <= 0 falls back to DefaultInterval.
func NewRunner(c Checker, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		checker:  c,
		interval: interval,
		log:      slog.Default().With("component", "runner"),
	}
}

// Start launches the periodic loop. Calling Start on a running runner is
// a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(runCtx, r.done)
}

func (r *Runner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	r.log.Info("Periodic health checks started", "interval", r.interval)
	r.checker.Check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := r.checker.Status()
			if snap.Checking || snap.Retrying {
				metrics.TicksSkippedTotal.Inc()
				r.log.Debug("Skipping periodic check",
					"checking", snap.Checking,
					"retrying", snap.Retrying,
				)
				continue
			}
			r.checker.Check(ctx)
		}
	}
}

// Stop halts the loop and waits for it to exit. Idempotent. An armed
// backoff retry keeps its own schedule; Stop does not cancel it.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
