// Package monitor tracks the availability of the remote prediction
// service and governs recovery retries.
package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/apiwatch/internal/core/domain"
	"github.com/vietddude/apiwatch/internal/infra/probe"
	"github.com/vietddude/apiwatch/internal/monitor/backoff"
	"github.com/vietddude/apiwatch/internal/monitor/classify"
	"github.com/vietddude/apiwatch/internal/monitor/metrics"
)

// Config holds tracker tuning.
type Config struct {
	FailureThreshold int // consecutive failures before retries arm
	Backoff          backoff.Policy
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	FailureThreshold: domain.FailureThreshold,
	Backoff:          backoff.DefaultPolicy,
}

// Tracker owns the authoritative health record for the service. All
// writes go through it; reads are snapshot copies. A probe runs outside
// the lock, so reads during a check see Checking=true.
type Tracker struct {
	prober probe.Prober
	sched  backoff.Scheduler
	cfg    Config
	log    *slog.Logger

	mu     sync.Mutex
	status domain.Status

	now func() time.Time
}

// NewTracker creates a tracker. Zero config fields fall back to
// DefaultConfig.
func NewTracker(p probe.Prober, sched backoff.Scheduler, cfg Config) *Tracker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultConfig.FailureThreshold
	}
	if cfg.Backoff.Base <= 0 {
		cfg.Backoff.Base = backoff.DefaultPolicy.Base
	}
	if cfg.Backoff.Max <= 0 {
		cfg.Backoff.Max = backoff.DefaultPolicy.Max
	}

	return &Tracker{
		prober: p,
		sched:  sched,
		cfg:    cfg,
		log:    slog.Default().With("component", "monitor"),
		now:    time.Now,
	}
}

// Status returns a snapshot of the current health record.
func (t *Tracker) Status() domain.Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Check runs one probe cycle and returns the resulting snapshot. A check
// already in flight is not duplicated; the caller gets the current
// snapshot back unchanged. A manual check preempts any armed retry.
func (t *Tracker) Check(ctx context.Context) domain.Status {
	t.mu.Lock()
	if t.status.Checking {
		snap := t.status
		t.mu.Unlock()
		return snap
	}
	if t.status.Retrying {
		t.sched.Cancel()
		t.status.Retrying = false
		t.status.NextRetryAt = nil
	}
	t.status.Checking = true
	t.status.Error = ""
	t.status.ErrorKind = ""
	t.mu.Unlock()

	res := t.prober.Probe(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.apply(res)
	return t.status
}

// ResetAndRetry clears failure bookkeeping and runs a fresh check. Safe
// to call when already healthy.
func (t *Tracker) ResetAndRetry(ctx context.Context) domain.Status {
	t.mu.Lock()
	t.sched.Cancel()
	t.status.Retrying = false
	t.status.NextRetryAt = nil
	t.status.ConsecutiveFailures = 0
	t.status.RetryCount = 0
	t.status.Error = ""
	t.status.ErrorKind = ""
	t.mu.Unlock()

	t.log.Info("Health state reset, checking now")
	return t.Check(ctx)
}

// ForceOffline marks the service offline without probing. The next
// periodic tick or manual check can bring it back.
func (t *Tracker) ForceOffline() domain.Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sched.Cancel()
	t.status.Retrying = false
	t.status.NextRetryAt = nil
	t.status.Online = false
	t.status.Error = "Manually set to offline"
	t.status.ErrorKind = domain.FailureServer

	metrics.ServiceOnline.Set(0)
	t.log.Warn("Service manually forced offline")
	return t.status
}

// ClearErrors wipes error state and counters without probing. Latency
// and timestamps stay as they were.
func (t *Tracker) ClearErrors() domain.Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sched.Cancel()
	t.status.Retrying = false
	t.status.NextRetryAt = nil
	t.status.Error = ""
	t.status.ErrorKind = ""
	t.status.ConsecutiveFailures = 0
	t.status.RetryCount = 0

	metrics.ConsecutiveFailures.Set(0)
	return t.status
}

// apply folds a probe result into the record. Caller holds the lock.
func (t *Tracker) apply(res probe.Result) {
	now := t.now()
	t.status.Checking = false
	t.status.LastCheckedAt = &now

	metrics.ProbeDuration.Observe(res.Latency.Seconds())

	if res.OK() {
		ms := res.Latency.Milliseconds()
		t.status.Online = true
		t.status.Error = ""
		t.status.ErrorKind = ""
		t.status.ResponseTimeMS = &ms
		t.status.ConsecutiveFailures = 0
		t.status.RetryCount = 0
		t.status.LastSuccessAt = &now

		t.sched.Cancel()
		t.status.Retrying = false
		t.status.NextRetryAt = nil

		metrics.ProbesTotal.WithLabelValues("success").Inc()
		metrics.ServiceOnline.Set(1)
		metrics.ConsecutiveFailures.Set(0)
		t.log.Debug("Probe succeeded", "latency", res.Latency)
		return
	}

	kind, msg := classify.Classify(res.Err)
	t.status.Online = false
	t.status.Error = msg
	t.status.ErrorKind = kind
	t.status.ConsecutiveFailures++
	t.status.LastFailureAt = &now

	metrics.ProbesTotal.WithLabelValues("failure").Inc()
	metrics.ProbeFailuresTotal.WithLabelValues(string(kind)).Inc()
	metrics.ServiceOnline.Set(0)
	metrics.ConsecutiveFailures.Set(float64(t.status.ConsecutiveFailures))

	t.log.Warn("Probe failed",
		"kind", kind,
		"consecutive", t.status.ConsecutiveFailures,
		"error", res.Err,
	)

	if t.status.ConsecutiveFailures >= t.cfg.FailureThreshold && !t.status.Retrying {
		t.armRetry(now)
	}
}

// armRetry schedules the next recovery attempt. Caller holds the lock.
func (t *Tracker) armRetry(now time.Time) {
	delay := t.cfg.Backoff.Delay(t.status.RetryCount)
	t.status.RetryCount++
	at := now.Add(delay)
	t.status.Retrying = true
	t.status.NextRetryAt = &at

	metrics.RetriesArmedTotal.Inc()
	t.log.Info("Retry scheduled",
		"attempt", t.status.RetryCount,
		"delay", delay,
		"next_retry_at", at.Format(time.RFC3339),
	)

	t.sched.Arm(delay, t.retryFire)
}

// retryFire runs when an armed backoff delay elapses.
func (t *Tracker) retryFire() {
	t.mu.Lock()
	if !t.status.Retrying {
		// Canceled between the timer firing and this running.
		t.mu.Unlock()
		return
	}
	t.status.Retrying = false
	t.status.NextRetryAt = nil
	t.mu.Unlock()

	t.Check(context.Background())
}
