// Package probe checks whether the remote prediction service is reachable
// and reporting itself healthy.
package probe

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single probe attempt.
const DefaultTimeout = 5 * time.Second

// Result is the outcome of one probe. Err is nil exactly when the service
// answered and reported itself healthy; Latency is the measured wall time
// for the attempt either way.
type Result struct {
	Latency time.Duration
	Err     error
}

// OK reports whether the probe succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Prober checks the remote service once. Implementations enforce their
// own per-attempt timeout and never panic; every failure mode comes back
// inside the Result.
type Prober interface {
	Probe(ctx context.Context) Result
}
