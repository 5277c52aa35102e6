// Package backoff holds the retry delay policy and the timer scheduling
// used for offline recovery.
package backoff

import (
	"math"
	"time"
)

// Policy defines capped exponential retry delays.
type Policy struct {
	Base time.Duration
	Max  time.Duration
}

// DefaultPolicy doubles from 5s and caps at 60s.
var DefaultPolicy = Policy{
	Base: 5 * time.Second,
	Max:  60 * time.Second,
}

// Delay returns the wait before retry number attempt (0-based), doubling
// from Base and clamped at Max. Negative attempts count as the first.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := float64(p.Base) * math.Pow(2, float64(attempt))
	if delay > float64(p.Max) {
		delay = float64(p.Max)
	}
	return time.Duration(delay)
}
