package domain

import (
	"fmt"
	"time"
)

// FailureKind buckets a probe failure into an actionable category.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureNetwork    FailureKind = "network"
	FailureServer     FailureKind = "server"
	FailureValidation FailureKind = "validation"
)

// FailureThreshold is the consecutive-failure count at which the
// service counts as failing and recovery retries arm.
const FailureThreshold = 3

// Quality grades the latency of the last successful probe.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
	QualityUnknown   Quality = "unknown"
)

// Status is the authoritative health record for the prediction service.
// Nullable fields are pointers; ErrorKind is set exactly when Error is.
type Status struct {
	Online              bool        `json:"online"`
	Checking            bool        `json:"checking"`
	Retrying            bool        `json:"retrying"`
	Error               string      `json:"error,omitempty"`
	ErrorKind           FailureKind `json:"error_kind,omitempty"`
	ResponseTimeMS      *int64      `json:"response_time_ms,omitempty"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	RetryCount          int         `json:"retry_count"`
	LastCheckedAt       *time.Time  `json:"last_checked_at,omitempty"`
	LastSuccessAt       *time.Time  `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time  `json:"last_failure_at,omitempty"`
	NextRetryAt         *time.Time  `json:"next_retry_at,omitempty"`
}

// Quality returns the latency grade of the last successful probe.
func (s Status) Quality() Quality {
	if s.ResponseTimeMS == nil {
		return QualityUnknown
	}
	ms := *s.ResponseTimeMS
	switch {
	case ms < 500:
		return QualityExcellent
	case ms < 1000:
		return QualityGood
	case ms < 2000:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Failing reports whether the failure streak has reached the retry
// threshold.
func (s Status) Failing() bool {
	return s.ConsecutiveFailures >= FailureThreshold
}

// Summary is a display-ready rendering of a Status. Color and Icon are
// stable tokens for UIs, not terminal escapes.
type Summary struct {
	State   string `json:"state"`
	Message string `json:"message"`
	Color   string `json:"color"`
	Icon    string `json:"icon"`
}

// Summary renders the record into a single displayable line.
func (s Status) Summary() Summary {
	switch {
	case s.Checking:
		return Summary{
			State:   "checking",
			Message: "Checking service availability...",
			Color:   "blue",
			Icon:    "loader",
		}
	case s.Retrying:
		return Summary{
			State:   "retrying",
			Message: "Service offline, retry scheduled",
			Color:   "amber",
			Icon:    "clock",
		}
	case !s.Online:
		msg := s.Error
		if msg == "" {
			msg = "Service is offline"
		}
		return Summary{
			State:   "offline",
			Message: msg,
			Color:   "red",
			Icon:    "alert-triangle",
		}
	default:
		return Summary{
			State:   "online",
			Message: "Service is online",
			Color:   "green",
			Icon:    "check-circle",
		}
	}
}

// LastCheckedDisplay returns a human-readable age for the last probe.
func (s Status) LastCheckedDisplay(now time.Time) string {
	if s.LastCheckedAt == nil {
		return "never"
	}
	return relativeAge(now.Sub(*s.LastCheckedAt))
}

// SinceLastSuccess returns a human-readable age for the last success.
func (s Status) SinceLastSuccess(now time.Time) string {
	if s.LastSuccessAt == nil {
		return "never"
	}
	return relativeAge(now.Sub(*s.LastSuccessAt))
}

func relativeAge(d time.Duration) string {
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
