package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vietddude/apiwatch/internal/core/domain"
)

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.FailureKind
	}{
		{"context deadline", context.DeadlineExceeded, domain.FailureTimeout},
		{"wrapped deadline", fmt.Errorf("health request: %w", context.DeadlineExceeded), domain.FailureTimeout},
		{"client timeout text", errors.New(`Get "http://localhost:8000/health": Client.Timeout exceeded while awaiting headers`), domain.FailureTimeout},
		{"connection refused", errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), domain.FailureNetwork},
		{"connection reset", errors.New("read tcp 127.0.0.1:51234: connection reset by peer"), domain.FailureNetwork},
		{"dns failure", errors.New("dial tcp: lookup predict.internal: no such host"), domain.FailureNetwork},
		{"truncated body", errors.New("read response: unexpected EOF"), domain.FailureNetwork},
		{"http 500", errors.New("health endpoint returned http 500: internal error"), domain.FailureServer},
		{"http 503", errors.New("health endpoint returned http 503: overloaded"), domain.FailureServer},
		{"reported degraded", errors.New(`service reported status "degraded": model reload in progress`), domain.FailureServer},
		{"undecodable payload", errors.New("parse health response: invalid character '<' looking for beginning of value"), domain.FailureValidation},
		{"unrecognized", errors.New("something odd happened"), domain.FailureValidation},
		{"grpc unavailable", status.Error(codes.Unavailable, "connection closing"), domain.FailureNetwork},
		{"grpc deadline", status.Error(codes.DeadlineExceeded, "deadline exceeded"), domain.FailureTimeout},
		{"grpc internal", status.Error(codes.Internal, "model crashed"), domain.FailureServer},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), domain.FailureServer},
		{"grpc unmatched code", status.Error(codes.InvalidArgument, "bad request shape"), domain.FailureValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, msg := Classify(tt.err)
			if kind != tt.want {
				t.Errorf("Classify(%v) kind = %s, want %s", tt.err, kind, tt.want)
			}
			if msg == "" {
				t.Error("expected a non-empty display message")
			}
		})
	}
}

func TestClassify_OrderedPrecedence(t *testing.T) {
	// Timeout wins over network when an error mentions both.
	err := errors.New("dial tcp 10.0.0.1:8000: i/o timeout")
	kind, _ := Classify(err)
	if kind != domain.FailureTimeout {
		t.Errorf("kind = %s, want %s", kind, domain.FailureTimeout)
	}
}

func TestClassify_Nil(t *testing.T) {
	kind, msg := Classify(nil)
	if kind != "" || msg != "" {
		t.Errorf("Classify(nil) = (%q, %q), want empty", kind, msg)
	}
}

func TestClassify_StableMessages(t *testing.T) {
	_, msg := Classify(errors.New("connection refused"))
	if msg != MsgNetwork {
		t.Errorf("message = %q, want %q", msg, MsgNetwork)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		kind domain.FailureKind
		want bool
	}{
		{domain.FailureTimeout, true},
		{domain.FailureNetwork, true},
		{domain.FailureServer, true},
		{domain.FailureValidation, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Retryable(tt.kind); got != tt.want {
			t.Errorf("Retryable(%s) = %t, want %t", tt.kind, got, tt.want)
		}
	}
}
