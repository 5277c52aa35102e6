// Package classify maps probe and request errors to actionable failure
// kinds with display-ready messages.
package classify

import (
	"context"
	"errors"
	"net"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vietddude/apiwatch/internal/core/domain"
)

// Display messages per kind. The UI shows these verbatim; raw error
// detail goes to the logs instead.
const (
	MsgTimeout    = "The prediction service took too long to respond. It may be under heavy load."
	MsgNetwork    = "Cannot reach the prediction service. Check your network connection."
	MsgServer     = "The prediction service reported a problem on its end."
	MsgValidation = "The prediction service returned an unexpected response."
)

// Ordered before network: a slow dial often mentions both.
var timeoutMarkers = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
}

var networkMarkers = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"dial tcp",
	"broken pipe",
	"eof",
}

var serverMarkers = []string{
	"http 5",
	"internal server error",
	"service reported",
	"bad gateway",
	"service unavailable",
}

// Classify maps err to a failure kind and a display message. It is total:
// every non-nil error yields a non-empty kind, falling through to
// validation when nothing more specific matches.
func Classify(err error) (domain.FailureKind, string) {
	if err == nil {
		return "", ""
	}

	// Typed checks first, string matching as the fallback.
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FailureTimeout, MsgTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FailureTimeout, MsgTimeout
	}
	if st, ok := status.FromError(err); ok {
		if kind, msg, matched := classifyCode(st.Code()); matched {
			return kind, msg
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case containsAny(s, timeoutMarkers):
		return domain.FailureTimeout, MsgTimeout
	case containsAny(s, networkMarkers):
		return domain.FailureNetwork, MsgNetwork
	case containsAny(s, serverMarkers):
		return domain.FailureServer, MsgServer
	default:
		return domain.FailureValidation, MsgValidation
	}
}

// Retryable reports whether a failure of the given kind is worth an
// automatic retry. A broken response contract will not fix itself.
func Retryable(kind domain.FailureKind) bool {
	switch kind {
	case domain.FailureTimeout, domain.FailureNetwork, domain.FailureServer:
		return true
	default:
		return false
	}
}

func classifyCode(code codes.Code) (domain.FailureKind, string, bool) {
	switch code {
	case codes.DeadlineExceeded:
		return domain.FailureTimeout, MsgTimeout, true
	case codes.Unavailable, codes.Canceled:
		return domain.FailureNetwork, MsgNetwork, true
	case codes.Internal, codes.Unknown, codes.ResourceExhausted, codes.DataLoss:
		return domain.FailureServer, MsgServer, true
	default:
		return "", "", false
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
