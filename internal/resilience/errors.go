package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
)

// IsTimeout reports whether err is a timeout-class failure: the remote
// accepted the connection but did not answer within the allotted time.
// Timeout-class failures get a growing per-attempt timeout on retry;
// everything else is treated as a transport failure and backed off
// exponentially. The two policies must not be conflated.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Heuristics for errors wrapped by HTTP clients without a net.Error
	// in the chain.
	msg := strings.ToLower(err.Error())
	timeoutPatterns := []string{
		"context deadline exceeded",
		"timeout awaiting response headers",
		"i/o timeout",
		"tls handshake timeout",
	}
	for _, p := range timeoutPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
