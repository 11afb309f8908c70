package separator

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
	"time"
)

const (
	maxRetries     = 3
	backoffStep    = 5 * time.Second
	backoffCeiling = 15 * time.Second
)

// backoff returns the linear wait before retry attempt n (1-based).
func backoff(attempt int) time.Duration {
	d := backoffStep * time.Duration(attempt)
	if d > backoffCeiling {
		return backoffCeiling
	}
	return d
}

var connectionHints = []string{
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"socket hang up",
	"econnreset",
	"econnrefused",
	"etimedout",
	"enotfound",
	"eai_again",
}

// IsConnectionError reports whether err is a transient network-layer failure
// worth retrying. Auth failures, rate limits, and malformed requests are not.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range connectionHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// wait sleeps for d or until the context is done.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
