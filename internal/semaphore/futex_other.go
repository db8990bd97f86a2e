//go:build !linux

package semaphore

import (
	"errors"
	"sync/atomic"
	"time"
)

var errFutexTimeout = errors.New("futex timeout")

const maxPollInterval = 10 * time.Millisecond

// futexWait polls *addr with exponential backoff until it differs from val
// or timeout elapses.
func futexWait(addr *uint32, val uint32, timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	interval := 50 * time.Microsecond
	for atomic.LoadUint32(addr) == val {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return errFutexTimeout
		}
		time.Sleep(interval)
		interval = min(interval*2, maxPollInterval)
	}
	return nil
}

// futexWake is a no-op; pollers notice the change on their own.
func futexWake(*uint32, int) (int, error) { return 0, nil }
