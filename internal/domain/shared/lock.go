package shared

import (
	"context"
	"time"
)

// RunLock provides mutual exclusion for long-running jobs that may be started
// from more than one process.
type RunLock interface {
	// Acquire tries to take the lock for ttl. It returns false without error
	// when another holder already owns it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release gives the lock back. Releasing a lock that is not held is a no-op.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the lock backend
	Close() error
}
