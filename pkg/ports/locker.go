package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a run lock.
type UnlockFunc func(ctx context.Context) error

// RunLocker defines the interface for cross-process run coordination.
// It lets multiple processes share a state directory or Redis database
// without interleaving writes from concurrent runs.
type RunLocker interface {
	// Lock attempts to acquire a lock for the given key (e.g. the pipeline
	// name). It blocks until the lock is acquired or the context is
	// canceled. Returns an UnlockFunc that MUST be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
