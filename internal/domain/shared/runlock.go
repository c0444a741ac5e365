package shared

import (
	"context"
	"time"
)

// RunLockStore guards batch jobs against concurrent execution.
// A lock is a named key with a TTL; acquisition is atomic so two
// processes racing for the same key see exactly one winner.
type RunLockStore interface {
	// Acquire attempts to take the named lock with a TTL.
	// Returns true if the lock was newly acquired, false if it is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsHeld checks whether the named lock is currently held
	IsHeld(ctx context.Context, key string) (bool, error)

	// Release releases the named lock before its TTL expires
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// RunLockConfig holds configuration for batch run locking
type RunLockConfig struct {
	// TTL is the maximum time a run may hold the lock before it is
	// considered stale and reclaimable. Default: 2 hours.
	TTL time.Duration

	// Enabled determines whether run locking is enforced
	// Default: true
	Enabled bool
}

// DefaultRunLockConfig returns the default run lock configuration
func DefaultRunLockConfig() RunLockConfig {
	return RunLockConfig{
		TTL:     2 * time.Hour,
		Enabled: true,
	}
}
