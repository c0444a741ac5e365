package cache

import (
	"context"
	"sync"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
)

// lockEntry represents a held lock with its expiration
type lockEntry struct {
	expiresAt time.Time
}

// InMemoryRunLockStore implements RunLockStore using an in-memory map.
// This is suitable for single-instance deployments and testing; locks are
// not shared across processes.
type InMemoryRunLockStore struct {
	mu        sync.RWMutex
	locks     map[string]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryRunLockStore creates a new in-memory run lock store.
// It starts a background goroutine to clean up expired locks.
func NewInMemoryRunLockStore() *InMemoryRunLockStore {
	store := &InMemoryRunLockStore{
		locks:    make(map[string]lockEntry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Acquire attempts to take the named lock with a TTL.
// Returns true if the lock was newly acquired, false if it is already held.
func (s *InMemoryRunLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.locks[key]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil // Already held
		}
		// Lock exists but expired, will be overwritten
	}

	s.locks[key] = lockEntry{
		expiresAt: time.Now().Add(ttl),
	}

	return true, nil
}

// IsHeld checks whether the named lock is currently held
func (s *InMemoryRunLockStore) IsHeld(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.locks[key]
	if !exists {
		return false, nil
	}

	if time.Now().After(e.expiresAt) {
		return false, nil // Expired, treat as free
	}

	return true, nil
}

// Release releases the named lock before its TTL expires.
// Releasing a lock that is not held is not an error.
func (s *InMemoryRunLockStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (s *InMemoryRunLockStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired locks
func (s *InMemoryRunLockStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired locks from the store
func (s *InMemoryRunLockStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.locks {
		if now.After(e.expiresAt) {
			delete(s.locks, key)
		}
	}
}

// Size returns the number of locks in the store (for testing/monitoring)
func (s *InMemoryRunLockStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locks)
}

// Ensure InMemoryRunLockStore implements RunLockStore
var _ shared.RunLockStore = (*InMemoryRunLockStore)(nil)
