package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/finbook/backend/internal/domain/shared"
)

// CollectingHandler is a shared.EventHandler that records every event it
// receives. Subscribe it to a bus and use Wait to block until the expected
// deliveries arrive.
type CollectingHandler struct {
	mu     sync.Mutex
	types  []string
	events []shared.DomainEvent
	err    error
}

// NewCollectingHandler builds a handler subscribed to the given event types.
// With no types it receives every event.
func NewCollectingHandler(eventTypes ...string) *CollectingHandler {
	return &CollectingHandler{types: eventTypes}
}

// EventTypes returns the subscribed event types.
func (h *CollectingHandler) EventTypes() []string {
	return h.types
}

// Handle records the event and returns the configured failure, if any.
func (h *CollectingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

// Events returns a copy of everything received so far.
func (h *CollectingHandler) Events() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Count returns how many events have been received.
func (h *CollectingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// FailWith makes every following Handle call return err.
func (h *CollectingHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Wait polls until at least n events arrived or the timeout passes.
func (h *CollectingHandler) Wait(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if h.Count() >= n {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Reset drops recorded events and clears the configured failure.
func (h *CollectingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = nil
	h.err = nil
}

var _ shared.EventHandler = (*CollectingHandler)(nil)
