// Package event provides the in-process domain event bus that connects
// application services to their event handlers.
package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/finbook/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers domain events to subscribed handlers on the
// publishing goroutine. A failing or panicking handler is logged and does
// not stop delivery to the others.
type InMemoryEventBus struct {
	registry  *HandlerRegistry
	logger    *zap.Logger
	published atomic.Int64
	failed    atomic.Int64
}

// BusStats summarizes delivery activity since the bus was created
type BusStats struct {
	Published int64
	Failed    int64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers each event to its subscribed handlers in order.
// Handler failures are logged, counted and swallowed.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		b.published.Add(1)

		handlers := b.registry.GetHandlers(event.EventType())
		if len(handlers) == 0 {
			b.logger.Debug("event has no subscribers",
				zap.String("event_type", event.EventType()),
			)
			continue
		}

		for _, handler := range handlers {
			if err := b.deliver(ctx, handler, event); err != nil {
				b.failed.Add(1)
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit event types the handler's
// own EventTypes declaration is used; an empty declaration subscribes it to
// every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)

	if len(eventTypes) == 0 {
		b.logger.Debug("handler subscribed to all events")
		return
	}
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start marks the bus ready. Delivery is synchronous, so there is nothing
// to spin up; this only reports the subscription count.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.logger.Info("event bus started",
		zap.Int("subscriptions", b.registry.Len()),
	)
	return nil
}

// Stop reports delivery totals. Synchronous delivery means no in-flight
// work can be pending here.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	stats := b.Stats()
	b.logger.Info("event bus stopped",
		zap.Int64("events_published", stats.Published),
		zap.Int64("deliveries_failed", stats.Failed),
	)
	return nil
}

// Stats returns delivery counters for observability and tests
func (b *InMemoryEventBus) Stats() BusStats {
	return BusStats{
		Published: b.published.Load(),
		Failed:    b.failed.Load(),
	}
}

// deliver hands one event to one handler, converting a panic into an error
// so Publish can report it like any other handler failure.
func (b *InMemoryEventBus) deliver(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
