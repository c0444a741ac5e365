package shared

import "context"

// EventHandler reacts to domain events of the types it declares.
type EventHandler interface {
	// Handle processes one event. Returning an error does not stop delivery
	// to other handlers; the bus logs it and moves on.
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes names the event types this handler wants. Empty means all.
	EventTypes() []string
}

// EventPublisher is the write side of the bus. Application services publish
// an aggregate's buffered events through this after a successful write.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber is the registration side of the bus.
type EventSubscriber interface {
	// Subscribe registers a handler, optionally narrowing it to the given
	// event types instead of the ones the handler itself declares.
	Subscribe(handler EventHandler, eventTypes ...string)
	// Unsubscribe removes a handler from every type it was registered for.
	Unsubscribe(handler EventHandler)
}

// EventBus is a publisher and subscriber with a lifecycle.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
