package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finbook/backend/internal/domain/ledger"
	"github.com/finbook/backend/internal/domain/shared"
	"github.com/finbook/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

// testHandler implements EventHandler with configurable failure modes
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicMsg   string
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func newTestBus() *InMemoryEventBus {
	return NewInMemoryEventBus(zap.NewNop())
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := newTestBus()
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	event := newTestEvent("TestEvent")
	require.NoError(t, bus.Publish(context.Background(), event))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, event, handled[0])
}

func TestInMemoryEventBus_PublishMultipleEvents(t *testing.T) {
	bus := newTestBus()
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	err := bus.Publish(context.Background(), newTestEvent("TestEvent"), newTestEvent("TestEvent"))

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
	assert.Equal(t, int64(2), bus.Stats().Published)
}

func TestInMemoryEventBus_PublishFansOut(t *testing.T) {
	bus := newTestBus()
	first := newTestHandler("TestEvent")
	second := newTestHandler("TestEvent")
	bus.Subscribe(first, "TestEvent")
	bus.Subscribe(second, "TestEvent")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))

	assert.Len(t, first.getHandled(), 1)
	assert.Len(t, second.getHandled(), 1)
}

func TestInMemoryEventBus_WildcardHandler(t *testing.T) {
	bus := newTestBus()
	wildcard := newTestHandler() // no event types means every event
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("AnyEventType")))

	assert.Len(t, wildcard.getHandled(), 1)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := newTestBus()
	failing := newTestHandler("TestEvent")
	failing.setError(errors.New("handler error"))
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(failing, "TestEvent")
	bus.Subscribe(healthy, "TestEvent")

	err := bus.Publish(context.Background(), newTestEvent("TestEvent"))

	require.NoError(t, err)
	assert.Len(t, failing.getHandled(), 1)
	assert.Len(t, healthy.getHandled(), 1)

	stats := bus.Stats()
	assert.Equal(t, int64(1), stats.Published)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestInMemoryEventBus_HandlerPanicIsContained(t *testing.T) {
	bus := newTestBus()
	panicking := newTestHandler("TestEvent")
	panicking.panicMsg = "boom"
	healthy := newTestHandler("TestEvent")
	bus.Subscribe(panicking, "TestEvent")
	bus.Subscribe(healthy, "TestEvent")

	err := bus.Publish(context.Background(), newTestEvent("TestEvent"))

	require.NoError(t, err)
	assert.Len(t, healthy.getHandled(), 1)
	assert.Equal(t, int64(1), bus.Stats().Failed)
}

func TestInMemoryEventBus_NoSubscribers(t *testing.T) {
	bus := newTestBus()
	handler := newTestHandler("OtherEvent")
	bus.Subscribe(handler, "OtherEvent")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))

	assert.Empty(t, handler.getHandled())
	// The event still counts as published even when nobody wanted it
	assert.Equal(t, int64(1), bus.Stats().Published)
}

func TestInMemoryEventBus_DeliversTransactionEvents(t *testing.T) {
	bus := newTestBus()
	handler := newTestHandler(ledger.EventTypeTransactionCreated)
	// Subscribe without explicit types; the handler declares its own
	bus.Subscribe(handler)

	tx, err := ledger.NewTransaction(
		"Mercado do bairro",
		valueobject.NewMoneyBRL(decimal.NewFromFloat(152.90)),
		ledger.TransactionTypeExpense,
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), tx.GetDomainEvents()...))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	created, ok := handled[0].(*ledger.TransactionCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, tx.ID, created.TransactionID)
	assert.Equal(t, ledger.EventTypeTransactionCreated, created.EventType())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := newTestBus()
	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
	require.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TestEvent")))
	assert.Len(t, handler.getHandled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := newTestBus()
	ctx := context.Background()

	require.NoError(t, bus.Start(ctx))

	handler := newTestHandler("TestEvent")
	bus.Subscribe(handler, "TestEvent")
	require.NoError(t, bus.Publish(ctx, newTestEvent("TestEvent")))
	assert.Len(t, handler.getHandled(), 1)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))
}

func TestInMemoryEventBus_StatsStartEmpty(t *testing.T) {
	bus := newTestBus()

	stats := bus.Stats()
	assert.Zero(t, stats.Published)
	assert.Zero(t, stats.Failed)
}
