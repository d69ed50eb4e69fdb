package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/erp/cashdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "CashClosing", uuid.New(), uuid.New())}
}

type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []string
	err        error
	panics     bool
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event.EventType())
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(nil)

	closings := &testHandler{eventTypes: []string{"CashClosingCreated"}}
	all := &testHandler{}
	bus.Subscribe(closings)
	bus.Subscribe(all)
	bus.Subscribe(closings) // duplicate registration is ignored

	require.NoError(t, bus.Publish(ctx,
		newTestEvent("CashClosingCreated"),
		newTestEvent("SettlementConfirmed"),
	))

	assert.Equal(t, []string{"CashClosingCreated"}, closings.seen())
	assert.Equal(t, []string{"CashClosingCreated", "SettlementConfirmed"}, all.seen())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &testHandler{eventTypes: []string{"A"}}
	bus.Subscribe(h, "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, []string{"B"}, h.seen())
}

func TestInMemoryEventBus_FailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &testHandler{eventTypes: []string{"E"}, err: errors.New("db down")}
	panicking := &testHandler{eventTypes: []string{"E"}, panics: true}
	healthy := &testHandler{eventTypes: []string{"E"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))
	assert.Equal(t, []string{"E"}, healthy.seen())
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	typed := &testHandler{eventTypes: []string{"E"}}
	wildcard := &testHandler{}
	bus.Subscribe(typed)
	bus.Subscribe(wildcard)

	bus.Unsubscribe(typed)
	bus.Unsubscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("E")))
	assert.Empty(t, typed.seen())
	assert.Empty(t, wildcard.seen())
	assert.Empty(t, bus.registry.HandlersFor("E"))
}
