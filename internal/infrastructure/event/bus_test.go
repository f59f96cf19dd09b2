package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent is a minimal DomainEvent for bus tests
type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New()),
	}
}

// countingHandler records the events it receives
type countingHandler struct {
	mu       sync.Mutex
	types    []string
	received []shared.DomainEvent
	fail     error
	panics   bool
}

func (h *countingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("boom")
	}
	h.mu.Lock()
	h.received = append(h.received, event)
	h.mu.Unlock()
	return h.fail
}

func (h *countingHandler) EventTypes() []string {
	return h.types
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.received)
}

func TestInMemoryEventBus_PublishSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to matching handlers only", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		created := &countingHandler{types: []string{"ObligationCreated"}}
		settled := &countingHandler{types: []string{"ObligationSettled"}}
		bus.Subscribe(created)
		bus.Subscribe(settled)

		require.NoError(t, bus.Publish(ctx, newTestEvent("ObligationCreated")))

		assert.Equal(t, 1, created.count())
		assert.Zero(t, settled.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		wildcard := &countingHandler{}
		bus.Subscribe(wildcard)

		require.NoError(t, bus.Publish(ctx,
			newTestEvent("ObligationCreated"),
			newTestEvent("SaleCancelled")))

		assert.Equal(t, 2, wildcard.count())
	})

	t.Run("handler error does not stop other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &countingHandler{types: []string{"SaleCreated"}, fail: errors.New("projection down")}
		healthy := &countingHandler{types: []string{"SaleCreated"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("SaleCreated")))
		assert.Equal(t, 1, healthy.count())
	})

	t.Run("handler panic is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &countingHandler{types: []string{"SaleCreated"}, panics: true}
		healthy := &countingHandler{types: []string{"SaleCreated"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NotPanics(t, func() {
			_ = bus.Publish(ctx, newTestEvent("SaleCreated"))
		})
		assert.Equal(t, 1, healthy.count())
	})

	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &countingHandler{types: []string{"SaleCreated"}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		require.NoError(t, bus.Publish(ctx, newTestEvent("SaleCreated")))
		assert.Zero(t, handler.count())
	})
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}
