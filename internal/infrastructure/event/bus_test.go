package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Lead", uuid.New(), uuid.New())}
}

type testHandler struct {
	eventTypes []string
	err        error
	mu         sync.Mutex
	handled    []shared.DomainEvent
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	created := &testHandler{eventTypes: []string{"LeadCreated"}}
	everything := &testHandler{}
	bus.Subscribe(created)
	bus.Subscribe(everything)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadCreated"), newTestEvent("LeadDeleted")))

	assert.Equal(t, 1, created.count())
	assert.Equal(t, 2, everything.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &testHandler{eventTypes: []string{"LeadCreated"}}
	bus.Subscribe(h, "LeadStageChanged")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadCreated")))
	assert.Zero(t, h.count())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("LeadStageChanged")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_FailuresAreIsolated(t *testing.T) {
	var results []error
	bus := NewInMemoryEventBus(zap.NewNop(), WithHandledHook(func(_ string, err error) {
		results = append(results, err)
	}))

	bus.Subscribe(&testHandler{err: errors.New("boom")})
	bus.Subscribe(HandlerFunc{Fn: func(context.Context, shared.DomainEvent) error { panic("handler bug") }})
	last := &testHandler{}
	bus.Subscribe(last)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("CompanyUpdated")))

	assert.Equal(t, 1, last.count())
	require.Len(t, results, 3)
	assert.EqualError(t, results[0], "boom")
	assert.ErrorContains(t, results[1], "handler panicked")
	assert.NoError(t, results[2])
}

func TestInMemoryEventBus_Lifecycle(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}
