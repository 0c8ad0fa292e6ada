package event

import (
	"context"
	"errors"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []shared.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return p.err
}

type testAggregate struct {
	shared.TenantAggregateRoot
}

func newTestAggregate(eventTypes ...string) *testAggregate {
	agg := &testAggregate{TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New())}
	for _, et := range eventTypes {
		agg.AddDomainEvent(shared.NewBaseDomainEventPtr(et, "Test", agg.ID, agg.TenantID))
	}
	return agg
}

func TestDispatcher_Dispatch(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(pub)

	a := newTestAggregate("Created", "StageChanged")
	b := newTestAggregate("Updated")
	d.Dispatch(context.Background(), a, b)

	require.Len(t, pub.events, 3)
	assert.Equal(t, "Created", pub.events[0].EventType())
	assert.Equal(t, "Updated", pub.events[2].EventType())
	assert.Empty(t, a.GetDomainEvents())
	assert.Empty(t, b.GetDomainEvents())
}

func TestDispatcher_PublishErrorIsSwallowed(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus down")}
	d := NewDispatcher(pub)

	agg := newTestAggregate("Created")
	d.Dispatch(context.Background(), agg)

	assert.Len(t, pub.events, 1)
	assert.Empty(t, agg.GetDomainEvents())
}

func TestDispatcher_NilClearsEvents(t *testing.T) {
	var d *Dispatcher
	agg := newTestAggregate("Created")

	d.Dispatch(context.Background(), agg)
	assert.Empty(t, agg.GetDomainEvents())

	NewDispatcher(nil).Dispatch(context.Background(), newTestAggregate("Created"))
}
