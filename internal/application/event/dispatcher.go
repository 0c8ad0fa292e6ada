// Package event hands the pending domain events of saved aggregates to the
// event bus.
package event

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Dispatcher publishes and clears aggregate events after a successful save.
// A nil Dispatcher or one without a publisher only clears them.
type Dispatcher struct {
	publisher shared.EventPublisher
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(publisher shared.EventPublisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

// Dispatch publishes the events of every aggregate, then clears them.
// Publishing errors are logged: the write has already been committed.
func (d *Dispatcher) Dispatch(ctx context.Context, aggregates ...shared.AggregateRoot) {
	for _, agg := range aggregates {
		if agg == nil {
			continue
		}
		d.Publish(ctx, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
}

// Publish publishes standalone events, such as deletions
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) {
	if d == nil || d.publisher == nil || len(events) == 0 {
		return
	}
	if err := d.publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
