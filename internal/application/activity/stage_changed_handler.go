package activity

import (
	"context"
	"fmt"

	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StageChangedHandler records a note activity whenever a lead or
// opportunity moves to another kanban column
type StageChangedHandler struct {
	activityRepo activity.Repository
	logger       *zap.Logger
}

// NewStageChangedHandler creates a new StageChangedHandler
func NewStageChangedHandler(activityRepo activity.Repository, logger *zap.Logger) *StageChangedHandler {
	return &StageChangedHandler{activityRepo: activityRepo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StageChangedHandler) EventTypes() []string {
	return []string{sales.EventTypeStageChanged}
}

// Handle processes a StageChangedEvent
func (h *StageChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*sales.StageChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", sales.EventTypeStageChanged, event.EventType())
	}

	var kind activity.RelatedKind
	switch changed.AggregateType() {
	case sales.AggregateTypeLead:
		kind = activity.RelatedLead
	case sales.AggregateTypeOpportunity:
		kind = activity.RelatedOpportunity
	default:
		return fmt.Errorf("stage change on unsupported aggregate %q", changed.AggregateType())
	}

	note, err := activity.NewStageChangeNote(changed.TenantID(), kind, changed.AggregateID(), changed.Name, changed.From.String(), changed.To.String())
	if err != nil {
		return err
	}
	if err := h.activityRepo.Save(ctx, note); err != nil {
		return fmt.Errorf("save stage change note: %w", err)
	}

	h.logger.Debug("stage change recorded",
		zap.String("tenant_id", changed.TenantID().String()),
		zap.String("aggregate_type", changed.AggregateType()),
		zap.String("aggregate_id", changed.AggregateID().String()),
		zap.String("from", changed.From.String()),
		zap.String("to", changed.To.String()),
	)
	return nil
}

var _ shared.EventHandler = (*StageChangedHandler)(nil)
