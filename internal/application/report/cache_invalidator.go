package report

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CacheInvalidator drops a tenant's cached dashboards whenever one of its
// records changes
type CacheInvalidator struct {
	dashboards *DashboardService
	logger     *zap.Logger
}

var _ shared.EventHandler = (*CacheInvalidator)(nil)

// NewCacheInvalidator creates a new CacheInvalidator
func NewCacheInvalidator(dashboards *DashboardService, logger *zap.Logger) *CacheInvalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidator{dashboards: dashboards, logger: logger}
}

// EventTypes subscribes to every event
func (h *CacheInvalidator) EventTypes() []string { return nil }

// Handle invalidates the event tenant's dashboards
func (h *CacheInvalidator) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.dashboards.Invalidate(ctx, event.TenantID()); err != nil {
		return err
	}
	h.logger.Debug("dashboard cache invalidated",
		zap.String("tenant_id", event.TenantID().String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}
