package activity

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence for activities
type Repository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Activity, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Activity, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// FindUpcoming returns open activities due at or after now, soonest first
	FindUpcoming(ctx context.Context, tenantID uuid.UUID, now time.Time, limit int) ([]Activity, error)
	// FindOverdue returns open activities due before now
	FindOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time, filter shared.Filter) ([]Activity, error)
	CountOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error)
	FindByRelated(ctx context.Context, tenantID uuid.UUID, kind RelatedKind, id uuid.UUID, filter shared.Filter) ([]Activity, error)
	// FindRecent returns the most recently created activities
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Activity, error)
	Save(ctx context.Context, activity *Activity) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// DetachRelated clears references to a deleted record
	DetachRelated(ctx context.Context, tenantID uuid.UUID, kind RelatedKind, id uuid.UUID) error
}
