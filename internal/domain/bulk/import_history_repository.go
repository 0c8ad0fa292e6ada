package bulk

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ImportHistoryRepository persists import history records
type ImportHistoryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ImportHistory, error)
	// FindAllForTenant supports the filters "entity_type" and "status"
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ImportHistory, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, history *ImportHistory) error
}
