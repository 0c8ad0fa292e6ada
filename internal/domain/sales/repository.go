package sales

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadRepository defines persistence for leads
type LeadRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Lead, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Lead, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Lead, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Lead, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// FindAllUnpaged returns every lead matching the filter, ignoring paging
	FindAllUnpaged(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Lead, error)
	// NextPosition returns the position after the last card in the stage
	NextPosition(ctx context.Context, tenantID uuid.UUID, stage Stage) (int, error)
	Save(ctx context.Context, lead *Lead) error
	// SaveMove shifts cards at or after the lead's position in its stage and saves the lead atomically
	SaveMove(ctx context.Context, lead *Lead) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error
	DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error
}

// OpportunityRepository defines persistence for opportunities
type OpportunityRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Opportunity, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Opportunity, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Opportunity, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	FindAllUnpaged(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Opportunity, error)
	FindByCompetitor(ctx context.Context, tenantID, competitorID uuid.UUID) ([]Opportunity, error)
	NextPosition(ctx context.Context, tenantID uuid.UUID, stage Stage) (int, error)
	Save(ctx context.Context, opportunity *Opportunity) error
	SaveMove(ctx context.Context, opportunity *Opportunity) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error
	DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error
}
