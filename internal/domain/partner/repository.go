package partner

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompanyRepository defines persistence for companies
type CompanyRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Company, error)
	// FindByName matches case-insensitively
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Company, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Company, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Company, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, company *Company) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ContactRepository defines persistence for contacts
type ContactRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contact, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Contact, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Contact, error)
	FindByCompany(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]Contact, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Contact, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, contact *Contact) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// DetachCompany clears company_id on every contact of the company
	DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error
}

// CompetitorRepository defines persistence for competitors
type CompetitorRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Competitor, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*Competitor, error)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Competitor, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Competitor, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, competitor *Competitor) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
