package finance

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpenseRepository defines persistence for expenses
type ExpenseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Expense, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Expense, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// FindIncurredBetween returns every expense incurred in [from, to)
	FindIncurredBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]Expense, error)
	Save(ctx context.Context, expense *Expense) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
	// DetachCompany clears company_id on the company's expenses
	DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error
	// DetachOpportunity clears opportunity_id on the opportunity's expenses
	DetachOpportunity(ctx context.Context, tenantID, opportunityID uuid.UUID) error
}
