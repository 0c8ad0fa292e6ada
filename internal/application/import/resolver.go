package importapp

import (
	"context"
	"fmt"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/google/uuid"
)

// referenceResolver turns the names and emails in reference columns into
// ids of records that already exist in the tenant
type referenceResolver struct {
	tenantID uuid.UUID
	repos    Repositories
}

var _ dataimport.Resolver = referenceResolver{}

func (r referenceResolver) ResolveReference(ctx context.Context, kind dataimport.RefKind, key string) (uuid.UUID, bool, error) {
	var (
		id  uuid.UUID
		err error
	)
	switch kind {
	case dataimport.RefCompany:
		var c *partner.Company
		if c, err = r.repos.Companies.FindByName(ctx, r.tenantID, key); err == nil {
			id = c.ID
		}
	case dataimport.RefContact:
		var c *partner.Contact
		if c, err = r.repos.Contacts.FindByEmail(ctx, r.tenantID, shared.NormalizeEmail(key)); err == nil {
			id = c.ID
		}
	case dataimport.RefOpportunity:
		var o *sales.Opportunity
		if o, err = r.repos.Opportunities.FindByName(ctx, r.tenantID, key); err == nil {
			id = o.ID
		}
	default:
		return uuid.Nil, false, fmt.Errorf("unknown reference kind %q", kind)
	}

	if err != nil {
		if shared.IsNotFound(err) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	return id, true, nil
}
