package sales

import (
	"context"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Partners resolves the company and contact references of pipeline records
type Partners struct {
	Companies   partner.CompanyRepository
	Contacts    partner.ContactRepository
	Competitors partner.CompetitorRepository
}

// check verifies that referenced companies and contacts exist in the tenant
func (p Partners) check(ctx context.Context, tenantID uuid.UUID, companyID, contactID *uuid.UUID) error {
	if companyID != nil && *companyID != uuid.Nil {
		if _, err := p.Companies.FindByIDForTenant(ctx, tenantID, *companyID); err != nil {
			if shared.IsNotFound(err) {
				return shared.NewDomainError("INVALID_COMPANY", "Referenced company does not exist")
			}
			return err
		}
	}
	if contactID != nil && *contactID != uuid.Nil {
		if _, err := p.Contacts.FindByIDForTenant(ctx, tenantID, *contactID); err != nil {
			if shared.IsNotFound(err) {
				return shared.NewDomainError("INVALID_CONTACT", "Referenced contact does not exist")
			}
			return err
		}
	}
	return nil
}

// checkCompetitors verifies that every competitor id exists in the tenant
func (p Partners) checkCompetitors(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if id != uuid.Nil {
			wanted[id] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	unique := make([]uuid.UUID, 0, len(wanted))
	for id := range wanted {
		unique = append(unique, id)
	}
	found, err := p.Competitors.FindByIDs(ctx, tenantID, unique)
	if err != nil {
		return err
	}
	if len(found) != len(unique) {
		return shared.NewDomainError("INVALID_COMPETITOR", "One or more referenced competitors do not exist")
	}
	return nil
}
