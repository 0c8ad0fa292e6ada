package persistence

import (
	"context"
	"strings"

	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var opportunityQuery = listQuery{
	searchColumns: []string{"name", "notes"},
	filterColumns: map[string]string{
		"stage":      "stage",
		"status":     "stage",
		"company_id": "company_id",
		"contact_id": "contact_id",
	},
	sortFields:   OpportunitySortFields,
	defaultOrder: "position ASC, created_at ASC, id",
}

// GormOpportunityRepository implements sales.OpportunityRepository using GORM.
// Competitor links live in opportunity_competitors and are always preloaded.
type GormOpportunityRepository struct {
	db *gorm.DB
}

// NewGormOpportunityRepository creates a new GormOpportunityRepository
func NewGormOpportunityRepository(db *gorm.DB) *GormOpportunityRepository {
	return &GormOpportunityRepository{db: db}
}

func (r *GormOpportunityRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.OpportunityModel{}).Scopes(TenantScope(tenantID))
}

// FindByIDForTenant finds an opportunity by ID within a tenant
func (r *GormOpportunityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Opportunity, error) {
	var m models.OpportunityModel
	if err := r.scoped(ctx, tenantID).Preload("Competitors").Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByName finds the oldest opportunity with the given name, case-insensitively
func (r *GormOpportunityRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*sales.Opportunity, error) {
	var m models.OpportunityModel
	if err := r.scoped(ctx, tenantID).Preload("Competitors").
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("created_at").
		First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindAllForTenant lists opportunities matching the filter
func (r *GormOpportunityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Opportunity, error) {
	var rows []models.OpportunityModel
	q := opportunityQuery.page(r.scoped(ctx, tenantID), filter).Preload("Competitors")
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return opportunitiesToDomain(rows), nil
}

// FindAllUnpaged returns every opportunity matching the filter
func (r *GormOpportunityRepository) FindAllUnpaged(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Opportunity, error) {
	var rows []models.OpportunityModel
	q := opportunityQuery.order(opportunityQuery.where(r.scoped(ctx, tenantID), filter), filter).Preload("Competitors")
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return opportunitiesToDomain(rows), nil
}

// FindByCompetitor lists the opportunities that reference a competitor
func (r *GormOpportunityRepository) FindByCompetitor(ctx context.Context, tenantID, competitorID uuid.UUID) ([]sales.Opportunity, error) {
	var rows []models.OpportunityModel
	err := r.scoped(ctx, tenantID).Preload("Competitors").
		Where("id IN (?)", r.db.WithContext(ctx).Model(&models.OpportunityCompetitorModel{}).
			Select("opportunity_id").
			Where("tenant_id = ? AND competitor_id = ?", tenantID, competitorID)).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return opportunitiesToDomain(rows), nil
}

// CountForTenant counts opportunities matching the filter
func (r *GormOpportunityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := opportunityQuery.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// NextPosition returns the position after the last opportunity in the stage
func (r *GormOpportunityRepository) NextPosition(ctx context.Context, tenantID uuid.UUID, stage sales.Stage) (int, error) {
	return nextPosition(r.scoped(ctx, tenantID).Where("stage = ?", stage))
}

// Save creates or updates an opportunity and replaces its competitor links
func (r *GormOpportunityRepository) Save(ctx context.Context, opportunity *sales.Opportunity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveOpportunity(tx, opportunity)
	})
}

// SaveMove shifts the cards at or after the opportunity's position and saves it
func (r *GormOpportunityRepository) SaveMove(ctx context.Context, opportunity *sales.Opportunity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := shiftPositions(tx.Model(&models.OpportunityModel{}).Scopes(TenantScope(opportunity.TenantID)).
			Where("stage = ?", opportunity.Stage), opportunity.ID, opportunity.Position); err != nil {
			return err
		}
		return saveOpportunity(tx, opportunity)
	})
}

func saveOpportunity(tx *gorm.DB, opportunity *sales.Opportunity) error {
	m := models.OpportunityModelFromDomain(opportunity)
	links := m.Competitors
	m.Competitors = nil
	if err := tx.Omit("Competitors").Save(m).Error; err != nil {
		return err
	}
	if err := tx.Where("opportunity_id = ?", m.ID).Delete(&models.OpportunityCompetitorModel{}).Error; err != nil {
		return err
	}
	if len(links) == 0 {
		return nil
	}
	return tx.Create(&links).Error
}

// DeleteForTenant deletes an opportunity and its competitor links
func (r *GormOpportunityRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(TenantScope(tenantID)).
			Where("opportunity_id = ?", id).
			Delete(&models.OpportunityCompetitorModel{}).Error; err != nil {
			return err
		}
		return deleteForTenant(tx, &models.OpportunityModel{}, tenantID, id)
	})
}

// DetachCompany clears company_id on the company's opportunities
func (r *GormOpportunityRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return r.scoped(ctx, tenantID).Where("company_id = ?", companyID).Update("company_id", nil).Error
}

// DetachContact clears contact_id on the contact's opportunities
func (r *GormOpportunityRepository) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	return r.scoped(ctx, tenantID).Where("contact_id = ?", contactID).Update("contact_id", nil).Error
}

func opportunitiesToDomain(rows []models.OpportunityModel) []sales.Opportunity {
	out := make([]sales.Opportunity, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ sales.OpportunityRepository = (*GormOpportunityRepository)(nil)
