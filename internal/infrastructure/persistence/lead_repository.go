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

var leadQuery = listQuery{
	searchColumns: []string{"name", "contact_name", "email", "company_name"},
	filterColumns: map[string]string{
		"status":     "status",
		"stage":      "status",
		"source":     "source",
		"company_id": "company_id",
		"contact_id": "contact_id",
	},
	sortFields:   LeadSortFields,
	defaultOrder: "position ASC, created_at ASC, id",
}

// GormLeadRepository implements sales.LeadRepository using GORM
type GormLeadRepository struct {
	db *gorm.DB
}

// NewGormLeadRepository creates a new GormLeadRepository
func NewGormLeadRepository(db *gorm.DB) *GormLeadRepository {
	return &GormLeadRepository{db: db}
}

func (r *GormLeadRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.LeadModel{}).Scopes(TenantScope(tenantID))
}

// FindByIDForTenant finds a lead by ID within a tenant
func (r *GormLeadRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Lead, error) {
	var m models.LeadModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByEmail finds the oldest lead with the given email
func (r *GormLeadRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*sales.Lead, error) {
	email = shared.NormalizeEmail(email)
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var m models.LeadModel
	if err := r.scoped(ctx, tenantID).Where("email = ?", email).Order("created_at").First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByName finds the oldest lead with the given name, case-insensitively
func (r *GormLeadRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*sales.Lead, error) {
	var m models.LeadModel
	if err := r.scoped(ctx, tenantID).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("created_at").
		First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindAllForTenant lists leads matching the filter
func (r *GormLeadRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Lead, error) {
	var rows []models.LeadModel
	if err := leadQuery.page(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return leadsToDomain(rows), nil
}

// FindAllUnpaged returns every lead matching the filter; used by the board and dashboard
func (r *GormLeadRepository) FindAllUnpaged(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Lead, error) {
	var rows []models.LeadModel
	q := leadQuery.order(leadQuery.where(r.scoped(ctx, tenantID), filter), filter)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return leadsToDomain(rows), nil
}

// CountForTenant counts leads matching the filter
func (r *GormLeadRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := leadQuery.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// NextPosition returns the position after the last lead in the stage
func (r *GormLeadRepository) NextPosition(ctx context.Context, tenantID uuid.UUID, stage sales.Stage) (int, error) {
	return nextPosition(r.scoped(ctx, tenantID).Where("status = ?", stage))
}

// Save creates or updates a lead
func (r *GormLeadRepository) Save(ctx context.Context, lead *sales.Lead) error {
	return r.db.WithContext(ctx).Save(models.LeadModelFromDomain(lead)).Error
}

// SaveMove shifts the cards at or after the lead's position down by one and saves the lead
func (r *GormLeadRepository) SaveMove(ctx context.Context, lead *sales.Lead) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := shiftPositions(tx.Model(&models.LeadModel{}).Scopes(TenantScope(lead.TenantID)).
			Where("status = ?", lead.Stage), lead.ID, lead.Position); err != nil {
			return err
		}
		return tx.Save(models.LeadModelFromDomain(lead)).Error
	})
}

// DeleteForTenant deletes a lead within a tenant
func (r *GormLeadRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteForTenant(r.db.WithContext(ctx), &models.LeadModel{}, tenantID, id)
}

// DetachCompany clears company_id on the company's leads
func (r *GormLeadRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return r.scoped(ctx, tenantID).Where("company_id = ?", companyID).Update("company_id", nil).Error
}

// DetachContact clears contact_id on the contact's leads
func (r *GormLeadRepository) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	return r.scoped(ctx, tenantID).Where("contact_id = ?", contactID).Update("contact_id", nil).Error
}

func leadsToDomain(rows []models.LeadModel) []sales.Lead {
	out := make([]sales.Lead, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// nextPosition returns MAX(position)+1 over the column, or 0 for an empty column
func nextPosition(column *gorm.DB) (int, error) {
	var max *int
	if err := column.Select("MAX(position)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// shiftPositions moves every other card at or after position one slot down
func shiftPositions(column *gorm.DB, self uuid.UUID, position int) error {
	return column.
		Where("position >= ? AND id <> ?", position, self).
		UpdateColumn("position", gorm.Expr("position + 1")).Error
}

var _ sales.LeadRepository = (*GormLeadRepository)(nil)
