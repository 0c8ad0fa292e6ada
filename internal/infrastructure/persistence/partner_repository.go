package persistence

import (
	"context"
	"strings"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var companyQuery = listQuery{
	searchColumns: []string{"name", "industry", "email", "city", "country"},
	filterColumns: map[string]string{"industry": "industry", "city": "city", "country": "country"},
	sortFields:    CompanySortFields,
	defaultOrder:  "name ASC, id",
}

// GormCompanyRepository implements partner.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

func (r *GormCompanyRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CompanyModel{}).Scopes(TenantScope(tenantID))
}

// FindByIDForTenant finds a company by ID within a tenant
func (r *GormCompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Company, error) {
	var m models.CompanyModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByName finds a company by name, case-insensitively
func (r *GormCompanyRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Company, error) {
	var m models.CompanyModel
	if err := r.scoped(ctx, tenantID).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("created_at").
		First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs finds companies by ID; unknown IDs are ignored
func (r *GormCompanyRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Company, error) {
	if len(ids) == 0 {
		return []partner.Company{}, nil
	}
	var rows []models.CompanyModel
	if err := r.scoped(ctx, tenantID).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return companiesToDomain(rows), nil
}

// FindAllForTenant lists companies matching the filter
func (r *GormCompanyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Company, error) {
	var rows []models.CompanyModel
	if err := companyQuery.page(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return companiesToDomain(rows), nil
}

// CountForTenant counts companies matching the filter
func (r *GormCompanyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := companyQuery.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return r.db.WithContext(ctx).Save(models.CompanyModelFromDomain(company)).Error
}

// DeleteForTenant deletes a company within a tenant
func (r *GormCompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteForTenant(r.db.WithContext(ctx), &models.CompanyModel{}, tenantID, id)
}

func companiesToDomain(rows []models.CompanyModel) []partner.Company {
	out := make([]partner.Company, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var contactQuery = listQuery{
	searchColumns: []string{"first_name", "last_name", "email", "phone", "job_title"},
	filterColumns: map[string]string{"company_id": "company_id", "job_title": "job_title"},
	sortFields:    ContactSortFields,
	defaultOrder:  "last_name ASC, first_name ASC, id",
}

// GormContactRepository implements partner.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

func (r *GormContactRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ContactModel{}).Scopes(TenantScope(tenantID))
}

// FindByIDForTenant finds a contact by ID within a tenant
func (r *GormContactRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Contact, error) {
	var m models.ContactModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByEmail finds a contact by its (lower-cased) email
func (r *GormContactRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*partner.Contact, error) {
	email = shared.NormalizeEmail(email)
	if email == "" {
		return nil, shared.ErrNotFound
	}
	var m models.ContactModel
	if err := r.scoped(ctx, tenantID).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs finds contacts by ID; unknown IDs are ignored
func (r *GormContactRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Contact, error) {
	if len(ids) == 0 {
		return []partner.Contact{}, nil
	}
	var rows []models.ContactModel
	if err := r.scoped(ctx, tenantID).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return contactsToDomain(rows), nil
}

// FindByCompany lists the contacts working at a company
func (r *GormContactRepository) FindByCompany(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]partner.Contact, error) {
	var rows []models.ContactModel
	q := r.scoped(ctx, tenantID).Where("company_id = ?", companyID)
	if err := contactQuery.page(q, filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return contactsToDomain(rows), nil
}

// FindAllForTenant lists contacts matching the filter
func (r *GormContactRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Contact, error) {
	var rows []models.ContactModel
	if err := contactQuery.page(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return contactsToDomain(rows), nil
}

// CountForTenant counts contacts matching the filter
func (r *GormContactRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := contactQuery.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *partner.Contact) error {
	return r.db.WithContext(ctx).Save(models.ContactModelFromDomain(contact)).Error
}

// DeleteForTenant deletes a contact within a tenant
func (r *GormContactRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteForTenant(r.db.WithContext(ctx), &models.ContactModel{}, tenantID, id)
}

// DetachCompany clears company_id on every contact of the company
func (r *GormContactRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return r.scoped(ctx, tenantID).
		Where("company_id = ?", companyID).
		Update("company_id", nil).Error
}

func contactsToDomain(rows []models.ContactModel) []partner.Contact {
	out := make([]partner.Contact, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var competitorQuery = listQuery{
	searchColumns: []string{"name", "website", "strengths", "weaknesses"},
	filterColumns: map[string]string{"threat_level": "threat_level"},
	sortFields:    CompetitorSortFields,
	defaultOrder:  "name ASC, id",
}

// GormCompetitorRepository implements partner.CompetitorRepository using GORM
type GormCompetitorRepository struct {
	db *gorm.DB
}

// NewGormCompetitorRepository creates a new GormCompetitorRepository
func NewGormCompetitorRepository(db *gorm.DB) *GormCompetitorRepository {
	return &GormCompetitorRepository{db: db}
}

func (r *GormCompetitorRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.CompetitorModel{}).Scopes(TenantScope(tenantID))
}

// FindByIDForTenant finds a competitor by ID within a tenant
func (r *GormCompetitorRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Competitor, error) {
	var m models.CompetitorModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByName finds a competitor by name, case-insensitively
func (r *GormCompetitorRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Competitor, error) {
	var m models.CompetitorModel
	if err := r.scoped(ctx, tenantID).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindByIDs finds competitors by ID; unknown IDs are ignored
func (r *GormCompetitorRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Competitor, error) {
	if len(ids) == 0 {
		return []partner.Competitor{}, nil
	}
	var rows []models.CompetitorModel
	if err := r.scoped(ctx, tenantID).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return competitorsToDomain(rows), nil
}

// FindAllForTenant lists competitors matching the filter
func (r *GormCompetitorRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Competitor, error) {
	var rows []models.CompetitorModel
	if err := competitorQuery.page(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	return competitorsToDomain(rows), nil
}

// CountForTenant counts competitors matching the filter
func (r *GormCompetitorRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := competitorQuery.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates a competitor
func (r *GormCompetitorRepository) Save(ctx context.Context, competitor *partner.Competitor) error {
	return r.db.WithContext(ctx).Save(models.CompetitorModelFromDomain(competitor)).Error
}

// DeleteForTenant deletes a competitor and its opportunity links
func (r *GormCompetitorRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(TenantScope(tenantID)).
			Where("competitor_id = ?", id).
			Delete(&models.OpportunityCompetitorModel{}).Error; err != nil {
			return err
		}
		return deleteForTenant(tx, &models.CompetitorModel{}, tenantID, id)
	})
}

func competitorsToDomain(rows []models.CompetitorModel) []partner.Competitor {
	out := make([]partner.Competitor, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var (
	_ partner.CompanyRepository    = (*GormCompanyRepository)(nil)
	_ partner.ContactRepository    = (*GormContactRepository)(nil)
	_ partner.CompetitorRepository = (*GormCompetitorRepository)(nil)
)
