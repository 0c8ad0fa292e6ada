package persistence

import (
	"context"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var importHistoryQuery = listQuery{
	searchColumns: []string{"file_name"},
	filterColumns: map[string]string{"entity_type": "entity_type", "status": "status"},
	sortFields:    ImportHistorySortFields,
	defaultOrder:  "created_at DESC, id",
}

// GormImportHistoryRepository implements bulk.ImportHistoryRepository using GORM
type GormImportHistoryRepository struct {
	db *gorm.DB
}

// NewGormImportHistoryRepository creates a new GormImportHistoryRepository
func NewGormImportHistoryRepository(db *gorm.DB) *GormImportHistoryRepository {
	return &GormImportHistoryRepository{db: db}
}

func (r *GormImportHistoryRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ImportHistoryModel{}).Scopes(TenantScope(tenantID))
}

// FindByIDForTenant finds an import history by ID within a tenant
func (r *GormImportHistoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*bulk.ImportHistory, error) {
	var m models.ImportHistoryModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindAllForTenant lists import histories, newest first by default
func (r *GormImportHistoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]bulk.ImportHistory, error) {
	var rows []models.ImportHistoryModel
	if err := importHistoryQuery.page(r.scoped(ctx, tenantID), filter).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]bulk.ImportHistory, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// CountForTenant counts import histories matching the filter
func (r *GormImportHistoryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := importHistoryQuery.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// Save creates or updates an import history
func (r *GormImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	return r.db.WithContext(ctx).Save(models.ImportHistoryModelFromDomain(history)).Error
}

var _ bulk.ImportHistoryRepository = (*GormImportHistoryRepository)(nil)
