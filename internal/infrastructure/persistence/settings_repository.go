package persistence

import (
	"context"

	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindByTenant loads the tenant's settings row
func (r *GormSettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*settings.Settings, error) {
	var m models.SettingsModel
	if err := r.db.WithContext(ctx).Scopes(TenantScope(tenantID)).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// Save upserts the tenant's settings row
func (r *GormSettingsRepository) Save(ctx context.Context, s *settings.Settings) error {
	return r.db.WithContext(ctx).Save(models.SettingsModelFromDomain(s)).Error
}

var _ settings.Repository = (*GormSettingsRepository)(nil)
