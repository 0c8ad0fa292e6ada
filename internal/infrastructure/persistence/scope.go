package persistence

import (
	"errors"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when a tenant-scoped query has no tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// TenantScope restricts a query to one tenant. A nil tenant poisons the
// statement instead of silently reading across tenants.
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where("tenant_id = ?", tenantID)
	}
}

// translateFirst maps gorm's not-found error to the domain sentinel
func translateFirst(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// deleteForTenant removes one row and reports ErrNotFound when nothing matched
func deleteForTenant(db *gorm.DB, model any, tenantID, id uuid.UUID) error {
	result := db.Scopes(TenantScope(tenantID)).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
