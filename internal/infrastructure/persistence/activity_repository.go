package persistence

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var activityQuery = listQuery{
	searchColumns: []string{"subject", "description"},
	filterColumns: map[string]string{
		"type":           "type",
		"contact_id":     "contact_id",
		"company_id":     "company_id",
		"lead_id":        "lead_id",
		"opportunity_id": "opportunity_id",
	},
	sortFields:   ActivitySortFields,
	defaultOrder: "created_at DESC, id",
}

// GormActivityRepository implements activity.Repository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ActivityModel{}).Scopes(TenantScope(tenantID))
}

// where adds the "completed" filter on top of the column filters
func (r *GormActivityRepository) where(db *gorm.DB, filter shared.Filter) *gorm.DB {
	db = activityQuery.where(db, filter)
	switch v := filter.Filters["completed"].(type) {
	case bool:
		if v {
			db = db.Where("completed_at IS NOT NULL")
		} else {
			db = db.Where("completed_at IS NULL")
		}
	}
	return db
}

// FindByIDForTenant finds an activity by ID within a tenant
func (r *GormActivityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*activity.Activity, error) {
	var m models.ActivityModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindAllForTenant lists activities matching the filter
func (r *GormActivityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]activity.Activity, error) {
	return r.list(r.where(r.scoped(ctx, tenantID), filter), filter)
}

// CountForTenant counts activities matching the filter
func (r *GormActivityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// FindUpcoming returns open activities due at or after now, soonest first
func (r *GormActivityRepository) FindUpcoming(ctx context.Context, tenantID uuid.UUID, now time.Time, limit int) ([]activity.Activity, error) {
	var rows []models.ActivityModel
	q := r.scoped(ctx, tenantID).
		Where("completed_at IS NULL AND due_at IS NOT NULL AND due_at >= ?", now).
		Order("due_at ASC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return activitiesToDomain(rows), nil
}

func (r *GormActivityRepository) overdue(ctx context.Context, tenantID uuid.UUID, now time.Time) *gorm.DB {
	return r.scoped(ctx, tenantID).Where("completed_at IS NULL AND due_at IS NOT NULL AND due_at < ?", now)
}

// FindOverdue returns open activities due before now, most overdue first
func (r *GormActivityRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time, filter shared.Filter) ([]activity.Activity, error) {
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "due_at", "asc"
	}
	return r.list(r.where(r.overdue(ctx, tenantID, now), filter), filter)
}

// CountOverdue counts open activities due before now
func (r *GormActivityRepository) CountOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.overdue(ctx, tenantID, now).Count(&count).Error
	return count, err
}

// FindByRelated lists activities linked to a contact, company, lead or opportunity
func (r *GormActivityRepository) FindByRelated(ctx context.Context, tenantID uuid.UUID, kind activity.RelatedKind, id uuid.UUID, filter shared.Filter) ([]activity.Activity, error) {
	col, ok := models.RelatedColumn(kind)
	if !ok {
		return nil, shared.NewDomainError("INVALID_RELATED_KIND", "Unknown related record kind")
	}
	return r.list(r.where(r.scoped(ctx, tenantID).Where(col+" = ?", id), filter), filter)
}

// FindRecent returns the most recently created activities
func (r *GormActivityRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]activity.Activity, error) {
	var rows []models.ActivityModel
	q := r.scoped(ctx, tenantID).Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return activitiesToDomain(rows), nil
}

// Save creates or updates an activity
func (r *GormActivityRepository) Save(ctx context.Context, a *activity.Activity) error {
	return r.db.WithContext(ctx).Save(models.ActivityModelFromDomain(a)).Error
}

// DeleteForTenant deletes an activity within a tenant
func (r *GormActivityRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteForTenant(r.db.WithContext(ctx), &models.ActivityModel{}, tenantID, id)
}

// DetachRelated clears references to a deleted record
func (r *GormActivityRepository) DetachRelated(ctx context.Context, tenantID uuid.UUID, kind activity.RelatedKind, id uuid.UUID) error {
	col, ok := models.RelatedColumn(kind)
	if !ok {
		return shared.NewDomainError("INVALID_RELATED_KIND", "Unknown related record kind")
	}
	return r.scoped(ctx, tenantID).Where(col+" = ?", id).Update(col, nil).Error
}

func (r *GormActivityRepository) list(db *gorm.DB, filter shared.Filter) ([]activity.Activity, error) {
	var rows []models.ActivityModel
	db = activityQuery.order(db, filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		db = db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return activitiesToDomain(rows), nil
}

func activitiesToDomain(rows []models.ActivityModel) []activity.Activity {
	out := make([]activity.Activity, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ activity.Repository = (*GormActivityRepository)(nil)
