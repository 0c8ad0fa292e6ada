package persistence

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var expenseQuery = listQuery{
	searchColumns: []string{"description", "vendor"},
	filterColumns: map[string]string{
		"category":       "category",
		"status":         "status",
		"company_id":     "company_id",
		"opportunity_id": "opportunity_id",
	},
	sortFields:   ExpenseSortFields,
	defaultOrder: "incurred_at DESC, id",
}

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

func (r *GormExpenseRepository) scoped(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ExpenseModel{}).Scopes(TenantScope(tenantID))
}

// where adds the incurred_at range filters ("from", "to") to the column filters
func (r *GormExpenseRepository) where(db *gorm.DB, filter shared.Filter) *gorm.DB {
	db = expenseQuery.where(db, filter)
	if from, ok := filter.Filters["from"].(time.Time); ok && !from.IsZero() {
		db = db.Where("incurred_at >= ?", from)
	}
	if to, ok := filter.Filters["to"].(time.Time); ok && !to.IsZero() {
		db = db.Where("incurred_at < ?", to)
	}
	return db
}

// FindByIDForTenant finds an expense by ID within a tenant
func (r *GormExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	var m models.ExpenseModel
	if err := r.scoped(ctx, tenantID).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateFirst(err)
	}
	return m.ToDomain(), nil
}

// FindAllForTenant lists expenses matching the filter
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	var rows []models.ExpenseModel
	db := expenseQuery.order(r.where(r.scoped(ctx, tenantID), filter), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		db = db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(rows), nil
}

// CountForTenant counts expenses matching the filter
func (r *GormExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	err := r.where(r.scoped(ctx, tenantID), filter).Count(&count).Error
	return count, err
}

// FindIncurredBetween returns every expense incurred in [from, to)
func (r *GormExpenseRepository) FindIncurredBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.Expense, error) {
	var rows []models.ExpenseModel
	if err := r.scoped(ctx, tenantID).
		Where("incurred_at >= ? AND incurred_at < ?", from, to).
		Order("incurred_at").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return expensesToDomain(rows), nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return r.db.WithContext(ctx).Save(models.ExpenseModelFromDomain(expense)).Error
}

// DeleteForTenant deletes an expense within a tenant
func (r *GormExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return deleteForTenant(r.db.WithContext(ctx), &models.ExpenseModel{}, tenantID, id)
}

// DetachCompany clears company_id on the company's expenses
func (r *GormExpenseRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return r.scoped(ctx, tenantID).Where("company_id = ?", companyID).Update("company_id", nil).Error
}

// DetachOpportunity clears opportunity_id on the opportunity's expenses
func (r *GormExpenseRepository) DetachOpportunity(ctx context.Context, tenantID, opportunityID uuid.UUID) error {
	return r.scoped(ctx, tenantID).Where("opportunity_id = ?", opportunityID).Update("opportunity_id", nil).Error
}

func expensesToDomain(rows []models.ExpenseModel) []finance.Expense {
	out := make([]finance.Expense, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
