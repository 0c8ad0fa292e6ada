package mocks

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock activity.Repository
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*activity.Activity, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Activity), args.Error(1)
}

func (m *ActivityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]activity.Activity, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *ActivityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ActivityRepository) FindUpcoming(ctx context.Context, tenantID uuid.UUID, now time.Time, limit int) ([]activity.Activity, error) {
	args := m.Called(ctx, tenantID, now, limit)
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *ActivityRepository) FindOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time, filter shared.Filter) ([]activity.Activity, error) {
	args := m.Called(ctx, tenantID, now, filter)
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *ActivityRepository) CountOverdue(ctx context.Context, tenantID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, tenantID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ActivityRepository) FindByRelated(ctx context.Context, tenantID uuid.UUID, kind activity.RelatedKind, id uuid.UUID, filter shared.Filter) ([]activity.Activity, error) {
	args := m.Called(ctx, tenantID, kind, id, filter)
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *ActivityRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]activity.Activity, error) {
	args := m.Called(ctx, tenantID, limit)
	return args.Get(0).([]activity.Activity), args.Error(1)
}

func (m *ActivityRepository) Save(ctx context.Context, a *activity.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *ActivityRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *ActivityRepository) DetachRelated(ctx context.Context, tenantID uuid.UUID, kind activity.RelatedKind, id uuid.UUID) error {
	return m.Called(ctx, tenantID, kind, id).Error(0)
}

// ExpenseRepository is a mock finance.ExpenseRepository
type ExpenseRepository struct {
	mock.Mock
}

func (m *ExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Expense, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Expense), args.Error(1)
}

func (m *ExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.Expense, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *ExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ExpenseRepository) FindIncurredBetween(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]finance.Expense, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).([]finance.Expense), args.Error(1)
}

func (m *ExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *ExpenseRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *ExpenseRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID).Error(0)
}

func (m *ExpenseRepository) DetachOpportunity(ctx context.Context, tenantID, opportunityID uuid.UUID) error {
	return m.Called(ctx, tenantID, opportunityID).Error(0)
}

// SettingsRepository is a mock settings.Repository
type SettingsRepository struct {
	mock.Mock
}

func (m *SettingsRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*settings.Settings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settings.Settings), args.Error(1)
}

func (m *SettingsRepository) Save(ctx context.Context, s *settings.Settings) error {
	return m.Called(ctx, s).Error(0)
}

// UserRepository is a mock identity.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

// ImportHistoryRepository is a mock bulk.ImportHistoryRepository
type ImportHistoryRepository struct {
	mock.Mock
}

func (m *ImportHistoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*bulk.ImportHistory, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistory), args.Error(1)
}

func (m *ImportHistoryRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]bulk.ImportHistory, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]bulk.ImportHistory), args.Error(1)
}

func (m *ImportHistoryRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ImportHistoryRepository) Save(ctx context.Context, history *bulk.ImportHistory) error {
	return m.Called(ctx, history).Error(0)
}

// EventPublisher records published events
type EventPublisher struct {
	Events []shared.DomainEvent
	Err    error
}

func (p *EventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.Events = append(p.Events, events...)
	return p.Err
}

// Types returns the event types published so far, in order
func (p *EventPublisher) Types() []string {
	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.EventType()
	}
	return out
}

var (
	_ activity.Repository          = (*ActivityRepository)(nil)
	_ finance.ExpenseRepository    = (*ExpenseRepository)(nil)
	_ settings.Repository          = (*SettingsRepository)(nil)
	_ identity.UserRepository      = (*UserRepository)(nil)
	_ bulk.ImportHistoryRepository = (*ImportHistoryRepository)(nil)
	_ shared.EventPublisher        = (*EventPublisher)(nil)
)
