package mocks

import (
	"context"

	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// LeadRepository is a mock sales.LeadRepository
type LeadRepository struct {
	mock.Mock
}

func (m *LeadRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Lead), args.Error(1)
}

func (m *LeadRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*sales.Lead, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Lead), args.Error(1)
}

func (m *LeadRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*sales.Lead, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Lead), args.Error(1)
}

func (m *LeadRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Lead, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.Lead), args.Error(1)
}

func (m *LeadRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LeadRepository) FindAllUnpaged(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Lead, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.Lead), args.Error(1)
}

func (m *LeadRepository) NextPosition(ctx context.Context, tenantID uuid.UUID, stage sales.Stage) (int, error) {
	args := m.Called(ctx, tenantID, stage)
	return args.Int(0), args.Error(1)
}

func (m *LeadRepository) Save(ctx context.Context, lead *sales.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *LeadRepository) SaveMove(ctx context.Context, lead *sales.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *LeadRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *LeadRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID).Error(0)
}

func (m *LeadRepository) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	return m.Called(ctx, tenantID, contactID).Error(0)
}

// OpportunityRepository is a mock sales.OpportunityRepository
type OpportunityRepository struct {
	mock.Mock
}

func (m *OpportunityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Opportunity, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Opportunity), args.Error(1)
}

func (m *OpportunityRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*sales.Opportunity, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Opportunity), args.Error(1)
}

func (m *OpportunityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Opportunity, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.Opportunity), args.Error(1)
}

func (m *OpportunityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OpportunityRepository) FindAllUnpaged(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Opportunity, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]sales.Opportunity), args.Error(1)
}

func (m *OpportunityRepository) FindByCompetitor(ctx context.Context, tenantID, competitorID uuid.UUID) ([]sales.Opportunity, error) {
	args := m.Called(ctx, tenantID, competitorID)
	return args.Get(0).([]sales.Opportunity), args.Error(1)
}

func (m *OpportunityRepository) NextPosition(ctx context.Context, tenantID uuid.UUID, stage sales.Stage) (int, error) {
	args := m.Called(ctx, tenantID, stage)
	return args.Int(0), args.Error(1)
}

func (m *OpportunityRepository) Save(ctx context.Context, opportunity *sales.Opportunity) error {
	return m.Called(ctx, opportunity).Error(0)
}

func (m *OpportunityRepository) SaveMove(ctx context.Context, opportunity *sales.Opportunity) error {
	return m.Called(ctx, opportunity).Error(0)
}

func (m *OpportunityRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *OpportunityRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID).Error(0)
}

func (m *OpportunityRepository) DetachContact(ctx context.Context, tenantID, contactID uuid.UUID) error {
	return m.Called(ctx, tenantID, contactID).Error(0)
}

var (
	_ sales.LeadRepository        = (*LeadRepository)(nil)
	_ sales.OpportunityRepository = (*OpportunityRepository)(nil)
)
