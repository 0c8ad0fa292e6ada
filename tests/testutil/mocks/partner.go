// Package mocks holds testify mocks of the domain repository interfaces,
// shared by the application service tests.
package mocks

import (
	"context"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// CompanyRepository is a mock partner.CompanyRepository
type CompanyRepository struct {
	mock.Mock
}

func (m *CompanyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Company, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Company), args.Error(1)
}

func (m *CompanyRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Company, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Company), args.Error(1)
}

func (m *CompanyRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Company, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]partner.Company), args.Error(1)
}

func (m *CompanyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Company, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Company), args.Error(1)
}

func (m *CompanyRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *CompanyRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

// ContactRepository is a mock partner.ContactRepository
type ContactRepository struct {
	mock.Mock
}

func (m *ContactRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Contact, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Contact), args.Error(1)
}

func (m *ContactRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*partner.Contact, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Contact), args.Error(1)
}

func (m *ContactRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Contact, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]partner.Contact), args.Error(1)
}

func (m *ContactRepository) FindByCompany(ctx context.Context, tenantID, companyID uuid.UUID, filter shared.Filter) ([]partner.Contact, error) {
	args := m.Called(ctx, tenantID, companyID, filter)
	return args.Get(0).([]partner.Contact), args.Error(1)
}

func (m *ContactRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Contact, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Contact), args.Error(1)
}

func (m *ContactRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ContactRepository) Save(ctx context.Context, contact *partner.Contact) error {
	return m.Called(ctx, contact).Error(0)
}

func (m *ContactRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *ContactRepository) DetachCompany(ctx context.Context, tenantID, companyID uuid.UUID) error {
	return m.Called(ctx, tenantID, companyID).Error(0)
}

// CompetitorRepository is a mock partner.CompetitorRepository
type CompetitorRepository struct {
	mock.Mock
}

func (m *CompetitorRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Competitor, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Competitor), args.Error(1)
}

func (m *CompetitorRepository) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (*partner.Competitor, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Competitor), args.Error(1)
}

func (m *CompetitorRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]partner.Competitor, error) {
	args := m.Called(ctx, tenantID, ids)
	return args.Get(0).([]partner.Competitor), args.Error(1)
}

func (m *CompetitorRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Competitor, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Competitor), args.Error(1)
}

func (m *CompetitorRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CompetitorRepository) Save(ctx context.Context, competitor *partner.Competitor) error {
	return m.Called(ctx, competitor).Error(0)
}

func (m *CompetitorRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

var (
	_ partner.CompanyRepository    = (*CompanyRepository)(nil)
	_ partner.ContactRepository    = (*ContactRepository)(nil)
	_ partner.CompetitorRepository = (*CompetitorRepository)(nil)
)
