package partner

import (
	"context"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// References lists the repositories holding shallow references to partners.
// Deleting a company or contact clears those references.
type References struct {
	Leads         sales.LeadRepository
	Opportunities sales.OpportunityRepository
	Activities    activity.Repository
	Expenses      finance.ExpenseRepository
}

// CompanyService handles company-related business operations
type CompanyService struct {
	companyRepo partner.CompanyRepository
	contactRepo partner.ContactRepository
	refs        References
	events      *event.Dispatcher
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo partner.CompanyRepository, contactRepo partner.ContactRepository, refs References, events *event.Dispatcher) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		contactRepo: contactRepo,
		refs:        refs,
		events:      events,
	}
}

// Create creates a new company
func (s *CompanyService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	revenue := req.AnnualRevenue
	details := partner.CompanyDetails{
		Name:          req.Name,
		Industry:      req.Industry,
		Website:       req.Website,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		EmployeeCount: req.EmployeeCount,
		Notes:         req.Notes,
	}
	if revenue != nil {
		details.AnnualRevenue = *revenue
	}

	company, err := partner.NewCompany(tenantID, details)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		company.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, company)

	response := ToCompanyResponse(company)
	return &response, nil
}

// GetByID retrieves a company by ID
func (s *CompanyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Company")
	}
	response := ToCompanyResponse(company)
	return &response, nil
}

// List retrieves companies with filtering and pagination
func (s *CompanyService) List(ctx context.Context, tenantID uuid.UUID, filter CompanyListFilter) ([]CompanyResponse, int64, error) {
	domainFilter := filter.toDomain()

	companies, err := s.companyRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.companyRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CompanyResponse, len(companies))
	for i := range companies {
		responses[i] = ToCompanyResponse(&companies[i])
	}
	return responses, total, nil
}

// Update applies a partial update
func (s *CompanyService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Company")
	}

	if err := company.Update(req.applyTo(company.Details())); err != nil {
		return nil, err
	}
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, company)

	response := ToCompanyResponse(company)
	return &response, nil
}

// Delete removes a company. Contacts, leads, opportunities and activities
// that referenced it are kept with the reference cleared.
func (s *CompanyService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return shared.NamedNotFound(err, "Company")
	}

	if err := s.contactRepo.DetachCompany(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.refs.Leads.DetachCompany(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.refs.Opportunities.DetachCompany(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.refs.Activities.DetachRelated(ctx, tenantID, activity.RelatedCompany, id); err != nil {
		return err
	}
	if err := s.refs.Expenses.DetachCompany(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.companyRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Company")
	}

	s.events.Publish(ctx, partner.NewChangedEvent(partner.EventTypeCompanyDeleted, partner.AggregateTypeCompany, id, tenantID, company.Name))
	return nil
}

// ListContacts returns the contacts working for a company
func (s *CompanyService) ListContacts(ctx context.Context, tenantID, companyID uuid.UUID, filter ContactListFilter) ([]ContactResponse, int64, error) {
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, companyID)
	if err != nil {
		return nil, 0, shared.NamedNotFound(err, "Company")
	}

	filter.CompanyID = companyID.String()
	domainFilter := filter.toDomain()

	contacts, err := s.contactRepo.FindByCompany(ctx, tenantID, companyID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contactRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = ToContactResponse(&contacts[i])
		responses[i].CompanyName = company.Name
	}
	return responses, total, nil
}
