package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/tests/testutil/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type partnerFixture struct {
	companies   *mocks.CompanyRepository
	contacts    *mocks.ContactRepository
	competitors *mocks.CompetitorRepository
	leads       *mocks.LeadRepository
	opps        *mocks.OpportunityRepository
	activities  *mocks.ActivityRepository
	expenses    *mocks.ExpenseRepository
	publisher   *mocks.EventPublisher
	refs        References
	events      *event.Dispatcher
}

func newPartnerFixture() *partnerFixture {
	f := &partnerFixture{
		companies:   new(mocks.CompanyRepository),
		contacts:    new(mocks.ContactRepository),
		competitors: new(mocks.CompetitorRepository),
		leads:       new(mocks.LeadRepository),
		opps:        new(mocks.OpportunityRepository),
		activities:  new(mocks.ActivityRepository),
		expenses:    new(mocks.ExpenseRepository),
		publisher:   &mocks.EventPublisher{},
	}
	f.refs = References{Leads: f.leads, Opportunities: f.opps, Activities: f.activities, Expenses: f.expenses}
	f.events = event.NewDispatcher(f.publisher)
	return f
}

func mustCompany(t *testing.T, tenantID uuid.UUID, name string) *partner.Company {
	t.Helper()
	c, err := partner.NewCompany(tenantID, partner.CompanyDetails{Name: name})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func mustContact(t *testing.T, tenantID uuid.UUID, email string, companyID *uuid.UUID) *partner.Contact {
	t.Helper()
	c, err := partner.NewContact(tenantID, partner.ContactDetails{FirstName: "Ada", LastName: "Lovelace", Email: email, CompanyID: companyID})
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

// =============================================================================
// CompanyService
// =============================================================================

func TestCompanyService_Create(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompanyService(f.companies, f.contacts, f.refs, f.events)
	tenantID := uuid.New()
	userID := uuid.New()
	revenue := decimal.NewFromInt(2500000)

	f.companies.On("Save", mock.Anything, mock.AnythingOfType("*partner.Company")).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateCompanyRequest{
		Name:          "  Initech  ",
		Industry:      "Software",
		EmployeeCount: 120,
		AnnualRevenue: &revenue,
		CreatedBy:     &userID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Initech", resp.Name)
	assert.Equal(t, tenantID, resp.TenantID)
	assert.True(t, revenue.Equal(resp.AnnualRevenue))
	assert.Equal(t, []string{partner.EventTypeCompanyCreated}, f.publisher.Types())
	f.companies.AssertExpectations(t)
}

func TestCompanyService_Create_ValidationError(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompanyService(f.companies, f.contacts, f.refs, f.events)

	_, err := svc.Create(context.Background(), uuid.New(), CreateCompanyRequest{Name: "A"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_NAME", domainErr.Code)
	f.companies.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCompanyService_Update_Partial(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompanyService(f.companies, f.contacts, f.refs, f.events)
	tenantID := uuid.New()
	company := mustCompany(t, tenantID, "Globex")
	company.City = "Springfield"

	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, company.ID).Return(company, nil)
	f.companies.On("Save", mock.Anything, company).Return(nil)

	industry := "Energy"
	resp, err := svc.Update(context.Background(), tenantID, company.ID, UpdateCompanyRequest{Industry: &industry})

	require.NoError(t, err)
	assert.Equal(t, "Globex", resp.Name)
	assert.Equal(t, "Energy", resp.Industry)
	assert.Equal(t, "Springfield", resp.City)
	assert.Equal(t, []string{partner.EventTypeCompanyUpdated}, f.publisher.Types())
}

func TestCompanyService_GetByID_NotFound(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompanyService(f.companies, f.contacts, f.refs, f.events)
	tenantID, id := uuid.New(), uuid.New()

	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

	_, err := svc.GetByID(context.Background(), tenantID, id)
	assert.True(t, shared.IsNotFound(err))
	assert.Contains(t, err.Error(), "Company")
}

func TestCompanyService_Delete_ClearsReferences(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompanyService(f.companies, f.contacts, f.refs, f.events)
	tenantID := uuid.New()
	company := mustCompany(t, tenantID, "Umbrella")

	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, company.ID).Return(company, nil)
	f.contacts.On("DetachCompany", mock.Anything, tenantID, company.ID).Return(nil)
	f.leads.On("DetachCompany", mock.Anything, tenantID, company.ID).Return(nil)
	f.opps.On("DetachCompany", mock.Anything, tenantID, company.ID).Return(nil)
	f.activities.On("DetachRelated", mock.Anything, tenantID, activity.RelatedCompany, company.ID).Return(nil)
	f.expenses.On("DetachCompany", mock.Anything, tenantID, company.ID).Return(nil)
	f.companies.On("DeleteForTenant", mock.Anything, tenantID, company.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), tenantID, company.ID))

	f.expenses.AssertExpectations(t)

	f.contacts.AssertExpectations(t)
	f.leads.AssertExpectations(t)
	f.opps.AssertExpectations(t)
	f.activities.AssertExpectations(t)
	f.companies.AssertExpectations(t)
	assert.Equal(t, []string{partner.EventTypeCompanyDeleted}, f.publisher.Types())
}

func TestCompanyService_Delete_StopsOnDetachError(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompanyService(f.companies, f.contacts, f.refs, f.events)
	tenantID := uuid.New()
	company := mustCompany(t, tenantID, "Umbrella")
	boom := errors.New("db down")

	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, company.ID).Return(company, nil)
	f.contacts.On("DetachCompany", mock.Anything, tenantID, company.ID).Return(boom)

	err := svc.Delete(context.Background(), tenantID, company.ID)
	assert.ErrorIs(t, err, boom)
	f.companies.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.publisher.Events)
}

func TestCompanyService_ListContacts(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompanyService(f.companies, f.contacts, f.refs, f.events)
	tenantID := uuid.New()
	company := mustCompany(t, tenantID, "Hooli")
	contact := mustContact(t, tenantID, "gavin@hooli.test", &company.ID)

	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, company.ID).Return(company, nil)
	f.contacts.On("FindByCompany", mock.Anything, tenantID, company.ID, mock.Anything).Return([]partner.Contact{*contact}, nil)
	f.contacts.On("CountForTenant", mock.Anything, tenantID, mock.MatchedBy(func(fl shared.Filter) bool {
		return fl.Filters["company_id"] == company.ID.String()
	})).Return(int64(1), nil)

	list, total, err := svc.ListContacts(context.Background(), tenantID, company.ID, ContactListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Hooli", list[0].CompanyName)
}

// =============================================================================
// ContactService
// =============================================================================

func TestContactService_Create(t *testing.T) {
	f := newPartnerFixture()
	svc := NewContactService(f.contacts, f.companies, f.refs, f.events)
	tenantID := uuid.New()
	company := mustCompany(t, tenantID, "Pied Piper")

	f.contacts.On("FindByEmail", mock.Anything, tenantID, "richard@piedpiper.test").Return(nil, shared.ErrNotFound)
	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, company.ID).Return(company, nil)
	f.contacts.On("Save", mock.Anything, mock.AnythingOfType("*partner.Contact")).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateContactRequest{
		FirstName: "Richard",
		LastName:  "Hendricks",
		Email:     "Richard@PiedPiper.test",
		CompanyID: &company.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "richard@piedpiper.test", resp.Email)
	assert.Equal(t, "Richard Hendricks", resp.FullName)
	assert.Equal(t, "Pied Piper", resp.CompanyName)
	assert.Equal(t, []string{partner.EventTypeContactCreated}, f.publisher.Types())
}

func TestContactService_Create_DuplicateEmail(t *testing.T) {
	f := newPartnerFixture()
	svc := NewContactService(f.contacts, f.companies, f.refs, f.events)
	tenantID := uuid.New()
	existing := mustContact(t, tenantID, "dup@example.com", nil)

	f.contacts.On("FindByEmail", mock.Anything, tenantID, "dup@example.com").Return(existing, nil)

	_, err := svc.Create(context.Background(), tenantID, CreateContactRequest{FirstName: "A", LastName: "B", Email: "dup@example.com"})

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	f.contacts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestContactService_Create_UnknownCompany(t *testing.T) {
	f := newPartnerFixture()
	svc := NewContactService(f.contacts, f.companies, f.refs, f.events)
	tenantID, companyID := uuid.New(), uuid.New()

	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, companyID).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(context.Background(), tenantID, CreateContactRequest{FirstName: "A", LastName: "B", CompanyID: &companyID})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_COMPANY", domainErr.Code)
}

func TestContactService_Update_KeepsOwnEmail(t *testing.T) {
	f := newPartnerFixture()
	svc := NewContactService(f.contacts, f.companies, f.refs, f.events)
	tenantID := uuid.New()
	contact := mustContact(t, tenantID, "same@example.com", nil)

	f.contacts.On("FindByIDForTenant", mock.Anything, tenantID, contact.ID).Return(contact, nil)
	f.contacts.On("FindByEmail", mock.Anything, tenantID, "same@example.com").Return(contact, nil)
	f.contacts.On("Save", mock.Anything, contact).Return(nil)

	title := "CTO"
	resp, err := svc.Update(context.Background(), tenantID, contact.ID, UpdateContactRequest{JobTitle: &title})

	require.NoError(t, err)
	assert.Equal(t, "CTO", resp.JobTitle)
}

func TestContactService_Update_DetachCompany(t *testing.T) {
	f := newPartnerFixture()
	svc := NewContactService(f.contacts, f.companies, f.refs, f.events)
	tenantID := uuid.New()
	companyID := uuid.New()
	contact := mustContact(t, tenantID, "", &companyID)

	f.contacts.On("FindByIDForTenant", mock.Anything, tenantID, contact.ID).Return(contact, nil)
	f.contacts.On("Save", mock.Anything, contact).Return(nil)

	zero := uuid.Nil
	resp, err := svc.Update(context.Background(), tenantID, contact.ID, UpdateContactRequest{CompanyID: &zero})

	require.NoError(t, err)
	assert.Nil(t, resp.CompanyID)
}

func TestContactService_List_FillsCompanyNames(t *testing.T) {
	f := newPartnerFixture()
	svc := NewContactService(f.contacts, f.companies, f.refs, f.events)
	tenantID := uuid.New()
	company := mustCompany(t, tenantID, "Vandelay Industries")
	a := mustContact(t, tenantID, "a@example.com", &company.ID)
	b := mustContact(t, tenantID, "b@example.com", &company.ID)
	c := mustContact(t, tenantID, "c@example.com", nil)

	f.contacts.On("FindAllForTenant", mock.Anything, tenantID, mock.Anything).Return([]partner.Contact{*a, *b, *c}, nil)
	f.contacts.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(3), nil)
	f.companies.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{company.ID}).Return([]partner.Company{*company}, nil)

	list, total, err := svc.List(context.Background(), tenantID, ContactListFilter{Page: 1, PageSize: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "Vandelay Industries", list[0].CompanyName)
	assert.Equal(t, "Vandelay Industries", list[1].CompanyName)
	assert.Empty(t, list[2].CompanyName)
}

func TestContactService_Delete(t *testing.T) {
	f := newPartnerFixture()
	svc := NewContactService(f.contacts, f.companies, f.refs, f.events)
	tenantID := uuid.New()
	contact := mustContact(t, tenantID, "", nil)

	f.contacts.On("FindByIDForTenant", mock.Anything, tenantID, contact.ID).Return(contact, nil)
	f.leads.On("DetachContact", mock.Anything, tenantID, contact.ID).Return(nil)
	f.opps.On("DetachContact", mock.Anything, tenantID, contact.ID).Return(nil)
	f.activities.On("DetachRelated", mock.Anything, tenantID, activity.RelatedContact, contact.ID).Return(nil)
	f.contacts.On("DeleteForTenant", mock.Anything, tenantID, contact.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), tenantID, contact.ID))
	assert.Equal(t, []string{partner.EventTypeContactDeleted}, f.publisher.Types())
}

// =============================================================================
// CompetitorService
// =============================================================================

func TestCompetitorService_Create(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompetitorService(f.competitors, f.events)
	tenantID := uuid.New()

	f.competitors.On("FindByName", mock.Anything, tenantID, "Acme").Return(nil, shared.ErrNotFound)
	f.competitors.On("Save", mock.Anything, mock.AnythingOfType("*partner.Competitor")).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateCompetitorRequest{Name: "Acme"})

	require.NoError(t, err)
	assert.Equal(t, "medium", resp.ThreatLevel)
}

func TestCompetitorService_Create_DuplicateName(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompetitorService(f.competitors, f.events)
	tenantID := uuid.New()
	existing, err := partner.NewCompetitor(tenantID, partner.CompetitorDetails{Name: "Acme"})
	require.NoError(t, err)

	f.competitors.On("FindByName", mock.Anything, tenantID, "Acme").Return(existing, nil)

	_, err = svc.Create(context.Background(), tenantID, CreateCompetitorRequest{Name: "Acme", ThreatLevel: "high"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCompetitorService_Update_ThreatLevel(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompetitorService(f.competitors, f.events)
	tenantID := uuid.New()
	competitor, err := partner.NewCompetitor(tenantID, partner.CompetitorDetails{Name: "Acme"})
	require.NoError(t, err)

	f.competitors.On("FindByIDForTenant", mock.Anything, tenantID, competitor.ID).Return(competitor, nil)
	f.competitors.On("FindByName", mock.Anything, tenantID, "Acme").Return(competitor, nil)
	f.competitors.On("Save", mock.Anything, competitor).Return(nil)

	high := "high"
	resp, err := svc.Update(context.Background(), tenantID, competitor.ID, UpdateCompetitorRequest{ThreatLevel: &high})

	require.NoError(t, err)
	assert.Equal(t, "high", resp.ThreatLevel)
}

func TestCompetitorService_Delete_NotFound(t *testing.T) {
	f := newPartnerFixture()
	svc := NewCompetitorService(f.competitors, f.events)
	tenantID, id := uuid.New(), uuid.New()

	f.competitors.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

	err := svc.Delete(context.Background(), tenantID, id)
	assert.True(t, shared.IsNotFound(err))
}
