package sales

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/tests/testutil/mocks"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type salesFixture struct {
	leads       *mocks.LeadRepository
	opps        *mocks.OpportunityRepository
	activities  *mocks.ActivityRepository
	expenses    *mocks.ExpenseRepository
	settings    *mocks.SettingsRepository
	companies   *mocks.CompanyRepository
	contacts    *mocks.ContactRepository
	competitors *mocks.CompetitorRepository
	publisher   *mocks.EventPublisher
}

func newSalesFixture() *salesFixture {
	return &salesFixture{
		leads:       new(mocks.LeadRepository),
		opps:        new(mocks.OpportunityRepository),
		activities:  new(mocks.ActivityRepository),
		expenses:    new(mocks.ExpenseRepository),
		settings:    new(mocks.SettingsRepository),
		companies:   new(mocks.CompanyRepository),
		contacts:    new(mocks.ContactRepository),
		competitors: new(mocks.CompetitorRepository),
		publisher:   &mocks.EventPublisher{},
	}
}

func (f *salesFixture) partners() Partners {
	return Partners{Companies: f.companies, Contacts: f.contacts, Competitors: f.competitors}
}

func (f *salesFixture) leadService() *LeadService {
	return NewLeadService(f.leads, f.opps, f.activities, f.settings, f.partners(), event.NewDispatcher(f.publisher))
}

func (f *salesFixture) opportunityService() *OpportunityService {
	return NewOpportunityService(f.opps, f.activities, f.expenses, f.settings, f.partners(), event.NewDispatcher(f.publisher))
}

func mustLead(t *testing.T, tenantID uuid.UUID, name string, stage sales.Stage) *sales.Lead {
	t.Helper()
	lead, err := sales.NewLead(tenantID, sales.LeadDetails{Name: name, EstimatedValue: decimal.NewFromInt(1000)}, stage)
	require.NoError(t, err)
	lead.ClearDomainEvents()
	return lead
}

func mustOpportunity(t *testing.T, tenantID uuid.UUID, name string, stage sales.Stage, amount int64) *sales.Opportunity {
	t.Helper()
	opp, err := sales.NewOpportunity(tenantID, sales.OpportunityDetails{Name: name, Amount: decimal.NewFromInt(amount)}, stage)
	require.NoError(t, err)
	opp.ClearDomainEvents()
	return opp
}

func intPtr(i int) *int { return &i }

// =============================================================================
// LeadService
// =============================================================================

func TestLeadService_Create_UsesDefaultSourceAndAppends(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()

	prefs := settings.Default(tenantID)
	prefs.DefaultLeadSource = "referral"
	f.settings.On("FindByTenant", mock.Anything, tenantID).Return(prefs, nil)
	f.leads.On("NextPosition", mock.Anything, tenantID, sales.StageWarm).Return(4, nil)
	f.leads.On("Save", mock.Anything, mock.AnythingOfType("*sales.Lead")).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateLeadRequest{Name: "Website redesign", Status: "warm"})

	require.NoError(t, err)
	assert.Equal(t, "WARM", resp.Status)
	assert.Equal(t, "referral", resp.Source)
	assert.Equal(t, 4, resp.Position)
	assert.Equal(t, []string{sales.EventTypeLeadCreated}, f.publisher.Types())
}

func TestLeadService_Create_FallsBackToDefaultsWhenSettingsMissing(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()

	f.settings.On("FindByTenant", mock.Anything, tenantID).Return(nil, shared.ErrNotFound)
	f.leads.On("NextPosition", mock.Anything, tenantID, sales.StageCold).Return(0, nil)
	f.leads.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateLeadRequest{Name: "Inbound"})

	require.NoError(t, err)
	assert.Equal(t, "COLD", resp.Status)
	assert.Equal(t, "other", resp.Source)
}

func TestLeadService_Create_InvalidStage(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()

	_, err := svc.Create(context.Background(), uuid.New(), CreateLeadRequest{Name: "Inbound", Status: "LUKEWARM"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STAGE", domainErr.Code)
}

func TestLeadService_Create_UnknownCompany(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID, companyID := uuid.New(), uuid.New()

	f.companies.On("FindByIDForTenant", mock.Anything, tenantID, companyID).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(context.Background(), tenantID, CreateLeadRequest{Name: "Inbound", Source: "event", CompanyID: &companyID})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_COMPANY", domainErr.Code)
	f.leads.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLeadService_Move_ToLostWithReason(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()
	lead := mustLead(t, tenantID, "Stale lead", sales.StageHot)

	f.leads.On("FindByIDForTenant", mock.Anything, tenantID, lead.ID).Return(lead, nil)
	f.leads.On("SaveMove", mock.Anything, lead).Return(nil)

	resp, err := svc.Move(context.Background(), tenantID, lead.ID, MoveRequest{Stage: "lost", Position: intPtr(0), LostReason: "No budget"})

	require.NoError(t, err)
	assert.Equal(t, "LOST", resp.Status)
	assert.Equal(t, 0, resp.Position)
	assert.Equal(t, "No budget", resp.LostReason)
	assert.NotNil(t, resp.ClosedAt)
	assert.Equal(t, []string{sales.EventTypeStageChanged}, f.publisher.Types())
	f.leads.AssertNotCalled(t, "NextPosition", mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadService_Move_AppendsWhenNoPosition(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()
	lead := mustLead(t, tenantID, "Warm lead", sales.StageCold)

	f.leads.On("FindByIDForTenant", mock.Anything, tenantID, lead.ID).Return(lead, nil)
	f.leads.On("NextPosition", mock.Anything, tenantID, sales.StageWarm).Return(7, nil)
	f.leads.On("SaveMove", mock.Anything, lead).Return(nil)

	resp, err := svc.Move(context.Background(), tenantID, lead.ID, MoveRequest{Stage: "WARM"})

	require.NoError(t, err)
	assert.Equal(t, 7, resp.Position)
}

func TestLeadService_Move_SameStageReordersWithoutEvent(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()
	lead := mustLead(t, tenantID, "Warm lead", sales.StageWarm)

	f.leads.On("FindByIDForTenant", mock.Anything, tenantID, lead.ID).Return(lead, nil)
	f.leads.On("SaveMove", mock.Anything, lead).Return(nil)

	resp, err := svc.Move(context.Background(), tenantID, lead.ID, MoveRequest{Stage: "WARM", Position: intPtr(2)})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Position)
	assert.Empty(t, f.publisher.Events)
}

func TestLeadService_Convert(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()
	companyID := uuid.New()
	lead := mustLead(t, tenantID, "Big deal", sales.StageHot)
	lead.CompanyID = &companyID

	f.leads.On("FindByIDForTenant", mock.Anything, tenantID, lead.ID).Return(lead, nil)
	f.opps.On("NextPosition", mock.Anything, tenantID, sales.StageHot).Return(2, nil)
	f.opps.On("Save", mock.Anything, mock.AnythingOfType("*sales.Opportunity")).Return(nil)
	f.leads.On("Save", mock.Anything, lead).Return(nil)

	resp, err := svc.Convert(context.Background(), tenantID, lead.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, "HOT", resp.Opportunity.Stage)
	assert.Equal(t, 70, resp.Opportunity.Probability)
	assert.True(t, decimal.NewFromInt(1000).Equal(resp.Opportunity.Amount))
	assert.Equal(t, &companyID, resp.Opportunity.CompanyID)
	require.NotNil(t, resp.Opportunity.LeadID)
	assert.Equal(t, lead.ID, *resp.Opportunity.LeadID)

	assert.Equal(t, "WON", resp.Lead.Status)
	require.NotNil(t, resp.Lead.ConvertedOpportunityID)
	assert.Equal(t, resp.Opportunity.ID, *resp.Lead.ConvertedOpportunityID)
	assert.Equal(t, []string{
		sales.EventTypeOpportunityCreated,
		sales.EventTypeStageChanged,
		sales.EventTypeLeadConverted,
	}, f.publisher.Types())
}

func TestLeadService_Convert_ClosedLeadStartsCold(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()
	lead := mustLead(t, tenantID, "Revived", sales.StageLost)

	f.leads.On("FindByIDForTenant", mock.Anything, tenantID, lead.ID).Return(lead, nil)
	f.opps.On("NextPosition", mock.Anything, tenantID, sales.StageCold).Return(0, nil)
	f.opps.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.leads.On("Save", mock.Anything, lead).Return(nil)

	resp, err := svc.Convert(context.Background(), tenantID, lead.ID, nil)

	require.NoError(t, err)
	assert.Equal(t, "COLD", resp.Opportunity.Stage)
}

func TestLeadService_Convert_Twice(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()
	lead := mustLead(t, tenantID, "Done deal", sales.StageHot)
	require.NoError(t, lead.MarkConverted(uuid.New()))

	f.leads.On("FindByIDForTenant", mock.Anything, tenantID, lead.ID).Return(lead, nil)

	_, err := svc.Convert(context.Background(), tenantID, lead.ID, nil)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_CONVERTED", domainErr.Code)
	f.opps.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLeadService_Delete(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()
	lead := mustLead(t, tenantID, "Gone", sales.StageCold)

	f.leads.On("FindByIDForTenant", mock.Anything, tenantID, lead.ID).Return(lead, nil)
	f.activities.On("DetachRelated", mock.Anything, tenantID, activity.RelatedLead, lead.ID).Return(nil)
	f.leads.On("DeleteForTenant", mock.Anything, tenantID, lead.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), tenantID, lead.ID))
	assert.Equal(t, []string{sales.EventTypeLeadDeleted}, f.publisher.Types())
}

func TestLeadService_Board(t *testing.T) {
	f := newSalesFixture()
	svc := f.leadService()
	tenantID := uuid.New()

	a := mustLead(t, tenantID, "Alpha", sales.StageCold)
	a.SetPosition(1)
	b := mustLead(t, tenantID, "Bravo", sales.StageCold)
	b.SetPosition(0)
	c := mustLead(t, tenantID, "Charlie", sales.StageWon)

	prefs := settings.Default(tenantID)
	prefs.StageLabels = map[string]string{"COLD": "New"}
	f.settings.On("FindByTenant", mock.Anything, tenantID).Return(prefs, nil)
	f.leads.On("FindAllUnpaged", mock.Anything, tenantID, mock.MatchedBy(func(fl shared.Filter) bool {
		_, hasStatus := fl.Filters["status"]
		return !hasStatus
	})).Return([]sales.Lead{*a, *b, *c}, nil)

	board, err := svc.Board(context.Background(), tenantID, LeadListFilter{Status: "HOT"})

	require.NoError(t, err)
	require.Len(t, board.Columns, 5)
	assert.Equal(t, "COLD", board.Columns[0].Stage)
	assert.Equal(t, "New", board.Columns[0].Label)
	assert.Equal(t, "WARM", board.Columns[1].Label)
	assert.Equal(t, 2, board.Columns[0].Count)
	assert.Equal(t, "Bravo", board.Columns[0].Cards[0].Name)
	assert.Equal(t, "Alpha", board.Columns[0].Cards[1].Name)
	assert.Equal(t, 1, board.Columns[3].Count)
	assert.Equal(t, 3, board.Total)
	assert.True(t, decimal.NewFromInt(3000).Equal(board.Value))
}

// =============================================================================
// OpportunityService
// =============================================================================

func TestOpportunityService_Create(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID := uuid.New()
	competitorID := uuid.New()
	amount := decimal.NewFromInt(50000)

	competitor := partner.Competitor{}
	competitor.ID = competitorID
	f.competitors.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{competitorID}).Return([]partner.Competitor{competitor}, nil)
	f.opps.On("NextPosition", mock.Anything, tenantID, sales.StageWarm).Return(0, nil)
	f.opps.On("Save", mock.Anything, mock.AnythingOfType("*sales.Opportunity")).Return(nil)

	resp, err := svc.Create(context.Background(), tenantID, CreateOpportunityRequest{
		Name:          "ERP rollout",
		Stage:         "WARM",
		Amount:        &amount,
		CompetitorIDs: []uuid.UUID{competitorID, competitorID},
	})

	require.NoError(t, err)
	assert.Equal(t, 40, resp.Probability)
	assert.True(t, decimal.NewFromInt(20000).Equal(resp.WeightedAmount))
	assert.Equal(t, []uuid.UUID{competitorID}, resp.CompetitorIDs)
}

func TestOpportunityService_Create_UnknownCompetitor(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID := uuid.New()
	missing := uuid.New()

	f.competitors.On("FindByIDs", mock.Anything, tenantID, []uuid.UUID{missing}).Return([]partner.Competitor{}, nil)

	_, err := svc.Create(context.Background(), tenantID, CreateOpportunityRequest{Name: "ERP rollout", CompetitorIDs: []uuid.UUID{missing}})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_COMPETITOR", domainErr.Code)
}

func TestOpportunityService_Create_UnknownContact(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID, contactID := uuid.New(), uuid.New()

	f.contacts.On("FindByIDForTenant", mock.Anything, tenantID, contactID).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(context.Background(), tenantID, CreateOpportunityRequest{Name: "ERP rollout", ContactID: &contactID})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CONTACT", domainErr.Code)
}

func TestOpportunityService_Update_KeepsProbabilityUnlessGiven(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID := uuid.New()
	opp := mustOpportunity(t, tenantID, "Renewal", sales.StageHot, 1000)

	f.opps.On("FindByIDForTenant", mock.Anything, tenantID, opp.ID).Return(opp, nil)
	f.opps.On("Save", mock.Anything, opp).Return(nil)

	notes := "Decision maker changed"
	resp, err := svc.Update(context.Background(), tenantID, opp.ID, UpdateOpportunityRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 70, resp.Probability)

	resp, err = svc.Update(context.Background(), tenantID, opp.ID, UpdateOpportunityRequest{Probability: intPtr(85)})
	require.NoError(t, err)
	assert.Equal(t, 85, resp.Probability)
}

func TestOpportunityService_Move_ResetsProbability(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID := uuid.New()
	opp := mustOpportunity(t, tenantID, "Renewal", sales.StageCold, 1000)
	opp.Probability = 25

	f.opps.On("FindByIDForTenant", mock.Anything, tenantID, opp.ID).Return(opp, nil)
	f.opps.On("SaveMove", mock.Anything, opp).Return(nil)

	resp, err := svc.Move(context.Background(), tenantID, opp.ID, MoveRequest{Stage: "won", Position: intPtr(0)})

	require.NoError(t, err)
	assert.Equal(t, "WON", resp.Stage)
	assert.Equal(t, 100, resp.Probability)
	assert.NotNil(t, resp.ClosedAt)
	assert.Equal(t, []string{sales.EventTypeStageChanged}, f.publisher.Types())
}

func TestOpportunityService_Move_ReopenClearsClose(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID := uuid.New()
	opp := mustOpportunity(t, tenantID, "Lost cause", sales.StageCold, 1000)
	require.NoError(t, opp.MoveTo(sales.StageLost, 0, "Price"))
	opp.ClearDomainEvents()

	f.opps.On("FindByIDForTenant", mock.Anything, tenantID, opp.ID).Return(opp, nil)
	f.opps.On("SaveMove", mock.Anything, opp).Return(nil)

	resp, err := svc.Move(context.Background(), tenantID, opp.ID, MoveRequest{Stage: "HOT", Position: intPtr(0)})

	require.NoError(t, err)
	assert.Nil(t, resp.ClosedAt)
	assert.Empty(t, resp.LostReason)
}

func TestOpportunityService_Move_InvalidStage(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()

	_, err := svc.Move(context.Background(), uuid.New(), uuid.New(), MoveRequest{Stage: "closed"})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STAGE", domainErr.Code)
	f.opps.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpportunityService_Board(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID := uuid.New()

	a := mustOpportunity(t, tenantID, "Alpha", sales.StageHot, 100)
	b := mustOpportunity(t, tenantID, "Bravo", sales.StageHot, 250)

	f.settings.On("FindByTenant", mock.Anything, tenantID).Return(nil, shared.ErrNotFound)
	f.opps.On("FindAllUnpaged", mock.Anything, tenantID, mock.Anything).Return([]sales.Opportunity{*a, *b}, nil)

	board, err := svc.Board(context.Background(), tenantID, OpportunityListFilter{})

	require.NoError(t, err)
	assert.Equal(t, "opportunities", board.Entity)
	assert.Equal(t, 2, board.Columns[2].Count)
	assert.True(t, decimal.NewFromInt(350).Equal(board.Columns[2].Value))
	assert.Empty(t, board.Columns[0].Cards)
}

func TestOpportunityService_Delete_NotFound(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID, id := uuid.New(), uuid.New()

	f.opps.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, shared.ErrNotFound)

	err := svc.Delete(context.Background(), tenantID, id)
	assert.True(t, shared.IsNotFound(err))
}

func TestOpportunityService_Delete_UnlinksActivitiesAndExpenses(t *testing.T) {
	f := newSalesFixture()
	svc := f.opportunityService()
	tenantID := uuid.New()
	opp := mustOpportunity(t, tenantID, "Fleet renewal", sales.StageWarm, 500)

	f.opps.On("FindByIDForTenant", mock.Anything, tenantID, opp.ID).Return(opp, nil)
	f.activities.On("DetachRelated", mock.Anything, tenantID, activity.RelatedOpportunity, opp.ID).Return(nil)
	f.expenses.On("DetachOpportunity", mock.Anything, tenantID, opp.ID).Return(nil)
	f.opps.On("DeleteForTenant", mock.Anything, tenantID, opp.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), tenantID, opp.ID))

	f.activities.AssertExpectations(t)
	f.expenses.AssertExpectations(t)
	f.opps.AssertExpectations(t)
	assert.Equal(t, []string{sales.EventTypeOpportunityDeleted}, f.publisher.Types())
}
