package importapp

import (
	"context"

	"github.com/crm/backend/internal/domain/bulk"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeSkipped
	// outcomeConflict is a match under ConflictModeFail
	outcomeConflict
)

// run carries what every row of one execution shares
type run struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	entity   bulk.EntityType
	mode     bulk.ConflictMode
	prefs    *settings.Settings
}

// onConflict reports the outcome for a matching record, or false when the
// record should be overwritten
func (r *run) onConflict() (outcome, bool) {
	switch r.mode {
	case bulk.ConflictModeUpdate:
		return outcomeUpdated, false
	case bulk.ConflictModeFail:
		return outcomeConflict, true
	default:
		return outcomeSkipped, true
	}
}

func (r *run) stamp(agg interface{ SetCreatedBy(uuid.UUID) }) {
	if r.userID != uuid.Nil {
		agg.SetCreatedBy(r.userID)
	}
}

// importRecord writes one validated row
func (s *Service) importRecord(ctx context.Context, r *run, rec dataimport.Record) (outcome, error) {
	switch r.entity {
	case bulk.EntityCompanies:
		return s.importCompany(ctx, r, rec)
	case bulk.EntityContacts:
		return s.importContact(ctx, r, rec)
	case bulk.EntityCompetitors:
		return s.importCompetitor(ctx, r, rec)
	case bulk.EntityLeads:
		return s.importLead(ctx, r, rec)
	case bulk.EntityOpportunities:
		return s.importOpportunity(ctx, r, rec)
	case bulk.EntityExpenses:
		return s.importExpense(ctx, r, rec)
	}
	return 0, shared.NewDomainError("INVALID_ENTITY_TYPE", "Unknown import entity")
}

func (s *Service) importCompany(ctx context.Context, r *run, rec dataimport.Record) (outcome, error) {
	existing, err := lookup(s.repos.Companies.FindByName(ctx, r.tenantID, rec.String("name")))
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if o, done := r.onConflict(); done {
			return o, nil
		}
		if err := existing.Update(companyDetails(existing.Details(), rec)); err != nil {
			return 0, err
		}
		if err := s.repos.Companies.Save(ctx, existing); err != nil {
			return 0, err
		}
		s.events.Dispatch(ctx, existing)
		return outcomeUpdated, nil
	}

	company, err := partner.NewCompany(r.tenantID, companyDetails(partner.CompanyDetails{}, rec))
	if err != nil {
		return 0, err
	}
	r.stamp(company)
	if err := s.repos.Companies.Save(ctx, company); err != nil {
		return 0, err
	}
	s.events.Dispatch(ctx, company)
	return outcomeCreated, nil
}

func (s *Service) importContact(ctx context.Context, r *run, rec dataimport.Record) (outcome, error) {
	var existing *partner.Contact
	if email := rec.String("email"); email != "" {
		var err error
		if existing, err = lookup(s.repos.Contacts.FindByEmail(ctx, r.tenantID, email)); err != nil {
			return 0, err
		}
	}
	if existing != nil {
		if o, done := r.onConflict(); done {
			return o, nil
		}
		if err := existing.Update(contactDetails(existing.Details(), rec)); err != nil {
			return 0, err
		}
		if err := s.repos.Contacts.Save(ctx, existing); err != nil {
			return 0, err
		}
		s.events.Dispatch(ctx, existing)
		return outcomeUpdated, nil
	}

	contact, err := partner.NewContact(r.tenantID, contactDetails(partner.ContactDetails{}, rec))
	if err != nil {
		return 0, err
	}
	r.stamp(contact)
	if err := s.repos.Contacts.Save(ctx, contact); err != nil {
		return 0, err
	}
	s.events.Dispatch(ctx, contact)
	return outcomeCreated, nil
}

func (s *Service) importCompetitor(ctx context.Context, r *run, rec dataimport.Record) (outcome, error) {
	existing, err := lookup(s.repos.Competitors.FindByName(ctx, r.tenantID, rec.String("name")))
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if o, done := r.onConflict(); done {
			return o, nil
		}
		if err := existing.Update(competitorDetails(existing.Details(), rec)); err != nil {
			return 0, err
		}
		if err := s.repos.Competitors.Save(ctx, existing); err != nil {
			return 0, err
		}
		s.events.Dispatch(ctx, existing)
		return outcomeUpdated, nil
	}

	competitor, err := partner.NewCompetitor(r.tenantID, competitorDetails(partner.CompetitorDetails{}, rec))
	if err != nil {
		return 0, err
	}
	r.stamp(competitor)
	if err := s.repos.Competitors.Save(ctx, competitor); err != nil {
		return 0, err
	}
	s.events.Dispatch(ctx, competitor)
	return outcomeCreated, nil
}

// importLead matches on email, or on name for leads without one
func (s *Service) importLead(ctx context.Context, r *run, rec dataimport.Record) (outcome, error) {
	var (
		existing *sales.Lead
		err      error
	)
	if email := rec.String("email"); email != "" {
		existing, err = lookup(s.repos.Leads.FindByEmail(ctx, r.tenantID, email))
	} else {
		existing, err = lookup(s.repos.Leads.FindByName(ctx, r.tenantID, rec.String("name")))
	}
	if err != nil {
		return 0, err
	}

	if existing != nil {
		if o, done := r.onConflict(); done {
			return o, nil
		}
		if err := existing.Update(leadDetails(existing.Details(), rec)); err != nil {
			return 0, err
		}
		if rec.Has("status") {
			if err := s.moveLead(ctx, existing, sales.Stage(rec.String("status"))); err != nil {
				return 0, err
			}
		}
		if err := s.repos.Leads.Save(ctx, existing); err != nil {
			return 0, err
		}
		s.events.Dispatch(ctx, existing)
		return outcomeUpdated, nil
	}

	details := leadDetails(sales.LeadDetails{}, rec)
	if details.Source == "" {
		details.Source = sales.LeadSource(r.prefs.DefaultLeadSource)
	}
	lead, err := sales.NewLead(r.tenantID, details, sales.Stage(rec.String("status")))
	if err != nil {
		return 0, err
	}
	r.stamp(lead)
	position, err := s.repos.Leads.NextPosition(ctx, r.tenantID, lead.Stage)
	if err != nil {
		return 0, err
	}
	lead.SetPosition(position)
	if err := s.repos.Leads.Save(ctx, lead); err != nil {
		return 0, err
	}
	s.events.Dispatch(ctx, lead)
	return outcomeCreated, nil
}

func (s *Service) moveLead(ctx context.Context, lead *sales.Lead, stage sales.Stage) error {
	if lead.Stage == stage {
		return nil
	}
	position, err := s.repos.Leads.NextPosition(ctx, lead.TenantID, stage)
	if err != nil {
		return err
	}
	return lead.MoveTo(stage, position, "")
}

func (s *Service) importOpportunity(ctx context.Context, r *run, rec dataimport.Record) (outcome, error) {
	existing, err := lookup(s.repos.Opportunities.FindByName(ctx, r.tenantID, rec.String("name")))
	if err != nil {
		return 0, err
	}
	if existing != nil {
		if o, done := r.onConflict(); done {
			return o, nil
		}
		// the move resets probability, so it runs before mapped fields are applied
		if rec.Has("stage") {
			if err := s.moveOpportunity(ctx, existing, sales.Stage(rec.String("stage"))); err != nil {
				return 0, err
			}
		}
		if err := existing.Update(opportunityDetails(existing.Details(), rec)); err != nil {
			return 0, err
		}
		if err := s.repos.Opportunities.Save(ctx, existing); err != nil {
			return 0, err
		}
		s.events.Dispatch(ctx, existing)
		return outcomeUpdated, nil
	}

	opp, err := sales.NewOpportunity(r.tenantID, opportunityDetails(sales.OpportunityDetails{}, rec), sales.Stage(rec.String("stage")))
	if err != nil {
		return 0, err
	}
	r.stamp(opp)
	position, err := s.repos.Opportunities.NextPosition(ctx, r.tenantID, opp.Stage)
	if err != nil {
		return 0, err
	}
	opp.SetPosition(position)
	if err := s.repos.Opportunities.Save(ctx, opp); err != nil {
		return 0, err
	}
	s.events.Dispatch(ctx, opp)
	return outcomeCreated, nil
}

func (s *Service) moveOpportunity(ctx context.Context, opp *sales.Opportunity, stage sales.Stage) error {
	if opp.Stage == stage {
		return nil
	}
	position, err := s.repos.Opportunities.NextPosition(ctx, opp.TenantID, stage)
	if err != nil {
		return err
	}
	return opp.MoveTo(stage, position, "")
}

// importExpense always creates; expenses have no natural key
func (s *Service) importExpense(ctx context.Context, r *run, rec dataimport.Record) (outcome, error) {
	details := expenseDetails(finance.ExpenseDetails{}, rec)
	if details.Currency == "" {
		details.Currency = r.prefs.Currency
	}
	expense, err := finance.NewExpense(r.tenantID, details)
	if err != nil {
		return 0, err
	}
	r.stamp(expense)
	if err := s.repos.Expenses.Save(ctx, expense); err != nil {
		return 0, err
	}
	s.events.Dispatch(ctx, expense)
	return outcomeCreated, nil
}

// lookup turns a not-found result into a nil record
func lookup[T any](record *T, err error) (*T, error) {
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func companyDetails(d partner.CompanyDetails, rec dataimport.Record) partner.CompanyDetails {
	setString(&d.Name, rec, "name")
	setString(&d.Industry, rec, "industry")
	setString(&d.Website, rec, "website")
	setString(&d.Email, rec, "email")
	setString(&d.Phone, rec, "phone")
	setString(&d.Address, rec, "address")
	setString(&d.City, rec, "city")
	setString(&d.Country, rec, "country")
	if rec.Has("employee_count") {
		d.EmployeeCount = rec.Int("employee_count")
	}
	setDecimal(&d.AnnualRevenue, rec, "annual_revenue")
	setString(&d.Notes, rec, "notes")
	return d
}

func contactDetails(d partner.ContactDetails, rec dataimport.Record) partner.ContactDetails {
	setString(&d.FirstName, rec, "first_name")
	setString(&d.LastName, rec, "last_name")
	setString(&d.Email, rec, "email")
	setString(&d.Phone, rec, "phone")
	setString(&d.JobTitle, rec, "job_title")
	setRef(&d.CompanyID, rec, "company")
	setString(&d.Notes, rec, "notes")
	return d
}

func competitorDetails(d partner.CompetitorDetails, rec dataimport.Record) partner.CompetitorDetails {
	setString(&d.Name, rec, "name")
	setString(&d.Website, rec, "website")
	setString(&d.Strengths, rec, "strengths")
	setString(&d.Weaknesses, rec, "weaknesses")
	if rec.Has("threat_level") {
		d.ThreatLevel = partner.ThreatLevel(rec.String("threat_level"))
	}
	setString(&d.Notes, rec, "notes")
	return d
}

func leadDetails(d sales.LeadDetails, rec dataimport.Record) sales.LeadDetails {
	setString(&d.Name, rec, "name")
	setString(&d.ContactName, rec, "contact_name")
	setString(&d.Email, rec, "email")
	setString(&d.Phone, rec, "phone")
	setString(&d.CompanyName, rec, "company_name")
	if rec.Has("source") {
		d.Source = sales.LeadSource(rec.String("source"))
	}
	setDecimal(&d.EstimatedValue, rec, "estimated_value")
	setString(&d.Notes, rec, "notes")
	return d
}

func opportunityDetails(d sales.OpportunityDetails, rec dataimport.Record) sales.OpportunityDetails {
	setString(&d.Name, rec, "name")
	setRef(&d.CompanyID, rec, "company")
	setRef(&d.ContactID, rec, "contact")
	setDecimal(&d.Amount, rec, "amount")
	if p := rec.IntPtr("probability"); p != nil {
		d.Probability = p
	}
	if t, ok := rec.Time("expected_close_date"); ok {
		d.ExpectedCloseDate = &t
	}
	setString(&d.Notes, rec, "notes")
	return d
}

func expenseDetails(d finance.ExpenseDetails, rec dataimport.Record) finance.ExpenseDetails {
	if rec.Has("category") {
		d.Category = finance.ExpenseCategory(rec.String("category"))
	}
	setDecimal(&d.Amount, rec, "amount")
	setString(&d.Currency, rec, "currency")
	setString(&d.Description, rec, "description")
	setString(&d.Vendor, rec, "vendor")
	if t, ok := rec.Time("incurred_at"); ok {
		d.IncurredAt = t
	}
	setRef(&d.CompanyID, rec, "company")
	setRef(&d.OpportunityID, rec, "opportunity")
	return d
}

func setString(dst *string, rec dataimport.Record, name string) {
	if rec.Has(name) {
		*dst = rec.String(name)
	}
}

func setDecimal(dst *decimal.Decimal, rec dataimport.Record, name string) {
	if rec.Has(name) {
		*dst = rec.Decimal(name)
	}
}

func setRef(dst **uuid.UUID, rec dataimport.Record, name string) {
	if id := rec.Ref(name); id != nil {
		*dst = id
	}
}
