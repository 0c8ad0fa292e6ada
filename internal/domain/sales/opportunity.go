package sales

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Opportunity is a qualified deal on the opportunity board
type Opportunity struct {
	shared.TenantAggregateRoot
	Card
	Name              string
	CompanyID         *uuid.UUID
	ContactID         *uuid.UUID
	LeadID            *uuid.UUID
	Amount            decimal.Decimal
	Probability       int
	ExpectedCloseDate *time.Time
	CompetitorIDs     []uuid.UUID
	Notes             string
}

// OpportunityDetails carries the editable opportunity fields.
// A nil Probability keeps the stage default.
type OpportunityDetails struct {
	Name              string
	CompanyID         *uuid.UUID
	ContactID         *uuid.UUID
	Amount            decimal.Decimal
	Probability       *int
	ExpectedCloseDate *time.Time
	CompetitorIDs     []uuid.UUID
	Notes             string
}

// NewOpportunity creates an opportunity in the given stage (Cold when empty)
func NewOpportunity(tenantID uuid.UUID, details OpportunityDetails, stage Stage) (*Opportunity, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}
	card, err := newCard(stage, time.Now())
	if err != nil {
		return nil, err
	}

	opp := &Opportunity{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Card:                card,
		Probability:         card.Stage.DefaultProbability(),
	}
	opp.apply(details)
	opp.AddDomainEvent(NewChangedEvent(EventTypeOpportunityCreated, AggregateTypeOpportunity, opp.ID, tenantID, opp.Name))

	return opp, nil
}

// Details returns the current editable fields
func (o *Opportunity) Details() OpportunityDetails {
	probability := o.Probability
	return OpportunityDetails{
		Name:              o.Name,
		CompanyID:         o.CompanyID,
		ContactID:         o.ContactID,
		Amount:            o.Amount,
		Probability:       &probability,
		ExpectedCloseDate: o.ExpectedCloseDate,
		CompetitorIDs:     append([]uuid.UUID(nil), o.CompetitorIDs...),
		Notes:             o.Notes,
	}
}

// Update replaces the editable fields
func (o *Opportunity) Update(details OpportunityDetails) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	o.apply(details)
	o.Touch()
	o.AddDomainEvent(NewChangedEvent(EventTypeOpportunityUpdated, AggregateTypeOpportunity, o.ID, o.TenantID, o.Name))

	return nil
}

// MoveTo drops the opportunity into a kanban column. A stage change resets
// the probability to the stage default.
func (o *Opportunity) MoveTo(stage Stage, position int, lostReason string) error {
	from, changed, err := o.move(stage, position, lostReason, time.Now())
	if err != nil {
		return err
	}

	o.Touch()
	if changed {
		o.Probability = stage.DefaultProbability()
		o.AddDomainEvent(NewStageChangedEvent(AggregateTypeOpportunity, o.ID, o.TenantID, o.Name, from, stage))
	}

	return nil
}

// WeightedAmount is amount × probability / 100
func (o *Opportunity) WeightedAmount() decimal.Decimal {
	return o.Amount.Mul(decimal.NewFromInt(int64(o.Probability))).Div(decimal.NewFromInt(100))
}

// SetSourceLead links the lead this opportunity was converted from
func (o *Opportunity) SetSourceLead(leadID uuid.UUID) {
	o.LeadID = &leadID
}

// RemoveCompetitor drops a competitor reference; it reports whether anything changed
func (o *Opportunity) RemoveCompetitor(competitorID uuid.UUID) bool {
	kept := o.CompetitorIDs[:0]
	removed := false
	for _, id := range o.CompetitorIDs {
		if id == competitorID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	o.CompetitorIDs = kept
	if removed {
		o.Touch()
	}
	return removed
}

func (o *Opportunity) apply(d OpportunityDetails) {
	o.Name = d.Name
	o.CompanyID = d.CompanyID
	o.ContactID = d.ContactID
	o.Amount = d.Amount
	if d.Probability != nil {
		o.Probability = *d.Probability
	}
	o.ExpectedCloseDate = d.ExpectedCloseDate
	o.CompetitorIDs = d.CompetitorIDs
	o.Notes = d.Notes
}

func (d OpportunityDetails) normalized() OpportunityDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.CompanyID = nilIfZero(d.CompanyID)
	d.ContactID = nilIfZero(d.ContactID)

	seen := make(map[uuid.UUID]bool, len(d.CompetitorIDs))
	ids := make([]uuid.UUID, 0, len(d.CompetitorIDs))
	for _, id := range d.CompetitorIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	d.CompetitorIDs = ids
	return d
}

func (d OpportunityDetails) validate() error {
	if err := shared.ValidateRequiredLength("INVALID_NAME", "Opportunity name", d.Name, 2, 200); err != nil {
		return err
	}
	if d.Amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if d.Probability != nil && (*d.Probability < 0 || *d.Probability > 100) {
		return shared.NewDomainError("INVALID_PROBABILITY", "Probability must be between 0 and 100")
	}
	return nil
}
