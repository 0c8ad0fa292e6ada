package sales

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadSource records where a lead came from
type LeadSource string

const (
	LeadSourceWebsite       LeadSource = "website"
	LeadSourceReferral      LeadSource = "referral"
	LeadSourceEvent         LeadSource = "event"
	LeadSourceColdCall      LeadSource = "cold_call"
	LeadSourceSocial        LeadSource = "social"
	LeadSourceAdvertisement LeadSource = "advertisement"
	LeadSourceOther         LeadSource = "other"
)

// LeadSources lists the accepted sources
var LeadSources = []LeadSource{
	LeadSourceWebsite, LeadSourceReferral, LeadSourceEvent, LeadSourceColdCall,
	LeadSourceSocial, LeadSourceAdvertisement, LeadSourceOther,
}

// IsValid checks if the source is known
func (s LeadSource) IsValid() bool {
	for _, known := range LeadSources {
		if s == known {
			return true
		}
	}
	return false
}

// Lead is an unqualified sales prospect on the lead board
type Lead struct {
	shared.TenantAggregateRoot
	Card
	Name                   string
	ContactName            string
	Email                  string
	Phone                  string
	CompanyName            string
	Source                 LeadSource
	EstimatedValue         decimal.Decimal
	Notes                  string
	ContactID              *uuid.UUID
	CompanyID              *uuid.UUID
	ConvertedOpportunityID *uuid.UUID
}

// LeadDetails carries the editable lead fields
type LeadDetails struct {
	Name           string
	ContactName    string
	Email          string
	Phone          string
	CompanyName    string
	Source         LeadSource
	EstimatedValue decimal.Decimal
	Notes          string
	ContactID      *uuid.UUID
	CompanyID      *uuid.UUID
}

// NewLead creates a lead in the given stage (Cold when empty)
func NewLead(tenantID uuid.UUID, details LeadDetails, stage Stage) (*Lead, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}
	card, err := newCard(stage, time.Now())
	if err != nil {
		return nil, err
	}

	lead := &Lead{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Card:                card,
	}
	lead.apply(details)
	lead.AddDomainEvent(NewChangedEvent(EventTypeLeadCreated, AggregateTypeLead, lead.ID, tenantID, lead.Name))

	return lead, nil
}

// Details returns the current editable fields
func (l *Lead) Details() LeadDetails {
	return LeadDetails{
		Name:           l.Name,
		ContactName:    l.ContactName,
		Email:          l.Email,
		Phone:          l.Phone,
		CompanyName:    l.CompanyName,
		Source:         l.Source,
		EstimatedValue: l.EstimatedValue,
		Notes:          l.Notes,
		ContactID:      l.ContactID,
		CompanyID:      l.CompanyID,
	}
}

// Update replaces the editable fields
func (l *Lead) Update(details LeadDetails) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	l.apply(details)
	l.Touch()
	l.AddDomainEvent(NewChangedEvent(EventTypeLeadUpdated, AggregateTypeLead, l.ID, l.TenantID, l.Name))

	return nil
}

// MoveTo drops the lead into a kanban column at the given position
func (l *Lead) MoveTo(stage Stage, position int, lostReason string) error {
	from, changed, err := l.move(stage, position, lostReason, time.Now())
	if err != nil {
		return err
	}

	l.Touch()
	if changed {
		l.AddDomainEvent(NewStageChangedEvent(AggregateTypeLead, l.ID, l.TenantID, l.Name, from, stage))
	}

	return nil
}

// IsConverted reports whether the lead already became an opportunity
func (l *Lead) IsConverted() bool {
	return l.ConvertedOpportunityID != nil
}

// MarkConverted records the opportunity created from this lead and closes it as Won
func (l *Lead) MarkConverted(opportunityID uuid.UUID) error {
	if l.IsConverted() {
		return shared.NewDomainError("ALREADY_CONVERTED", "Lead has already been converted")
	}

	from, changed, err := l.move(StageWon, l.Position, "", time.Now())
	if err != nil {
		return err
	}
	l.ConvertedOpportunityID = &opportunityID
	l.Touch()

	if changed {
		l.AddDomainEvent(NewStageChangedEvent(AggregateTypeLead, l.ID, l.TenantID, l.Name, from, StageWon))
	}
	l.AddDomainEvent(NewLeadConvertedEvent(l, opportunityID))

	return nil
}

func (l *Lead) apply(d LeadDetails) {
	l.Name = d.Name
	l.ContactName = d.ContactName
	l.Email = d.Email
	l.Phone = d.Phone
	l.CompanyName = d.CompanyName
	l.Source = d.Source
	l.EstimatedValue = d.EstimatedValue
	l.Notes = d.Notes
	l.ContactID = d.ContactID
	l.CompanyID = d.CompanyID
}

func (d LeadDetails) normalized() LeadDetails {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = shared.NormalizeEmail(d.Email)
	d.Source = LeadSource(strings.ToLower(strings.TrimSpace(string(d.Source))))
	if d.Source == "" {
		d.Source = LeadSourceOther
	}
	d.ContactID = nilIfZero(d.ContactID)
	d.CompanyID = nilIfZero(d.CompanyID)
	return d
}

func (d LeadDetails) validate() error {
	if err := shared.ValidateRequiredLength("INVALID_NAME", "Lead name", d.Name, 2, 200); err != nil {
		return err
	}
	if err := shared.ValidateEmail(d.Email); err != nil {
		return err
	}
	if !d.Source.IsValid() {
		return shared.NewDomainError("INVALID_SOURCE", "Lead source is not valid")
	}
	if d.EstimatedValue.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Estimated value cannot be negative")
	}
	return nil
}

func nilIfZero(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
