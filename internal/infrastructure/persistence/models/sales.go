package models

import (
	"time"

	"github.com/crm/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadModel is the persistence model for sales.Lead.
// The kanban column is the status column.
type LeadModel struct {
	TenantAggregateModel
	Name                   string           `gorm:"type:varchar(200);not null"`
	ContactName            string           `gorm:"type:varchar(200)"`
	Email                  string           `gorm:"type:varchar(200);index"`
	Phone                  string           `gorm:"type:varchar(50)"`
	CompanyName            string           `gorm:"type:varchar(200)"`
	Source                 sales.LeadSource `gorm:"type:varchar(30);not null;default:'other'"`
	Status                 sales.Stage      `gorm:"type:varchar(10);not null;default:'COLD';index"`
	Position               int              `gorm:"not null;default:0"`
	EstimatedValue         decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Notes                  string           `gorm:"type:text"`
	ContactID              *uuid.UUID       `gorm:"type:uuid;index"`
	CompanyID              *uuid.UUID       `gorm:"type:uuid;index"`
	ConvertedOpportunityID *uuid.UUID       `gorm:"type:uuid"`
	ClosedAt               *time.Time
	LostReason             string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the model to a domain Lead
func (m *LeadModel) ToDomain() *sales.Lead {
	return &sales.Lead{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Card: sales.Card{
			Stage:      m.Status,
			Position:   m.Position,
			ClosedAt:   m.ClosedAt,
			LostReason: m.LostReason,
		},
		Name:                   m.Name,
		ContactName:            m.ContactName,
		Email:                  m.Email,
		Phone:                  m.Phone,
		CompanyName:            m.CompanyName,
		Source:                 m.Source,
		EstimatedValue:         m.EstimatedValue,
		Notes:                  m.Notes,
		ContactID:              m.ContactID,
		CompanyID:              m.CompanyID,
		ConvertedOpportunityID: m.ConvertedOpportunityID,
	}
}

// LeadModelFromDomain builds a model from a domain Lead
func LeadModelFromDomain(l *sales.Lead) *LeadModel {
	m := &LeadModel{
		Name:                   l.Name,
		ContactName:            l.ContactName,
		Email:                  l.Email,
		Phone:                  l.Phone,
		CompanyName:            l.CompanyName,
		Source:                 l.Source,
		Status:                 l.Stage,
		Position:               l.Position,
		EstimatedValue:         l.EstimatedValue,
		Notes:                  l.Notes,
		ContactID:              l.ContactID,
		CompanyID:              l.CompanyID,
		ConvertedOpportunityID: l.ConvertedOpportunityID,
		ClosedAt:               l.ClosedAt,
		LostReason:             l.LostReason,
	}
	m.FromDomainTenantAggregateRoot(l.TenantAggregateRoot)
	return m
}

// OpportunityModel is the persistence model for sales.Opportunity
type OpportunityModel struct {
	TenantAggregateModel
	Name              string          `gorm:"type:varchar(200);not null"`
	CompanyID         *uuid.UUID      `gorm:"type:uuid;index"`
	ContactID         *uuid.UUID      `gorm:"type:uuid;index"`
	LeadID            *uuid.UUID      `gorm:"type:uuid"`
	Stage             sales.Stage     `gorm:"type:varchar(10);not null;default:'COLD';index"`
	Position          int             `gorm:"not null;default:0"`
	Amount            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Probability       int             `gorm:"not null;default:0"`
	ExpectedCloseDate *time.Time
	ClosedAt          *time.Time
	LostReason        string `gorm:"type:varchar(500)"`
	Notes             string `gorm:"type:text"`

	Competitors []OpportunityCompetitorModel `gorm:"foreignKey:OpportunityID"`
}

// TableName returns the table name for GORM
func (OpportunityModel) TableName() string {
	return "opportunities"
}

// OpportunityCompetitorModel links an opportunity to a competitor
type OpportunityCompetitorModel struct {
	OpportunityID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompetitorID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (OpportunityCompetitorModel) TableName() string {
	return "opportunity_competitors"
}

// ToDomain converts the model to a domain Opportunity.
// Competitors must be preloaded for CompetitorIDs to be populated.
func (m *OpportunityModel) ToDomain() *sales.Opportunity {
	ids := make([]uuid.UUID, 0, len(m.Competitors))
	for _, c := range m.Competitors {
		ids = append(ids, c.CompetitorID)
	}
	return &sales.Opportunity{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Card: sales.Card{
			Stage:      m.Stage,
			Position:   m.Position,
			ClosedAt:   m.ClosedAt,
			LostReason: m.LostReason,
		},
		Name:              m.Name,
		CompanyID:         m.CompanyID,
		ContactID:         m.ContactID,
		LeadID:            m.LeadID,
		Amount:            m.Amount,
		Probability:       m.Probability,
		ExpectedCloseDate: m.ExpectedCloseDate,
		CompetitorIDs:     ids,
		Notes:             m.Notes,
	}
}

// OpportunityModelFromDomain builds a model from a domain Opportunity
func OpportunityModelFromDomain(o *sales.Opportunity) *OpportunityModel {
	m := &OpportunityModel{
		Name:              o.Name,
		CompanyID:         o.CompanyID,
		ContactID:         o.ContactID,
		LeadID:            o.LeadID,
		Stage:             o.Stage,
		Position:          o.Position,
		Amount:            o.Amount,
		Probability:       o.Probability,
		ExpectedCloseDate: o.ExpectedCloseDate,
		ClosedAt:          o.ClosedAt,
		LostReason:        o.LostReason,
		Notes:             o.Notes,
	}
	m.FromDomainTenantAggregateRoot(o.TenantAggregateRoot)
	m.Competitors = make([]OpportunityCompetitorModel, 0, len(o.CompetitorIDs))
	for _, id := range o.CompetitorIDs {
		m.Competitors = append(m.Competitors, OpportunityCompetitorModel{
			OpportunityID: o.ID,
			CompetitorID:  id,
			TenantID:      o.TenantID,
		})
	}
	return m
}
