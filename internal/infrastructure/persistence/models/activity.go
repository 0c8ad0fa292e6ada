package models

import (
	"time"

	"github.com/crm/backend/internal/domain/activity"
	"github.com/google/uuid"
)

// ActivityModel is the persistence model for activity.Activity
type ActivityModel struct {
	TenantAggregateModel
	Type          activity.Type `gorm:"type:varchar(20);not null"`
	Subject       string        `gorm:"type:varchar(200);not null"`
	Description   string        `gorm:"type:text"`
	DueAt         *time.Time    `gorm:"index"`
	CompletedAt   *time.Time
	ContactID     *uuid.UUID `gorm:"type:uuid;index"`
	CompanyID     *uuid.UUID `gorm:"type:uuid;index"`
	LeadID        *uuid.UUID `gorm:"type:uuid;index"`
	OpportunityID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ActivityModel) TableName() string {
	return "activities"
}

// ToDomain converts the model to a domain Activity
func (m *ActivityModel) ToDomain() *activity.Activity {
	return &activity.Activity{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Type:                m.Type,
		Subject:             m.Subject,
		Description:         m.Description,
		DueAt:               m.DueAt,
		CompletedAt:         m.CompletedAt,
		ContactID:           m.ContactID,
		CompanyID:           m.CompanyID,
		LeadID:              m.LeadID,
		OpportunityID:       m.OpportunityID,
	}
}

// ActivityModelFromDomain builds a model from a domain Activity
func ActivityModelFromDomain(a *activity.Activity) *ActivityModel {
	m := &ActivityModel{
		Type:          a.Type,
		Subject:       a.Subject,
		Description:   a.Description,
		DueAt:         a.DueAt,
		CompletedAt:   a.CompletedAt,
		ContactID:     a.ContactID,
		CompanyID:     a.CompanyID,
		LeadID:        a.LeadID,
		OpportunityID: a.OpportunityID,
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// RelatedColumn maps a related kind to its foreign key column
func RelatedColumn(kind activity.RelatedKind) (string, bool) {
	switch kind {
	case activity.RelatedContact:
		return "contact_id", true
	case activity.RelatedCompany:
		return "company_id", true
	case activity.RelatedLead:
		return "lead_id", true
	case activity.RelatedOpportunity:
		return "opportunity_id", true
	}
	return "", false
}
