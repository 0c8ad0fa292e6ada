package sales

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeLead        = "Lead"
	AggregateTypeOpportunity = "Opportunity"
)

// Event type constants
const (
	EventTypeLeadCreated        = "LeadCreated"
	EventTypeLeadUpdated        = "LeadUpdated"
	EventTypeLeadDeleted        = "LeadDeleted"
	EventTypeLeadConverted      = "LeadConverted"
	EventTypeOpportunityCreated = "OpportunityCreated"
	EventTypeOpportunityUpdated = "OpportunityUpdated"
	EventTypeOpportunityDeleted = "OpportunityDeleted"
	EventTypeStageChanged       = "StageChanged"
)

// ChangedEvent is raised when a lead or opportunity is created, updated or deleted
type ChangedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewChangedEvent creates a ChangedEvent of the given type
func NewChangedEvent(eventType, aggregateType string, id, tenantID uuid.UUID, name string) *ChangedEvent {
	return &ChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateType, id, tenantID),
		Name:            name,
	}
}

// StageChangedEvent is raised when a card moves to another kanban column
type StageChangedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	From Stage  `json:"from"`
	To   Stage  `json:"to"`
}

// NewStageChangedEvent creates a StageChangedEvent
func NewStageChangedEvent(aggregateType string, id, tenantID uuid.UUID, name string, from, to Stage) *StageChangedEvent {
	return &StageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStageChanged, aggregateType, id, tenantID),
		Name:            name,
		From:            from,
		To:              to,
	}
}

// LeadConvertedEvent is raised when a lead becomes an opportunity
type LeadConvertedEvent struct {
	shared.BaseDomainEvent
	OpportunityID uuid.UUID `json:"opportunity_id"`
}

// NewLeadConvertedEvent creates a LeadConvertedEvent
func NewLeadConvertedEvent(lead *Lead, opportunityID uuid.UUID) *LeadConvertedEvent {
	return &LeadConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadConverted, AggregateTypeLead, lead.ID, lead.TenantID),
		OpportunityID:   opportunityID,
	}
}
