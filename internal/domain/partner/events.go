package partner

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constants
const (
	AggregateTypeCompany    = "Company"
	AggregateTypeContact    = "Contact"
	AggregateTypeCompetitor = "Competitor"
)

// Event type constants
const (
	EventTypeCompanyCreated    = "CompanyCreated"
	EventTypeCompanyUpdated    = "CompanyUpdated"
	EventTypeCompanyDeleted    = "CompanyDeleted"
	EventTypeContactCreated    = "ContactCreated"
	EventTypeContactUpdated    = "ContactUpdated"
	EventTypeContactDeleted    = "ContactDeleted"
	EventTypeCompetitorCreated = "CompetitorCreated"
	EventTypeCompetitorUpdated = "CompetitorUpdated"
	EventTypeCompetitorDeleted = "CompetitorDeleted"
)

// ChangedEvent is raised whenever a partner record is created, updated or deleted
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
