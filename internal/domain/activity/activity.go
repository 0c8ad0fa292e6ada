package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeActivity is the aggregate type name for activities
const AggregateTypeActivity = "Activity"

// Event type constants
const (
	EventTypeActivityCreated = "ActivityCreated"
	EventTypeActivityUpdated = "ActivityUpdated"
	EventTypeActivityDeleted = "ActivityDeleted"
)

// Type classifies an activity
type Type string

const (
	TypeCall    Type = "call"
	TypeEmail   Type = "email"
	TypeMeeting Type = "meeting"
	TypeTask    Type = "task"
	TypeNote    Type = "note"
)

// IsValid checks if the activity type is known
func (t Type) IsValid() bool {
	switch t {
	case TypeCall, TypeEmail, TypeMeeting, TypeTask, TypeNote:
		return true
	}
	return false
}

// RelatedKind names the record an activity can be attached to
type RelatedKind string

const (
	RelatedContact     RelatedKind = "contact"
	RelatedCompany     RelatedKind = "company"
	RelatedLead        RelatedKind = "lead"
	RelatedOpportunity RelatedKind = "opportunity"
)

// ParseRelatedKind validates a related-record kind
func ParseRelatedKind(s string) (RelatedKind, error) {
	kind := RelatedKind(strings.ToLower(strings.TrimSpace(s)))
	switch kind {
	case RelatedContact, RelatedCompany, RelatedLead, RelatedOpportunity:
		return kind, nil
	}
	return "", shared.NewDomainError("INVALID_RELATED_KIND", "Related kind must be contact, company, lead or opportunity")
}

// Activity is a call, email, meeting, task or note logged against CRM records
type Activity struct {
	shared.TenantAggregateRoot
	Type          Type
	Subject       string
	Description   string
	DueAt         *time.Time
	CompletedAt   *time.Time
	ContactID     *uuid.UUID
	CompanyID     *uuid.UUID
	LeadID        *uuid.UUID
	OpportunityID *uuid.UUID
}

// Details carries the editable activity fields
type Details struct {
	Type          Type
	Subject       string
	Description   string
	DueAt         *time.Time
	ContactID     *uuid.UUID
	CompanyID     *uuid.UUID
	LeadID        *uuid.UUID
	OpportunityID *uuid.UUID
}

// NewActivity creates a new open activity
func NewActivity(tenantID uuid.UUID, details Details) (*Activity, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	a := &Activity{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	a.apply(details)
	a.AddDomainEvent(shared.NewBaseDomainEventPtr(EventTypeActivityCreated, AggregateTypeActivity, a.ID, tenantID))

	return a, nil
}

// NewStageChangeNote builds the note recorded when a pipeline card changes stage
func NewStageChangeNote(tenantID uuid.UUID, kind RelatedKind, recordID uuid.UUID, name, from, to string) (*Activity, error) {
	details := Details{
		Type:        TypeNote,
		Subject:     fmt.Sprintf("Stage changed from %s to %s", from, to),
		Description: name,
	}
	switch kind {
	case RelatedLead:
		details.LeadID = &recordID
	case RelatedOpportunity:
		details.OpportunityID = &recordID
	}

	a, err := NewActivity(tenantID, details)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	a.CompletedAt = &now
	return a, nil
}

// Details returns the current editable fields
func (a *Activity) Details() Details {
	return Details{
		Type:          a.Type,
		Subject:       a.Subject,
		Description:   a.Description,
		DueAt:         a.DueAt,
		ContactID:     a.ContactID,
		CompanyID:     a.CompanyID,
		LeadID:        a.LeadID,
		OpportunityID: a.OpportunityID,
	}
}

// Update replaces the editable fields
func (a *Activity) Update(details Details) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	a.apply(details)
	a.Touch()
	a.AddDomainEvent(shared.NewBaseDomainEventPtr(EventTypeActivityUpdated, AggregateTypeActivity, a.ID, a.TenantID))
	return nil
}

// IsCompleted reports whether the activity is done
func (a *Activity) IsCompleted() bool {
	return a.CompletedAt != nil
}

// IsOverdue reports whether an open activity is past its due time
func (a *Activity) IsOverdue(now time.Time) bool {
	return !a.IsCompleted() && a.DueAt != nil && a.DueAt.Before(now)
}

// Complete marks the activity as done
func (a *Activity) Complete() error {
	if a.IsCompleted() {
		return shared.NewDomainError("INVALID_STATE", "Activity is already completed")
	}
	now := time.Now()
	a.CompletedAt = &now
	a.Touch()
	a.AddDomainEvent(shared.NewBaseDomainEventPtr(EventTypeActivityUpdated, AggregateTypeActivity, a.ID, a.TenantID))
	return nil
}

// Reopen marks a completed activity as open again
func (a *Activity) Reopen() error {
	if !a.IsCompleted() {
		return shared.NewDomainError("INVALID_STATE", "Activity is not completed")
	}
	a.CompletedAt = nil
	a.Touch()
	a.AddDomainEvent(shared.NewBaseDomainEventPtr(EventTypeActivityUpdated, AggregateTypeActivity, a.ID, a.TenantID))
	return nil
}

func (a *Activity) apply(d Details) {
	a.Type = d.Type
	a.Subject = d.Subject
	a.Description = d.Description
	a.DueAt = d.DueAt
	a.ContactID = d.ContactID
	a.CompanyID = d.CompanyID
	a.LeadID = d.LeadID
	a.OpportunityID = d.OpportunityID
}

func (d Details) normalized() Details {
	d.Type = Type(strings.ToLower(strings.TrimSpace(string(d.Type))))
	d.Subject = strings.TrimSpace(d.Subject)
	for _, ref := range []**uuid.UUID{&d.ContactID, &d.CompanyID, &d.LeadID, &d.OpportunityID} {
		if *ref != nil && **ref == uuid.Nil {
			*ref = nil
		}
	}
	return d
}

func (d Details) validate() error {
	if !d.Type.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Activity type must be call, email, meeting, task or note")
	}
	return shared.ValidateRequiredLength("INVALID_SUBJECT", "Subject", d.Subject, 2, 200)
}
