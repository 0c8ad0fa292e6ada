package partner

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Contact is a person, optionally working for a Company
type Contact struct {
	shared.TenantAggregateRoot
	FirstName string
	LastName  string
	Email     string
	Phone     string
	JobTitle  string
	CompanyID *uuid.UUID
	Notes     string
}

// ContactDetails carries the editable contact fields
type ContactDetails struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	JobTitle  string
	CompanyID *uuid.UUID
	Notes     string
}

// NewContact creates a new contact
func NewContact(tenantID uuid.UUID, details ContactDetails) (*Contact, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	contact := &Contact{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
	}
	contact.apply(details)
	contact.AddDomainEvent(NewChangedEvent(EventTypeContactCreated, AggregateTypeContact, contact.ID, tenantID, contact.FullName()))

	return contact, nil
}

// FullName returns "First Last"
func (c *Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Details returns the current editable fields
func (c *Contact) Details() ContactDetails {
	return ContactDetails{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		JobTitle:  c.JobTitle,
		CompanyID: c.CompanyID,
		Notes:     c.Notes,
	}
}

// Update replaces the editable fields
func (c *Contact) Update(details ContactDetails) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	c.apply(details)
	c.Touch()
	c.AddDomainEvent(NewChangedEvent(EventTypeContactUpdated, AggregateTypeContact, c.ID, c.TenantID, c.FullName()))

	return nil
}

func (c *Contact) apply(d ContactDetails) {
	c.FirstName = d.FirstName
	c.LastName = d.LastName
	c.Email = d.Email
	c.Phone = d.Phone
	c.JobTitle = d.JobTitle
	c.CompanyID = d.CompanyID
	c.Notes = d.Notes
}

func (d ContactDetails) normalized() ContactDetails {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = shared.NormalizeEmail(d.Email)
	if d.CompanyID != nil && *d.CompanyID == uuid.Nil {
		d.CompanyID = nil
	}
	return d
}

func (d ContactDetails) validate() error {
	if err := shared.ValidateRequiredLength("INVALID_FIRST_NAME", "First name", d.FirstName, 1, 100); err != nil {
		return err
	}
	if err := shared.ValidateRequiredLength("INVALID_LAST_NAME", "Last name", d.LastName, 1, 100); err != nil {
		return err
	}
	if err := shared.ValidateEmail(d.Email); err != nil {
		return err
	}
	if err := shared.ValidateLength("INVALID_PHONE", "Phone", d.Phone, 0, 50); err != nil {
		return err
	}
	return shared.ValidateLength("INVALID_JOB_TITLE", "Job title", d.JobTitle, 0, 100)
}
