package partner

import (
	"context"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactService handles contact-related business operations
type ContactService struct {
	contactRepo partner.ContactRepository
	companyRepo partner.CompanyRepository
	refs        References
	events      *event.Dispatcher
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo partner.ContactRepository, companyRepo partner.CompanyRepository, refs References, events *event.Dispatcher) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		companyRepo: companyRepo,
		refs:        refs,
		events:      events,
	}
}

// Create creates a new contact
func (s *ContactService) Create(ctx context.Context, tenantID uuid.UUID, req CreateContactRequest) (*ContactResponse, error) {
	contact, err := partner.NewContact(tenantID, partner.ContactDetails{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		JobTitle:  req.JobTitle,
		CompanyID: req.CompanyID,
		Notes:     req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		contact.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.ensureEmailFree(ctx, tenantID, contact.Email, uuid.Nil); err != nil {
		return nil, err
	}
	companyName, err := s.companyName(ctx, tenantID, contact.CompanyID)
	if err != nil {
		return nil, err
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, contact)

	response := ToContactResponse(contact)
	response.CompanyName = companyName
	return &response, nil
}

// GetByID retrieves a contact by ID
func (s *ContactService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Contact")
	}

	response := ToContactResponse(contact)
	if contact.CompanyID != nil {
		company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, *contact.CompanyID)
		if err != nil && !shared.IsNotFound(err) {
			return nil, err
		}
		if company != nil {
			response.CompanyName = company.Name
		}
	}
	return &response, nil
}

// List retrieves contacts with filtering and pagination, with company names filled in
func (s *ContactService) List(ctx context.Context, tenantID uuid.UUID, filter ContactListFilter) ([]ContactResponse, int64, error) {
	domainFilter := filter.toDomain()

	contacts, err := s.contactRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contactRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	names, err := s.companyNames(ctx, tenantID, contacts)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = ToContactResponse(&contacts[i])
		if contacts[i].CompanyID != nil {
			responses[i].CompanyName = names[*contacts[i].CompanyID]
		}
	}
	return responses, total, nil
}

// Update applies a partial update
func (s *ContactService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateContactRequest) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Contact")
	}

	if err := contact.Update(req.applyTo(contact.Details())); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, tenantID, contact.Email, contact.ID); err != nil {
		return nil, err
	}
	companyName, err := s.companyName(ctx, tenantID, contact.CompanyID)
	if err != nil {
		return nil, err
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, contact)

	response := ToContactResponse(contact)
	response.CompanyName = companyName
	return &response, nil
}

// Delete removes a contact and clears references held by leads,
// opportunities and activities
func (s *ContactService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	contact, err := s.contactRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return shared.NamedNotFound(err, "Contact")
	}

	if err := s.refs.Leads.DetachContact(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.refs.Opportunities.DetachContact(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.refs.Activities.DetachRelated(ctx, tenantID, activity.RelatedContact, id); err != nil {
		return err
	}
	if err := s.contactRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Contact")
	}

	s.events.Publish(ctx, partner.NewChangedEvent(partner.EventTypeContactDeleted, partner.AggregateTypeContact, id, tenantID, contact.FullName()))
	return nil
}

// ensureEmailFree rejects an email already used by another contact of the tenant
func (s *ContactService) ensureEmailFree(ctx context.Context, tenantID uuid.UUID, email string, self uuid.UUID) error {
	if email == "" {
		return nil
	}
	existing, err := s.contactRepo.FindByEmail(ctx, tenantID, email)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError("ALREADY_EXISTS", "Contact with this email already exists")
	}
	return nil
}

// companyName checks that the referenced company exists and returns its name
func (s *ContactService) companyName(ctx context.Context, tenantID uuid.UUID, companyID *uuid.UUID) (string, error) {
	if companyID == nil {
		return "", nil
	}
	company, err := s.companyRepo.FindByIDForTenant(ctx, tenantID, *companyID)
	if err != nil {
		if shared.IsNotFound(err) {
			return "", shared.NewDomainError("INVALID_COMPANY", "Referenced company does not exist")
		}
		return "", err
	}
	return company.Name, nil
}

func (s *ContactService) companyNames(ctx context.Context, tenantID uuid.UUID, contacts []partner.Contact) (map[uuid.UUID]string, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, c := range contacts {
		if c.CompanyID != nil && !seen[*c.CompanyID] {
			seen[*c.CompanyID] = true
			ids = append(ids, *c.CompanyID)
		}
	}
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	companies, err := s.companyRepo.FindByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range companies {
		names[c.ID] = c.Name
	}
	return names, nil
}
