package activity

import (
	"context"
	"time"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultUpcomingLimit is used when ListUpcoming is called without a limit
const DefaultUpcomingLimit = 10

// Targets holds the repositories of records an activity can reference
type Targets struct {
	Companies     partner.CompanyRepository
	Contacts      partner.ContactRepository
	Leads         sales.LeadRepository
	Opportunities sales.OpportunityRepository
}

// Service handles activity business operations
type Service struct {
	activityRepo activity.Repository
	targets      Targets
	events       *event.Dispatcher
	now          func() time.Time
}

// NewService creates a new activity Service
func NewService(activityRepo activity.Repository, targets Targets, events *event.Dispatcher) *Service {
	return &Service{
		activityRepo: activityRepo,
		targets:      targets,
		events:       events,
		now:          time.Now,
	}
}

// Create logs a new activity
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req CreateActivityRequest) (*ActivityResponse, error) {
	a, err := activity.NewActivity(tenantID, activity.Details{
		Type:          activity.Type(req.Type),
		Subject:       req.Subject,
		Description:   req.Description,
		DueAt:         req.DueAt,
		ContactID:     req.ContactID,
		CompanyID:     req.CompanyID,
		LeadID:        req.LeadID,
		OpportunityID: req.OpportunityID,
	})
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		a.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.checkTargets(ctx, tenantID, a); err != nil {
		return nil, err
	}

	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, a)

	response := ToActivityResponse(a, s.now())
	return &response, nil
}

// GetByID retrieves an activity by ID
func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*ActivityResponse, error) {
	a, err := s.activityRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Activity")
	}
	response := ToActivityResponse(a, s.now())
	return &response, nil
}

// List retrieves activities with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ActivityListFilter) ([]ActivityResponse, int64, error) {
	domainFilter := filter.toDomain()

	items, err := s.activityRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.activityRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToActivityResponses(items, s.now()), total, nil
}

// Update applies a partial update
func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateActivityRequest) (*ActivityResponse, error) {
	a, err := s.activityRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Activity")
	}

	if err := a.Update(req.applyTo(a.Details())); err != nil {
		return nil, err
	}
	if err := s.checkTargets(ctx, tenantID, a); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, a)

	response := ToActivityResponse(a, s.now())
	return &response, nil
}

// Delete removes an activity
func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.activityRepo.FindByIDForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Activity")
	}
	if err := s.activityRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Activity")
	}
	s.events.Publish(ctx, shared.NewBaseDomainEventPtr(activity.EventTypeActivityDeleted, activity.AggregateTypeActivity, id, tenantID))
	return nil
}

// Complete marks an activity as done
func (s *Service) Complete(ctx context.Context, tenantID, id uuid.UUID) (*ActivityResponse, error) {
	return s.transition(ctx, tenantID, id, (*activity.Activity).Complete)
}

// Reopen marks a completed activity as open again
func (s *Service) Reopen(ctx context.Context, tenantID, id uuid.UUID) (*ActivityResponse, error) {
	return s.transition(ctx, tenantID, id, (*activity.Activity).Reopen)
}

// ListUpcoming returns open activities due from now on, soonest first
func (s *Service) ListUpcoming(ctx context.Context, tenantID uuid.UUID, limit int) ([]ActivityResponse, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	if limit > shared.MaxPageSize {
		limit = shared.MaxPageSize
	}
	now := s.now()
	items, err := s.activityRepo.FindUpcoming(ctx, tenantID, now, limit)
	if err != nil {
		return nil, err
	}
	return ToActivityResponses(items, now), nil
}

// ListOverdue returns open activities past their due time
func (s *Service) ListOverdue(ctx context.Context, tenantID uuid.UUID, filter ActivityListFilter) ([]ActivityResponse, int64, error) {
	now := s.now()
	items, err := s.activityRepo.FindOverdue(ctx, tenantID, now, filter.toDomain())
	if err != nil {
		return nil, 0, err
	}
	total, err := s.activityRepo.CountOverdue(ctx, tenantID, now)
	if err != nil {
		return nil, 0, err
	}
	return ToActivityResponses(items, now), total, nil
}

// ListByRelated returns the activities attached to one CRM record
func (s *Service) ListByRelated(ctx context.Context, tenantID uuid.UUID, kind string, id uuid.UUID, filter ActivityListFilter) ([]ActivityResponse, error) {
	relatedKind, err := activity.ParseRelatedKind(kind)
	if err != nil {
		return nil, err
	}
	items, err := s.activityRepo.FindByRelated(ctx, tenantID, relatedKind, id, filter.toDomain())
	if err != nil {
		return nil, err
	}
	return ToActivityResponses(items, s.now()), nil
}

func (s *Service) transition(ctx context.Context, tenantID, id uuid.UUID, apply func(*activity.Activity) error) (*ActivityResponse, error) {
	a, err := s.activityRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Activity")
	}
	if err := apply(a); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, a)

	response := ToActivityResponse(a, s.now())
	return &response, nil
}

// checkTargets verifies that every referenced record exists in the tenant
func (s *Service) checkTargets(ctx context.Context, tenantID uuid.UUID, a *activity.Activity) error {
	checks := []struct {
		id   *uuid.UUID
		code string
		name string
		find func(uuid.UUID) error
	}{
		{a.CompanyID, "INVALID_COMPANY", "company", func(id uuid.UUID) error {
			_, err := s.targets.Companies.FindByIDForTenant(ctx, tenantID, id)
			return err
		}},
		{a.ContactID, "INVALID_CONTACT", "contact", func(id uuid.UUID) error {
			_, err := s.targets.Contacts.FindByIDForTenant(ctx, tenantID, id)
			return err
		}},
		{a.LeadID, "INVALID_LEAD", "lead", func(id uuid.UUID) error {
			_, err := s.targets.Leads.FindByIDForTenant(ctx, tenantID, id)
			return err
		}},
		{a.OpportunityID, "INVALID_OPPORTUNITY", "opportunity", func(id uuid.UUID) error {
			_, err := s.targets.Opportunities.FindByIDForTenant(ctx, tenantID, id)
			return err
		}},
	}

	for _, c := range checks {
		if c.id == nil {
			continue
		}
		if err := c.find(*c.id); err != nil {
			if shared.IsNotFound(err) {
				return shared.NewDomainError(c.code, "Referenced "+c.name+" does not exist")
			}
			return err
		}
	}
	return nil
}
