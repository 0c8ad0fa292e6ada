package partner

import (
	"context"
	"strings"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CompetitorService handles competitor-related business operations
type CompetitorService struct {
	competitorRepo partner.CompetitorRepository
	events         *event.Dispatcher
}

// NewCompetitorService creates a new CompetitorService
func NewCompetitorService(competitorRepo partner.CompetitorRepository, events *event.Dispatcher) *CompetitorService {
	return &CompetitorService{competitorRepo: competitorRepo, events: events}
}

// Create creates a new competitor; names are unique per tenant
func (s *CompetitorService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCompetitorRequest) (*CompetitorResponse, error) {
	competitor, err := partner.NewCompetitor(tenantID, partner.CompetitorDetails{
		Name:        req.Name,
		Website:     req.Website,
		Strengths:   req.Strengths,
		Weaknesses:  req.Weaknesses,
		Notes:       req.Notes,
		ThreatLevel: partner.ThreatLevel(req.ThreatLevel),
	})
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		competitor.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.ensureNameFree(ctx, tenantID, competitor.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.competitorRepo.Save(ctx, competitor); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, competitor)

	response := ToCompetitorResponse(competitor)
	return &response, nil
}

// GetByID retrieves a competitor by ID
func (s *CompetitorService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*CompetitorResponse, error) {
	competitor, err := s.competitorRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Competitor")
	}
	response := ToCompetitorResponse(competitor)
	return &response, nil
}

// List retrieves competitors with filtering and pagination
func (s *CompetitorService) List(ctx context.Context, tenantID uuid.UUID, filter CompetitorListFilter) ([]CompetitorResponse, int64, error) {
	domainFilter := filter.toDomain()

	competitors, err := s.competitorRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.competitorRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CompetitorResponse, len(competitors))
	for i := range competitors {
		responses[i] = ToCompetitorResponse(&competitors[i])
	}
	return responses, total, nil
}

// Update applies a partial update
func (s *CompetitorService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCompetitorRequest) (*CompetitorResponse, error) {
	competitor, err := s.competitorRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Competitor")
	}

	if err := competitor.Update(req.applyTo(competitor.Details())); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, tenantID, competitor.Name, competitor.ID); err != nil {
		return nil, err
	}
	if err := s.competitorRepo.Save(ctx, competitor); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, competitor)

	response := ToCompetitorResponse(competitor)
	return &response, nil
}

// Delete removes a competitor; the repository drops its opportunity links
func (s *CompetitorService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	competitor, err := s.competitorRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return shared.NamedNotFound(err, "Competitor")
	}
	if err := s.competitorRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Competitor")
	}

	s.events.Publish(ctx, partner.NewChangedEvent(partner.EventTypeCompetitorDeleted, partner.AggregateTypeCompetitor, id, tenantID, competitor.Name))
	return nil
}

func (s *CompetitorService) ensureNameFree(ctx context.Context, tenantID uuid.UUID, name string, self uuid.UUID) error {
	existing, err := s.competitorRepo.FindByName(ctx, tenantID, strings.TrimSpace(name))
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError("ALREADY_EXISTS", "Competitor with this name already exists")
	}
	return nil
}
