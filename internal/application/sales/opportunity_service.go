package sales

import (
	"context"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OpportunityService handles opportunity business operations and the deal kanban
type OpportunityService struct {
	oppRepo      sales.OpportunityRepository
	activityRepo activity.Repository
	expenseRepo  finance.ExpenseRepository
	settingsRepo settings.Repository
	partners     Partners
	events       *event.Dispatcher
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	oppRepo sales.OpportunityRepository,
	activityRepo activity.Repository,
	expenseRepo finance.ExpenseRepository,
	settingsRepo settings.Repository,
	partners Partners,
	events *event.Dispatcher,
) *OpportunityService {
	return &OpportunityService{
		oppRepo:      oppRepo,
		activityRepo: activityRepo,
		expenseRepo:  expenseRepo,
		settingsRepo: settingsRepo,
		partners:     partners,
		events:       events,
	}
}

// Create creates an opportunity at the end of its kanban column
func (s *OpportunityService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOpportunityRequest) (*OpportunityResponse, error) {
	stage := sales.StageCold
	if req.Stage != "" {
		parsed, err := sales.ParseStage(req.Stage)
		if err != nil {
			return nil, err
		}
		stage = parsed
	}

	details := sales.OpportunityDetails{
		Name:              req.Name,
		CompanyID:         req.CompanyID,
		ContactID:         req.ContactID,
		Probability:       req.Probability,
		ExpectedCloseDate: req.ExpectedCloseDate,
		CompetitorIDs:     req.CompetitorIDs,
		Notes:             req.Notes,
	}
	if req.Amount != nil {
		details.Amount = *req.Amount
	}

	opp, err := sales.NewOpportunity(tenantID, details, stage)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		opp.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.checkReferences(ctx, tenantID, opp); err != nil {
		return nil, err
	}

	position, err := s.oppRepo.NextPosition(ctx, tenantID, opp.Stage)
	if err != nil {
		return nil, err
	}
	opp.SetPosition(position)

	if err := s.oppRepo.Save(ctx, opp); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, opp)

	response := ToOpportunityResponse(opp)
	return &response, nil
}

// GetByID retrieves an opportunity by ID
func (s *OpportunityService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*OpportunityResponse, error) {
	opp, err := s.oppRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Opportunity")
	}
	response := ToOpportunityResponse(opp)
	return &response, nil
}

// List retrieves opportunities with filtering and pagination
func (s *OpportunityService) List(ctx context.Context, tenantID uuid.UUID, filter OpportunityListFilter) ([]OpportunityResponse, int64, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, 0, err
	}

	opps, err := s.oppRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.oppRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OpportunityResponse, len(opps))
	for i := range opps {
		responses[i] = ToOpportunityResponse(&opps[i])
	}
	return responses, total, nil
}

// Update applies a partial update; the stage is changed through Move only
func (s *OpportunityService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateOpportunityRequest) (*OpportunityResponse, error) {
	opp, err := s.oppRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Opportunity")
	}

	if err := opp.Update(req.applyTo(opp.Details())); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, tenantID, opp); err != nil {
		return nil, err
	}
	if err := s.oppRepo.Save(ctx, opp); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, opp)

	response := ToOpportunityResponse(opp)
	return &response, nil
}

// Move drops an opportunity into a kanban column. A stage change resets
// the probability to the stage default.
func (s *OpportunityService) Move(ctx context.Context, tenantID, id uuid.UUID, req MoveRequest) (*OpportunityResponse, error) {
	stage, err := sales.ParseStage(req.Stage)
	if err != nil {
		return nil, err
	}
	opp, err := s.oppRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Opportunity")
	}

	position, err := targetPosition(ctx, req.Position, func(ctx context.Context) (int, error) {
		return s.oppRepo.NextPosition(ctx, tenantID, stage)
	})
	if err != nil {
		return nil, err
	}

	if err := opp.MoveTo(stage, position, req.LostReason); err != nil {
		return nil, err
	}
	if err := s.oppRepo.SaveMove(ctx, opp); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, opp)

	response := ToOpportunityResponse(opp)
	return &response, nil
}

// Delete removes an opportunity; activities and expenses attached to it are kept unlinked
func (s *OpportunityService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	opp, err := s.oppRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return shared.NamedNotFound(err, "Opportunity")
	}
	if err := s.activityRepo.DetachRelated(ctx, tenantID, activity.RelatedOpportunity, id); err != nil {
		return err
	}
	if err := s.expenseRepo.DetachOpportunity(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.oppRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Opportunity")
	}

	s.events.Publish(ctx, sales.NewChangedEvent(sales.EventTypeOpportunityDeleted, sales.AggregateTypeOpportunity, id, tenantID, opp.Name))
	return nil
}

// Board groups opportunities into kanban columns
func (s *OpportunityService) Board(ctx context.Context, tenantID uuid.UUID, filter OpportunityListFilter) (*BoardResponse[OpportunityResponse], error) {
	filter.Stage = ""
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	opps, err := s.oppRepo.FindAllUnpaged(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	prefs, err := settings.Load(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}

	columns := sales.BuildBoard(opps, sales.OpportunityCard, sales.OpportunityValue)
	return toBoard("opportunities", columns, prefs, func(o sales.Opportunity) OpportunityResponse { return ToOpportunityResponse(&o) }), nil
}

func (s *OpportunityService) checkReferences(ctx context.Context, tenantID uuid.UUID, opp *sales.Opportunity) error {
	if err := s.partners.check(ctx, tenantID, opp.CompanyID, opp.ContactID); err != nil {
		return err
	}
	return s.partners.checkCompetitors(ctx, tenantID, opp.CompetitorIDs)
}
