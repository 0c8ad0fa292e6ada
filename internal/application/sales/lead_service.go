package sales

import (
	"context"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadService handles lead business operations and the lead kanban
type LeadService struct {
	leadRepo     sales.LeadRepository
	oppRepo      sales.OpportunityRepository
	activityRepo activity.Repository
	settingsRepo settings.Repository
	partners     Partners
	events       *event.Dispatcher
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo sales.LeadRepository,
	oppRepo sales.OpportunityRepository,
	activityRepo activity.Repository,
	settingsRepo settings.Repository,
	partners Partners,
	events *event.Dispatcher,
) *LeadService {
	return &LeadService{
		leadRepo:     leadRepo,
		oppRepo:      oppRepo,
		activityRepo: activityRepo,
		settingsRepo: settingsRepo,
		partners:     partners,
		events:       events,
	}
}

// Create creates a lead at the end of its kanban column
func (s *LeadService) Create(ctx context.Context, tenantID uuid.UUID, req CreateLeadRequest) (*LeadResponse, error) {
	stage := sales.StageCold
	if req.Status != "" {
		parsed, err := sales.ParseStage(req.Status)
		if err != nil {
			return nil, err
		}
		stage = parsed
	}

	source := req.Source
	if source == "" {
		prefs, err := settings.Load(ctx, s.settingsRepo, tenantID)
		if err != nil {
			return nil, err
		}
		source = prefs.DefaultLeadSource
	}

	details := sales.LeadDetails{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Source:      sales.LeadSource(source),
		Notes:       req.Notes,
		ContactID:   req.ContactID,
		CompanyID:   req.CompanyID,
	}
	if req.EstimatedValue != nil {
		details.EstimatedValue = *req.EstimatedValue
	}

	lead, err := sales.NewLead(tenantID, details, stage)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		lead.SetCreatedBy(*req.CreatedBy)
	}
	if err := s.partners.check(ctx, tenantID, lead.CompanyID, lead.ContactID); err != nil {
		return nil, err
	}

	position, err := s.leadRepo.NextPosition(ctx, tenantID, lead.Stage)
	if err != nil {
		return nil, err
	}
	lead.SetPosition(position)

	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, lead)

	response := ToLeadResponse(lead)
	return &response, nil
}

// GetByID retrieves a lead by ID
func (s *LeadService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Lead")
	}
	response := ToLeadResponse(lead)
	return &response, nil
}

// List retrieves leads with filtering and pagination
func (s *LeadService) List(ctx context.Context, tenantID uuid.UUID, filter LeadListFilter) ([]LeadResponse, int64, error) {
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, 0, err
	}

	leads, err := s.leadRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.leadRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LeadResponse, len(leads))
	for i := range leads {
		responses[i] = ToLeadResponse(&leads[i])
	}
	return responses, total, nil
}

// Update applies a partial update; the kanban status is left untouched
func (s *LeadService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateLeadRequest) (*LeadResponse, error) {
	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Lead")
	}

	if err := lead.Update(req.applyTo(lead.Details())); err != nil {
		return nil, err
	}
	if err := s.partners.check(ctx, tenantID, lead.CompanyID, lead.ContactID); err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, lead)

	response := ToLeadResponse(lead)
	return &response, nil
}

// Move drops a lead into a kanban column. Cards at or after the target
// position shift down by one.
func (s *LeadService) Move(ctx context.Context, tenantID, id uuid.UUID, req MoveRequest) (*LeadResponse, error) {
	stage, err := sales.ParseStage(req.Stage)
	if err != nil {
		return nil, err
	}
	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Lead")
	}

	position, err := targetPosition(ctx, req.Position, func(ctx context.Context) (int, error) {
		return s.leadRepo.NextPosition(ctx, tenantID, stage)
	})
	if err != nil {
		return nil, err
	}

	if err := lead.MoveTo(stage, position, req.LostReason); err != nil {
		return nil, err
	}
	if err := s.leadRepo.SaveMove(ctx, lead); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, lead)

	response := ToLeadResponse(lead)
	return &response, nil
}

// Convert turns a lead into an opportunity. The opportunity starts in the
// lead's stage when that stage is open, otherwise in Cold; the lead is
// closed as Won.
func (s *LeadService) Convert(ctx context.Context, tenantID, id uuid.UUID, createdBy *uuid.UUID) (*ConvertLeadResponse, error) {
	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, shared.NamedNotFound(err, "Lead")
	}
	if lead.IsConverted() {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Lead has already been converted")
	}

	stage := sales.StageCold
	if lead.Stage.IsOpen() {
		stage = lead.Stage
	}

	opp, err := sales.NewOpportunity(tenantID, sales.OpportunityDetails{
		Name:      lead.Name,
		CompanyID: lead.CompanyID,
		ContactID: lead.ContactID,
		Amount:    lead.EstimatedValue,
		Notes:     lead.Notes,
	}, stage)
	if err != nil {
		return nil, err
	}
	opp.SetSourceLead(lead.ID)
	if createdBy != nil {
		opp.SetCreatedBy(*createdBy)
	}

	position, err := s.oppRepo.NextPosition(ctx, tenantID, stage)
	if err != nil {
		return nil, err
	}
	opp.SetPosition(position)

	if err := lead.MarkConverted(opp.ID); err != nil {
		return nil, err
	}
	if err := s.oppRepo.Save(ctx, opp); err != nil {
		return nil, err
	}
	if err := s.leadRepo.Save(ctx, lead); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, opp, lead)

	return &ConvertLeadResponse{
		Lead:        ToLeadResponse(lead),
		Opportunity: ToOpportunityResponse(opp),
	}, nil
}

// Delete removes a lead; activities attached to it are kept unlinked
func (s *LeadService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	lead, err := s.leadRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return shared.NamedNotFound(err, "Lead")
	}
	if err := s.activityRepo.DetachRelated(ctx, tenantID, activity.RelatedLead, id); err != nil {
		return err
	}
	if err := s.leadRepo.DeleteForTenant(ctx, tenantID, id); err != nil {
		return shared.NamedNotFound(err, "Lead")
	}

	s.events.Publish(ctx, sales.NewChangedEvent(sales.EventTypeLeadDeleted, sales.AggregateTypeLead, id, tenantID, lead.Name))
	return nil
}

// Board groups leads into kanban columns
func (s *LeadService) Board(ctx context.Context, tenantID uuid.UUID, filter LeadListFilter) (*BoardResponse[LeadResponse], error) {
	filter.Status = ""
	domainFilter, err := filter.toDomain()
	if err != nil {
		return nil, err
	}
	leads, err := s.leadRepo.FindAllUnpaged(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	prefs, err := settings.Load(ctx, s.settingsRepo, tenantID)
	if err != nil {
		return nil, err
	}

	columns := sales.BuildBoard(leads, sales.LeadCard, sales.LeadValue)
	return toBoard("leads", columns, prefs, func(l sales.Lead) LeadResponse { return ToLeadResponse(&l) }), nil
}

// targetPosition returns the requested position, or the end of the column when none was given
func targetPosition(ctx context.Context, requested *int, next func(context.Context) (int, error)) (int, error) {
	if requested != nil {
		return *requested, nil
	}
	return next(ctx)
}

func toBoard[T, R any](entity string, columns []sales.Column[T], prefs *settings.Settings, convert func(T) R) *BoardResponse[R] {
	board := &BoardResponse[R]{
		Entity:  entity,
		Columns: make([]ColumnResponse[R], len(columns)),
		Value:   decimal.Zero,
	}
	for i, col := range columns {
		cards := make([]R, len(col.Cards))
		for j, c := range col.Cards {
			cards[j] = convert(c)
		}
		board.Columns[i] = ColumnResponse[R]{
			Stage: col.Stage.String(),
			Label: prefs.StageLabel(col.Stage.String()),
			Count: col.Count,
			Value: col.Value,
			Cards: cards,
		}
		board.Total += col.Count
		board.Value = board.Value.Add(col.Value)
	}
	return board
}
