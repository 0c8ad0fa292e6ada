package sales

import (
	"time"

	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Lead DTOs
// =============================================================================

// CreateLeadRequest represents a request to create a lead
type CreateLeadRequest struct {
	Name           string           `json:"name" binding:"required,min=2,max=200"`
	ContactName    string           `json:"contact_name" binding:"max=200"`
	Email          string           `json:"email" binding:"omitempty,email"`
	Phone          string           `json:"phone" binding:"max=50"`
	CompanyName    string           `json:"company_name" binding:"max=200"`
	Source         string           `json:"source"`
	Status         string           `json:"status"`
	EstimatedValue *decimal.Decimal `json:"estimated_value"`
	Notes          string           `json:"notes"`
	ContactID      *uuid.UUID       `json:"contact_id"`
	CompanyID      *uuid.UUID       `json:"company_id"`
	CreatedBy      *uuid.UUID       `json:"-"`
}

// UpdateLeadRequest represents a partial lead update. Status is changed
// through MoveLeadRequest only.
type UpdateLeadRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=2,max=200"`
	ContactName    *string          `json:"contact_name" binding:"omitempty,max=200"`
	Email          *string          `json:"email" binding:"omitempty,email"`
	Phone          *string          `json:"phone" binding:"omitempty,max=50"`
	CompanyName    *string          `json:"company_name" binding:"omitempty,max=200"`
	Source         *string          `json:"source"`
	EstimatedValue *decimal.Decimal `json:"estimated_value"`
	Notes          *string          `json:"notes"`
	ContactID      *uuid.UUID       `json:"contact_id"`
	CompanyID      *uuid.UUID       `json:"company_id"`
}

// LeadResponse represents a lead in API responses
type LeadResponse struct {
	ID                     uuid.UUID       `json:"id"`
	TenantID               uuid.UUID       `json:"tenant_id"`
	Name                   string          `json:"name"`
	ContactName            string          `json:"contact_name,omitempty"`
	Email                  string          `json:"email,omitempty"`
	Phone                  string          `json:"phone,omitempty"`
	CompanyName            string          `json:"company_name,omitempty"`
	Source                 string          `json:"source"`
	Status                 string          `json:"status"`
	Position               int             `json:"position"`
	EstimatedValue         decimal.Decimal `json:"estimated_value"`
	Notes                  string          `json:"notes,omitempty"`
	ContactID              *uuid.UUID      `json:"contact_id,omitempty"`
	CompanyID              *uuid.UUID      `json:"company_id,omitempty"`
	ConvertedOpportunityID *uuid.UUID      `json:"converted_opportunity_id,omitempty"`
	ClosedAt               *time.Time      `json:"closed_at,omitempty"`
	LostReason             string          `json:"lost_reason,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	Version                int             `json:"version"`
}

// LeadListFilter represents filter options for the lead list and board
type LeadListFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	Source    string `form:"source"`
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	ContactID string `form:"contact_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToLeadResponse converts a lead to its response
func ToLeadResponse(l *sales.Lead) LeadResponse {
	return LeadResponse{
		ID:                     l.ID,
		TenantID:               l.TenantID,
		Name:                   l.Name,
		ContactName:            l.ContactName,
		Email:                  l.Email,
		Phone:                  l.Phone,
		CompanyName:            l.CompanyName,
		Source:                 string(l.Source),
		Status:                 l.Stage.String(),
		Position:               l.Position,
		EstimatedValue:         l.EstimatedValue,
		Notes:                  l.Notes,
		ContactID:              l.ContactID,
		CompanyID:              l.CompanyID,
		ConvertedOpportunityID: l.ConvertedOpportunityID,
		ClosedAt:               l.ClosedAt,
		LostReason:             l.LostReason,
		CreatedAt:              l.CreatedAt,
		UpdatedAt:              l.UpdatedAt,
		Version:                l.Version,
	}
}

func (r UpdateLeadRequest) applyTo(d sales.LeadDetails) sales.LeadDetails {
	setIf(&d.Name, r.Name)
	setIf(&d.ContactName, r.ContactName)
	setIf(&d.Email, r.Email)
	setIf(&d.Phone, r.Phone)
	setIf(&d.CompanyName, r.CompanyName)
	if r.Source != nil {
		d.Source = sales.LeadSource(*r.Source)
	}
	setIf(&d.EstimatedValue, r.EstimatedValue)
	setIf(&d.Notes, r.Notes)
	if r.ContactID != nil {
		d.ContactID = r.ContactID
	}
	if r.CompanyID != nil {
		d.CompanyID = r.CompanyID
	}
	return d
}

func (f LeadListFilter) toDomain() (shared.Filter, error) {
	status, err := optionalStage(f.Status)
	if err != nil {
		return shared.Filter{}, err
	}
	return listFilter(f.Search, f.Page, f.PageSize, f.OrderBy, f.OrderDir, map[string]any{
		"status":     status,
		"source":     f.Source,
		"company_id": f.CompanyID,
		"contact_id": f.ContactID,
	}), nil
}

// =============================================================================
// Opportunity DTOs
// =============================================================================

// CreateOpportunityRequest represents a request to create an opportunity
type CreateOpportunityRequest struct {
	Name              string           `json:"name" binding:"required,min=2,max=200"`
	CompanyID         *uuid.UUID       `json:"company_id"`
	ContactID         *uuid.UUID       `json:"contact_id"`
	Stage             string           `json:"stage"`
	Amount            *decimal.Decimal `json:"amount"`
	Probability       *int             `json:"probability" binding:"omitempty,min=0,max=100"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
	CompetitorIDs     []uuid.UUID      `json:"competitor_ids"`
	Notes             string           `json:"notes"`
	CreatedBy         *uuid.UUID       `json:"-"`
}

// UpdateOpportunityRequest represents a partial opportunity update.
// A non-nil CompetitorIDs replaces the whole set.
type UpdateOpportunityRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=2,max=200"`
	CompanyID         *uuid.UUID       `json:"company_id"`
	ContactID         *uuid.UUID       `json:"contact_id"`
	Amount            *decimal.Decimal `json:"amount"`
	Probability       *int             `json:"probability" binding:"omitempty,min=0,max=100"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
	CompetitorIDs     *[]uuid.UUID     `json:"competitor_ids"`
	Notes             *string          `json:"notes"`
}

// OpportunityResponse represents an opportunity in API responses
type OpportunityResponse struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	Name              string          `json:"name"`
	CompanyID         *uuid.UUID      `json:"company_id,omitempty"`
	ContactID         *uuid.UUID      `json:"contact_id,omitempty"`
	LeadID            *uuid.UUID      `json:"lead_id,omitempty"`
	Stage             string          `json:"stage"`
	Position          int             `json:"position"`
	Amount            decimal.Decimal `json:"amount"`
	Probability       int             `json:"probability"`
	WeightedAmount    decimal.Decimal `json:"weighted_amount"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date,omitempty"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	LostReason        string          `json:"lost_reason,omitempty"`
	CompetitorIDs     []uuid.UUID     `json:"competitor_ids"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// OpportunityListFilter represents filter options for the opportunity list and board
type OpportunityListFilter struct {
	Search    string `form:"search"`
	Stage     string `form:"stage"`
	CompanyID string `form:"company_id" binding:"omitempty,uuid"`
	ContactID string `form:"contact_id" binding:"omitempty,uuid"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToOpportunityResponse converts an opportunity to its response
func ToOpportunityResponse(o *sales.Opportunity) OpportunityResponse {
	competitors := o.CompetitorIDs
	if competitors == nil {
		competitors = []uuid.UUID{}
	}
	return OpportunityResponse{
		ID:                o.ID,
		TenantID:          o.TenantID,
		Name:              o.Name,
		CompanyID:         o.CompanyID,
		ContactID:         o.ContactID,
		LeadID:            o.LeadID,
		Stage:             o.Stage.String(),
		Position:          o.Position,
		Amount:            o.Amount,
		Probability:       o.Probability,
		WeightedAmount:    o.WeightedAmount(),
		ExpectedCloseDate: o.ExpectedCloseDate,
		ClosedAt:          o.ClosedAt,
		LostReason:        o.LostReason,
		CompetitorIDs:     competitors,
		Notes:             o.Notes,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		Version:           o.Version,
	}
}

func (r UpdateOpportunityRequest) applyTo(d sales.OpportunityDetails) sales.OpportunityDetails {
	setIf(&d.Name, r.Name)
	if r.CompanyID != nil {
		d.CompanyID = r.CompanyID
	}
	if r.ContactID != nil {
		d.ContactID = r.ContactID
	}
	setIf(&d.Amount, r.Amount)
	if r.Probability != nil {
		d.Probability = r.Probability
	}
	if r.ExpectedCloseDate != nil {
		d.ExpectedCloseDate = r.ExpectedCloseDate
	}
	setIf(&d.CompetitorIDs, r.CompetitorIDs)
	setIf(&d.Notes, r.Notes)
	return d
}

func (f OpportunityListFilter) toDomain() (shared.Filter, error) {
	stage, err := optionalStage(f.Stage)
	if err != nil {
		return shared.Filter{}, err
	}
	return listFilter(f.Search, f.Page, f.PageSize, f.OrderBy, f.OrderDir, map[string]any{
		"stage":      stage,
		"company_id": f.CompanyID,
		"contact_id": f.ContactID,
	}), nil
}

// =============================================================================
// Kanban DTOs
// =============================================================================

// MoveRequest drops a card into a kanban column. A nil Position appends the
// card to the end of the target column.
type MoveRequest struct {
	Stage      string `json:"stage" binding:"required"`
	Position   *int   `json:"position" binding:"omitempty,min=0"`
	LostReason string `json:"lost_reason" binding:"max=500"`
}

// ColumnResponse is one kanban column
type ColumnResponse[T any] struct {
	Stage string          `json:"stage"`
	Label string          `json:"label"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
	Cards []T             `json:"cards"`
}

// BoardResponse is a full kanban board
type BoardResponse[T any] struct {
	Entity  string              `json:"entity"`
	Columns []ColumnResponse[T] `json:"columns"`
	Total   int                 `json:"total"`
	Value   decimal.Decimal     `json:"value"`
}

// ConvertLeadResponse is returned when a lead becomes an opportunity
type ConvertLeadResponse struct {
	Lead        LeadResponse        `json:"lead"`
	Opportunity OpportunityResponse `json:"opportunity"`
}

// =============================================================================
// helpers
// =============================================================================

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// optionalStage parses a stage filter; an empty value means any stage
func optionalStage(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	stage, err := sales.ParseStage(s)
	if err != nil {
		return "", err
	}
	return stage.String(), nil
}

func listFilter(search string, page, pageSize int, orderBy, orderDir string, filters map[string]any) shared.Filter {
	f := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
		Filters:  make(map[string]any, len(filters)),
	}
	for k, v := range filters {
		if v != "" {
			f.Filters[k] = v
		}
	}
	return f.Normalize()
}
