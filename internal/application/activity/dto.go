package activity

import (
	"strconv"
	"time"

	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CreateActivityRequest represents a request to log an activity
type CreateActivityRequest struct {
	Type          string     `json:"type" binding:"required,oneof=call email meeting task note"`
	Subject       string     `json:"subject" binding:"required,min=2,max=200"`
	Description   string     `json:"description"`
	DueAt         *time.Time `json:"due_at"`
	ContactID     *uuid.UUID `json:"contact_id"`
	CompanyID     *uuid.UUID `json:"company_id"`
	LeadID        *uuid.UUID `json:"lead_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id"`
	CreatedBy     *uuid.UUID `json:"-"`
}

// UpdateActivityRequest represents a partial activity update
type UpdateActivityRequest struct {
	Type          *string    `json:"type" binding:"omitempty,oneof=call email meeting task note"`
	Subject       *string    `json:"subject" binding:"omitempty,min=2,max=200"`
	Description   *string    `json:"description"`
	DueAt         *time.Time `json:"due_at"`
	ContactID     *uuid.UUID `json:"contact_id"`
	CompanyID     *uuid.UUID `json:"company_id"`
	LeadID        *uuid.UUID `json:"lead_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id"`
}

// ActivityResponse represents an activity in API responses
type ActivityResponse struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	Type          string     `json:"type"`
	Subject       string     `json:"subject"`
	Description   string     `json:"description,omitempty"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Completed     bool       `json:"completed"`
	Overdue       bool       `json:"overdue"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	CompanyID     *uuid.UUID `json:"company_id,omitempty"`
	LeadID        *uuid.UUID `json:"lead_id,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Version       int        `json:"version"`
}

// ActivityListFilter represents filter options for the activity list
type ActivityListFilter struct {
	Search        string `form:"search"`
	Type          string `form:"type" binding:"omitempty,oneof=call email meeting task note"`
	Completed     string `form:"completed" binding:"omitempty,oneof=true false"`
	ContactID     string `form:"contact_id" binding:"omitempty,uuid"`
	CompanyID     string `form:"company_id" binding:"omitempty,uuid"`
	LeadID        string `form:"lead_id" binding:"omitempty,uuid"`
	OpportunityID string `form:"opportunity_id" binding:"omitempty,uuid"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToActivityResponse converts an activity to its response
func ToActivityResponse(a *activity.Activity, now time.Time) ActivityResponse {
	return ActivityResponse{
		ID:            a.ID,
		TenantID:      a.TenantID,
		Type:          string(a.Type),
		Subject:       a.Subject,
		Description:   a.Description,
		DueAt:         a.DueAt,
		CompletedAt:   a.CompletedAt,
		Completed:     a.IsCompleted(),
		Overdue:       a.IsOverdue(now),
		ContactID:     a.ContactID,
		CompanyID:     a.CompanyID,
		LeadID:        a.LeadID,
		OpportunityID: a.OpportunityID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
		Version:       a.Version,
	}
}

// ToActivityResponses converts a slice of activities
func ToActivityResponses(items []activity.Activity, now time.Time) []ActivityResponse {
	out := make([]ActivityResponse, len(items))
	for i := range items {
		out[i] = ToActivityResponse(&items[i], now)
	}
	return out
}

func (r UpdateActivityRequest) applyTo(d activity.Details) activity.Details {
	if r.Type != nil {
		d.Type = activity.Type(*r.Type)
	}
	if r.Subject != nil {
		d.Subject = *r.Subject
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.DueAt != nil {
		d.DueAt = r.DueAt
	}
	if r.ContactID != nil {
		d.ContactID = r.ContactID
	}
	if r.CompanyID != nil {
		d.CompanyID = r.CompanyID
	}
	if r.LeadID != nil {
		d.LeadID = r.LeadID
	}
	if r.OpportunityID != nil {
		d.OpportunityID = r.OpportunityID
	}
	return d
}

func (f ActivityListFilter) toDomain() shared.Filter {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]any{},
	}
	for k, v := range map[string]string{
		"type":           f.Type,
		"contact_id":     f.ContactID,
		"company_id":     f.CompanyID,
		"lead_id":        f.LeadID,
		"opportunity_id": f.OpportunityID,
	} {
		if v != "" {
			out.Filters[k] = v
		}
	}
	if completed, err := strconv.ParseBool(f.Completed); err == nil {
		out.Filters["completed"] = completed
	}
	return out.Normalize()
}
