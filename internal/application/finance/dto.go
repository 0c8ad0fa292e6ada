package finance

import (
	"time"

	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateExpenseRequest represents a request to record an expense
type CreateExpenseRequest struct {
	Category      string          `json:"category" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" binding:"omitempty,len=3"`
	Description   string          `json:"description" binding:"required,max=500"`
	Vendor        string          `json:"vendor" binding:"max=200"`
	IncurredAt    time.Time       `json:"incurred_at" binding:"required"`
	CompanyID     *uuid.UUID      `json:"company_id"`
	OpportunityID *uuid.UUID      `json:"opportunity_id"`
	CreatedBy     *uuid.UUID      `json:"-"`
}

// UpdateExpenseRequest represents a partial expense update
type UpdateExpenseRequest struct {
	Category      *string          `json:"category"`
	Amount        *decimal.Decimal `json:"amount"`
	Currency      *string          `json:"currency" binding:"omitempty,len=3"`
	Description   *string          `json:"description" binding:"omitempty,max=500"`
	Vendor        *string          `json:"vendor" binding:"omitempty,max=200"`
	IncurredAt    *time.Time       `json:"incurred_at"`
	CompanyID     *uuid.UUID       `json:"company_id"`
	OpportunityID *uuid.UUID       `json:"opportunity_id"`
}

// RejectExpenseRequest carries the reason for a rejection
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ReceiptUploadRequest asks for a presigned receipt upload URL
type ReceiptUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type"`
}

// ReceiptURLResponse is a presigned URL for a receipt object
type ReceiptURLResponse struct {
	URL         string    `json:"url"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	Vendor          string          `json:"vendor,omitempty"`
	IncurredAt      time.Time       `json:"incurred_at"`
	CompanyID       *uuid.UUID      `json:"company_id,omitempty"`
	OpportunityID   *uuid.UUID      `json:"opportunity_id,omitempty"`
	Status          string          `json:"status"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedBy      *uuid.UUID      `json:"reviewed_by,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	HasReceipt      bool            `json:"has_receipt"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ExpenseListFilter represents filter options for the expense list
type ExpenseListFilter struct {
	Search        string     `form:"search"`
	Category      string     `form:"category"`
	Status        string     `form:"status" binding:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED"`
	CompanyID     string     `form:"company_id" binding:"omitempty,uuid"`
	OpportunityID string     `form:"opportunity_id" binding:"omitempty,uuid"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SummaryRequest bounds an expense summary; both ends are optional
type SummaryRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// CategoryTotal is the spend in one category
type CategoryTotal struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthTotal is the spend in one calendar month
type MonthTotal struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// SummaryResponse aggregates spend over a date range. Only submitted and
// approved expenses count as spent; StatusCounts covers every status.
type SummaryResponse struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	Currency     string          `json:"currency"`
	Total        decimal.Decimal `json:"total"`
	Count        int             `json:"count"`
	ByCategory   []CategoryTotal `json:"by_category"`
	ByMonth      []MonthTotal    `json:"by_month"`
	StatusCounts map[string]int  `json:"status_counts"`
	Budget       decimal.Decimal `json:"budget"`
	BudgetUsed   decimal.Decimal `json:"budget_used_percent"`
}

// ToExpenseResponse converts an expense to its response
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:              e.ID,
		TenantID:        e.TenantID,
		Category:        string(e.Category),
		Amount:          e.Amount,
		Currency:        e.Currency,
		Description:     e.Description,
		Vendor:          e.Vendor,
		IncurredAt:      e.IncurredAt,
		CompanyID:       e.CompanyID,
		OpportunityID:   e.OpportunityID,
		Status:          string(e.Status),
		SubmittedAt:     e.SubmittedAt,
		ReviewedAt:      e.ReviewedAt,
		ReviewedBy:      e.ReviewedBy,
		RejectionReason: e.RejectionReason,
		HasReceipt:      e.HasReceipt(),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Version:         e.Version,
	}
}

func (r UpdateExpenseRequest) applyTo(d finance.ExpenseDetails) finance.ExpenseDetails {
	if r.Category != nil {
		d.Category = finance.ExpenseCategory(*r.Category)
	}
	if r.Amount != nil {
		d.Amount = *r.Amount
	}
	if r.Currency != nil {
		d.Currency = *r.Currency
	}
	if r.Description != nil {
		d.Description = *r.Description
	}
	if r.Vendor != nil {
		d.Vendor = *r.Vendor
	}
	if r.IncurredAt != nil {
		d.IncurredAt = *r.IncurredAt
	}
	if r.CompanyID != nil {
		d.CompanyID = r.CompanyID
	}
	if r.OpportunityID != nil {
		d.OpportunityID = r.OpportunityID
	}
	return d
}

func (f ExpenseListFilter) toDomain() shared.Filter {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  map[string]any{},
	}
	for k, v := range map[string]string{
		"category":       f.Category,
		"status":         f.Status,
		"company_id":     f.CompanyID,
		"opportunity_id": f.OpportunityID,
	} {
		if v != "" {
			out.Filters[k] = v
		}
	}
	if f.From != nil {
		out.Filters["from"] = *f.From
	}
	if f.To != nil {
		out.Filters["to"] = *f.To
	}
	return out.Normalize()
}
