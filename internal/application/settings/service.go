package settings

import (
	"context"
	"strings"
	"time"

	"github.com/crm/backend/internal/application/event"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UpdateSettingsRequest is a partial settings update; nil fields keep their value
type UpdateSettingsRequest struct {
	CompanyName          *string            `json:"company_name" binding:"omitempty,max=200"`
	Currency             *string            `json:"currency" binding:"omitempty,len=3"`
	Locale               *string            `json:"locale" binding:"omitempty,max=20"`
	Timezone             *string            `json:"timezone" binding:"omitempty,max=64"`
	FiscalYearStartMonth *int               `json:"fiscal_year_start_month" binding:"omitempty,min=1,max=12"`
	MonthlyExpenseBudget *decimal.Decimal   `json:"monthly_expense_budget"`
	DefaultLeadSource    *string            `json:"default_lead_source"`
	StageLabels          *map[string]string `json:"stage_labels"`
}

// SettingsResponse represents tenant settings in API responses
type SettingsResponse struct {
	TenantID             uuid.UUID         `json:"tenant_id"`
	CompanyName          string            `json:"company_name"`
	Currency             string            `json:"currency"`
	Locale               string            `json:"locale"`
	Timezone             string            `json:"timezone"`
	FiscalYearStartMonth int               `json:"fiscal_year_start_month"`
	MonthlyExpenseBudget decimal.Decimal   `json:"monthly_expense_budget"`
	DefaultLeadSource    string            `json:"default_lead_source"`
	StageLabels          map[string]string `json:"stage_labels"`
	Saved                bool              `json:"saved"`
	UpdatedAt            *time.Time        `json:"updated_at,omitempty"`
}

// Service reads and updates tenant settings
type Service struct {
	repo   settings.Repository
	events *event.Dispatcher
}

// NewService creates a new settings Service
func NewService(repo settings.Repository, events *event.Dispatcher) *Service {
	return &Service{repo: repo, events: events}
}

// Get returns the tenant settings, or the defaults when nothing was saved
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (*SettingsResponse, error) {
	current, saved, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	response := toResponse(current, saved)
	return &response, nil
}

// Update merges the given fields into the current settings and saves them
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, req UpdateSettingsRequest) (*SettingsResponse, error) {
	current, _, err := s.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	next := *current
	if req.CompanyName != nil {
		next.CompanyName = *req.CompanyName
	}
	if req.Currency != nil {
		next.Currency = *req.Currency
	}
	if req.Locale != nil {
		next.Locale = *req.Locale
	}
	if req.Timezone != nil {
		next.Timezone = *req.Timezone
	}
	if req.FiscalYearStartMonth != nil {
		next.FiscalYearStartMonth = *req.FiscalYearStartMonth
	}
	if req.MonthlyExpenseBudget != nil {
		next.MonthlyExpenseBudget = *req.MonthlyExpenseBudget
	}
	if req.DefaultLeadSource != nil {
		source := sales.LeadSource(strings.ToLower(strings.TrimSpace(*req.DefaultLeadSource)))
		if !source.IsValid() {
			return nil, shared.NewDomainError("INVALID_SOURCE", "Default lead source is not valid")
		}
		next.DefaultLeadSource = string(source)
	}
	if req.StageLabels != nil {
		next.StageLabels = *req.StageLabels
	}

	if err := current.Apply(next); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, current)

	response := toResponse(current, true)
	return &response, nil
}

func (s *Service) load(ctx context.Context, tenantID uuid.UUID) (*settings.Settings, bool, error) {
	current, err := s.repo.FindByTenant(ctx, tenantID)
	if err != nil {
		if shared.IsNotFound(err) {
			return settings.Default(tenantID), false, nil
		}
		return nil, false, err
	}
	return current, true, nil
}

func toResponse(s *settings.Settings, saved bool) SettingsResponse {
	labels := make(map[string]string, len(s.StageLabels))
	for k, v := range s.StageLabels {
		labels[k] = v
	}
	resp := SettingsResponse{
		TenantID:             s.TenantID,
		CompanyName:          s.CompanyName,
		Currency:             s.Currency,
		Locale:               s.Locale,
		Timezone:             s.Timezone,
		FiscalYearStartMonth: s.FiscalYearStartMonth,
		MonthlyExpenseBudget: s.MonthlyExpenseBudget,
		DefaultLeadSource:    s.DefaultLeadSource,
		StageLabels:          labels,
		Saved:                saved,
	}
	if saved {
		updated := s.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
