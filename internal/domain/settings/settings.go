package settings

import (
	"context"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve on images without a zoneinfo database

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeSettingsUpdated is raised whenever tenant settings are saved
const EventTypeSettingsUpdated = "SettingsUpdated"

var currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// Settings holds per-tenant CRM preferences
type Settings struct {
	shared.TenantAggregateRoot
	CompanyName          string
	Currency             string
	Locale               string
	Timezone             string
	FiscalYearStartMonth int
	MonthlyExpenseBudget decimal.Decimal
	DefaultLeadSource    string
	StageLabels          map[string]string
}

// Default returns the settings a tenant has before saving anything
func Default(tenantID uuid.UUID) *Settings {
	return &Settings{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(tenantID),
		Currency:             "USD",
		Locale:               "en-US",
		Timezone:             "UTC",
		FiscalYearStartMonth: 1,
		MonthlyExpenseBudget: decimal.Zero,
		DefaultLeadSource:    "other",
		StageLabels:          map[string]string{},
	}
}

// Apply validates and stores new values
func (s *Settings) Apply(next Settings) error {
	next.Currency = strings.ToUpper(strings.TrimSpace(next.Currency))
	if !currencyRegex.MatchString(next.Currency) {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if next.FiscalYearStartMonth < 1 || next.FiscalYearStartMonth > 12 {
		return shared.NewDomainError("INVALID_FISCAL_MONTH", "Fiscal year start month must be between 1 and 12")
	}
	if next.MonthlyExpenseBudget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Monthly expense budget cannot be negative")
	}
	if _, err := time.LoadLocation(next.Timezone); err != nil || next.Timezone == "" {
		return shared.NewDomainError("INVALID_TIMEZONE", "Timezone must be an IANA zone name")
	}
	if err := shared.ValidateLength("INVALID_COMPANY_NAME", "Company name", next.CompanyName, 0, 200); err != nil {
		return err
	}
	for key, label := range next.StageLabels {
		if _, ok := validStageKeys[strings.ToUpper(key)]; !ok {
			return shared.NewDomainError("INVALID_STAGE", "Stage labels may only name COLD, WARM, HOT, WON or LOST")
		}
		if err := shared.ValidateLength("INVALID_STAGE_LABEL", "Stage label", label, 0, 50); err != nil {
			return err
		}
	}

	s.CompanyName = strings.TrimSpace(next.CompanyName)
	s.Currency = next.Currency
	s.Locale = next.Locale
	s.Timezone = next.Timezone
	s.FiscalYearStartMonth = next.FiscalYearStartMonth
	s.MonthlyExpenseBudget = next.MonthlyExpenseBudget
	s.DefaultLeadSource = next.DefaultLeadSource
	labels := make(map[string]string, len(next.StageLabels))
	for key, label := range next.StageLabels {
		labels[strings.ToUpper(key)] = label
	}
	s.StageLabels = labels
	s.Touch()
	s.AddDomainEvent(shared.NewBaseDomainEventPtr(EventTypeSettingsUpdated, "Settings", s.ID, s.TenantID))

	return nil
}

// Location resolves Timezone, falling back to UTC
func (s *Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FiscalYearRange returns [start, end) of the fiscal year containing t,
// with both bounds at midnight in the tenant's timezone.
func (s *Settings) FiscalYearRange(t time.Time) (time.Time, time.Time) {
	t = t.In(s.Location())
	month := time.Month(s.FiscalYearStartMonth)
	if month < time.January || month > time.December {
		month = time.January
	}
	year := t.Year()
	if t.Month() < month {
		year--
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(1, 0, 0)
}

// validStageKeys mirrors the pipeline stages without importing the sales package
var validStageKeys = map[string]struct{}{
	"COLD": {}, "WARM": {}, "HOT": {}, "WON": {}, "LOST": {},
}

// Repository persists tenant settings
type Repository interface {
	// FindByTenant returns shared.ErrNotFound when nothing was saved yet
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// Load returns the saved settings of a tenant, or the defaults when nothing was saved
func Load(ctx context.Context, repo Repository, tenantID uuid.UUID) (*Settings, error) {
	s, err := repo.FindByTenant(ctx, tenantID)
	if err != nil {
		if shared.IsNotFound(err) {
			return Default(tenantID), nil
		}
		return nil, err
	}
	return s, nil
}

// StageLabel returns the display label of a pipeline stage, falling back to its name
func (s *Settings) StageLabel(stage string) string {
	if label := s.StageLabels[stage]; label != "" {
		return label
	}
	return stage
}
