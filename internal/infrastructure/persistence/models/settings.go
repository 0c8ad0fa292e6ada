package models

import (
	"encoding/json"

	"github.com/crm/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
)

// SettingsModel is the persistence model for settings.Settings, one row per tenant
type SettingsModel struct {
	TenantAggregateModel
	CompanyName          string          `gorm:"type:varchar(200)"`
	Currency             string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Locale               string          `gorm:"type:varchar(20);not null;default:'en-US'"`
	Timezone             string          `gorm:"type:varchar(64);not null;default:'UTC'"`
	FiscalYearStartMonth int             `gorm:"not null;default:1"`
	MonthlyExpenseBudget decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DefaultLeadSource    string          `gorm:"type:varchar(30)"`
	StageLabels          string          `gorm:"type:text;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (SettingsModel) TableName() string {
	return "tenant_settings"
}

// ToDomain converts the model to domain Settings
func (m *SettingsModel) ToDomain() *settings.Settings {
	labels := map[string]string{}
	if m.StageLabels != "" {
		_ = json.Unmarshal([]byte(m.StageLabels), &labels)
	}
	return &settings.Settings{
		TenantAggregateRoot:  m.TenantAggregateRoot(),
		CompanyName:          m.CompanyName,
		Currency:             m.Currency,
		Locale:               m.Locale,
		Timezone:             m.Timezone,
		FiscalYearStartMonth: m.FiscalYearStartMonth,
		MonthlyExpenseBudget: m.MonthlyExpenseBudget,
		DefaultLeadSource:    m.DefaultLeadSource,
		StageLabels:          labels,
	}
}

// SettingsModelFromDomain builds a model from domain Settings
func SettingsModelFromDomain(s *settings.Settings) *SettingsModel {
	labels := "{}"
	if len(s.StageLabels) > 0 {
		if b, err := json.Marshal(s.StageLabels); err == nil {
			labels = string(b)
		}
	}
	m := &SettingsModel{
		CompanyName:          s.CompanyName,
		Currency:             s.Currency,
		Locale:               s.Locale,
		Timezone:             s.Timezone,
		FiscalYearStartMonth: s.FiscalYearStartMonth,
		MonthlyExpenseBudget: s.MonthlyExpenseBudget,
		DefaultLeadSource:    s.DefaultLeadSource,
		StageLabels:          labels,
	}
	m.FromDomainTenantAggregateRoot(s.TenantAggregateRoot)
	return m
}
