package models

import (
	"time"

	"github.com/crm/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for finance.Expense
type ExpenseModel struct {
	TenantAggregateModel
	Category        finance.ExpenseCategory `gorm:"type:varchar(30);not null;index"`
	Amount          decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	Currency        string                  `gorm:"type:varchar(3);not null;default:'USD'"`
	Description     string                  `gorm:"type:varchar(500);not null"`
	Vendor          string                  `gorm:"type:varchar(200)"`
	IncurredAt      time.Time               `gorm:"not null;index"`
	CompanyID       *uuid.UUID              `gorm:"type:uuid;index"`
	OpportunityID   *uuid.UUID              `gorm:"type:uuid;index"`
	Status          finance.ExpenseStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	SubmittedAt     *time.Time
	ReviewedAt      *time.Time
	ReviewedBy      *uuid.UUID `gorm:"type:uuid"`
	RejectionReason string     `gorm:"type:varchar(500)"`
	ReceiptKey      string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		TenantAggregateRoot: m.TenantAggregateRoot(),
		Category:            m.Category,
		Amount:              m.Amount,
		Currency:            m.Currency,
		Description:         m.Description,
		Vendor:              m.Vendor,
		IncurredAt:          m.IncurredAt,
		CompanyID:           m.CompanyID,
		OpportunityID:       m.OpportunityID,
		Status:              m.Status,
		SubmittedAt:         m.SubmittedAt,
		ReviewedAt:          m.ReviewedAt,
		ReviewedBy:          m.ReviewedBy,
		RejectionReason:     m.RejectionReason,
		ReceiptKey:          m.ReceiptKey,
	}
}

// ExpenseModelFromDomain builds a model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Category:        e.Category,
		Amount:          e.Amount,
		Currency:        e.Currency,
		Description:     e.Description,
		Vendor:          e.Vendor,
		IncurredAt:      e.IncurredAt,
		CompanyID:       e.CompanyID,
		OpportunityID:   e.OpportunityID,
		Status:          e.Status,
		SubmittedAt:     e.SubmittedAt,
		ReviewedAt:      e.ReviewedAt,
		ReviewedBy:      e.ReviewedBy,
		RejectionReason: e.RejectionReason,
		ReceiptKey:      e.ReceiptKey,
	}
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	return m
}
