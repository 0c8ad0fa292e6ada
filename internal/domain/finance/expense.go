package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	ExpenseCategoryTravel    ExpenseCategory = "travel"
	ExpenseCategoryMeals     ExpenseCategory = "meals"
	ExpenseCategoryOffice    ExpenseCategory = "office"
	ExpenseCategorySoftware  ExpenseCategory = "software"
	ExpenseCategoryMarketing ExpenseCategory = "marketing"
	ExpenseCategorySalary    ExpenseCategory = "salary"
	ExpenseCategoryRent      ExpenseCategory = "rent"
	ExpenseCategoryUtilities ExpenseCategory = "utilities"
	ExpenseCategoryTraining  ExpenseCategory = "training"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

// ExpenseCategories lists every category in reporting order
var ExpenseCategories = []ExpenseCategory{
	ExpenseCategoryTravel, ExpenseCategoryMeals, ExpenseCategoryOffice, ExpenseCategorySoftware,
	ExpenseCategoryMarketing, ExpenseCategorySalary, ExpenseCategoryRent, ExpenseCategoryUtilities,
	ExpenseCategoryTraining, ExpenseCategoryOther,
}

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ExpenseStatus represents the approval status of an expense
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "DRAFT"
	ExpenseStatusSubmitted ExpenseStatus = "SUBMITTED"
	ExpenseStatusApproved  ExpenseStatus = "APPROVED"
	ExpenseStatusRejected  ExpenseStatus = "REJECTED"
)

// IsValid checks if the status is known
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusDraft, ExpenseStatusSubmitted, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	}
	return false
}

// IsEditable reports whether the expense may still be changed or deleted
func (s ExpenseStatus) IsEditable() bool {
	return s == ExpenseStatusDraft || s == ExpenseStatusRejected
}

// CountsAsSpent reports whether the expense is included in spend totals
func (s ExpenseStatus) CountsAsSpent() bool {
	return s == ExpenseStatusSubmitted || s == ExpenseStatusApproved
}

// Expense is a business cost, optionally linked to a company or opportunity
type Expense struct {
	shared.TenantAggregateRoot
	Category        ExpenseCategory
	Amount          decimal.Decimal
	Currency        string
	Description     string
	Vendor          string
	IncurredAt      time.Time
	CompanyID       *uuid.UUID
	OpportunityID   *uuid.UUID
	Status          ExpenseStatus
	SubmittedAt     *time.Time
	ReviewedAt      *time.Time
	ReviewedBy      *uuid.UUID
	RejectionReason string
	ReceiptKey      string
}

// ExpenseDetails carries the editable expense fields
type ExpenseDetails struct {
	Category      ExpenseCategory
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Vendor        string
	IncurredAt    time.Time
	CompanyID     *uuid.UUID
	OpportunityID *uuid.UUID
}

// NewExpense creates a draft expense
func NewExpense(tenantID uuid.UUID, details ExpenseDetails) (*Expense, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	expense := &Expense{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              ExpenseStatusDraft,
	}
	expense.apply(details)
	expense.AddDomainEvent(NewExpenseEvent(EventTypeExpenseCreated, expense))

	return expense, nil
}

// Details returns the current editable fields
func (e *Expense) Details() ExpenseDetails {
	return ExpenseDetails{
		Category:      e.Category,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Description:   e.Description,
		Vendor:        e.Vendor,
		IncurredAt:    e.IncurredAt,
		CompanyID:     e.CompanyID,
		OpportunityID: e.OpportunityID,
	}
}

// Update replaces the editable fields; only draft or rejected expenses can change
func (e *Expense) Update(details ExpenseDetails) error {
	if !e.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update expense in %s status", e.Status))
	}
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	e.apply(details)
	e.Touch()
	e.AddDomainEvent(NewExpenseEvent(EventTypeExpenseUpdated, e))

	return nil
}

// CanDelete reports whether the expense may be removed
func (e *Expense) CanDelete() error {
	if !e.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete expense in %s status", e.Status))
	}
	return nil
}

// Submit sends a draft or rejected expense for approval
func (e *Expense) Submit() error {
	if !e.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit expense in %s status", e.Status))
	}

	now := time.Now()
	e.Status = ExpenseStatusSubmitted
	e.SubmittedAt = &now
	e.RejectionReason = ""
	e.Touch()
	e.AddDomainEvent(NewExpenseEvent(EventTypeExpenseSubmitted, e))

	return nil
}

// Approve approves a submitted expense
func (e *Expense) Approve(reviewer uuid.UUID) error {
	if e.Status != ExpenseStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve expense in %s status", e.Status))
	}

	e.markReviewed(reviewer)
	e.Status = ExpenseStatusApproved
	e.AddDomainEvent(NewExpenseEvent(EventTypeExpenseApproved, e))

	return nil
}

// Reject rejects a submitted expense with a reason
func (e *Expense) Reject(reviewer uuid.UUID, reason string) error {
	if e.Status != ExpenseStatusSubmitted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject expense in %s status", e.Status))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	e.markReviewed(reviewer)
	e.Status = ExpenseStatusRejected
	e.RejectionReason = reason
	e.AddDomainEvent(NewExpenseEvent(EventTypeExpenseRejected, e))

	return nil
}

// AttachReceipt records the object storage key of the receipt
func (e *Expense) AttachReceipt(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt key cannot be empty")
	}
	e.ReceiptKey = key
	e.Touch()
	return nil
}

// HasReceipt reports whether a receipt has been attached
func (e *Expense) HasReceipt() bool {
	return e.ReceiptKey != ""
}

func (e *Expense) markReviewed(reviewer uuid.UUID) {
	now := time.Now()
	e.ReviewedAt = &now
	if reviewer != uuid.Nil {
		e.ReviewedBy = &reviewer
	}
	e.Touch()
}

func (e *Expense) apply(d ExpenseDetails) {
	e.Category = d.Category
	e.Amount = d.Amount
	e.Currency = d.Currency
	e.Description = d.Description
	e.Vendor = d.Vendor
	e.IncurredAt = d.IncurredAt
	e.CompanyID = d.CompanyID
	e.OpportunityID = d.OpportunityID
}

func (d ExpenseDetails) normalized() ExpenseDetails {
	d.Category = ExpenseCategory(strings.ToLower(strings.TrimSpace(string(d.Category))))
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = "USD"
	}
	d.Description = strings.TrimSpace(d.Description)
	if d.CompanyID != nil && *d.CompanyID == uuid.Nil {
		d.CompanyID = nil
	}
	if d.OpportunityID != nil && *d.OpportunityID == uuid.Nil {
		d.OpportunityID = nil
	}
	return d
}

func (d ExpenseDetails) validate() error {
	if !d.Category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if d.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if len(d.Currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if err := shared.ValidateRequiredLength("INVALID_DESCRIPTION", "Description", d.Description, 1, 500); err != nil {
		return err
	}
	if d.IncurredAt.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Incurred date is required")
	}
	return nil
}
