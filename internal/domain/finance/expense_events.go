package finance

import (
	"github.com/crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeExpense is the aggregate type name for expenses
const AggregateTypeExpense = "Expense"

// Event type constants
const (
	EventTypeExpenseCreated   = "ExpenseCreated"
	EventTypeExpenseUpdated   = "ExpenseUpdated"
	EventTypeExpenseSubmitted = "ExpenseSubmitted"
	EventTypeExpenseApproved  = "ExpenseApproved"
	EventTypeExpenseRejected  = "ExpenseRejected"
	EventTypeExpenseDeleted   = "ExpenseDeleted"
)

// ExpenseEvent is raised on every expense lifecycle change
type ExpenseEvent struct {
	shared.BaseDomainEvent
	Category ExpenseCategory `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Status   ExpenseStatus   `json:"status"`
}

// NewExpenseEvent creates an ExpenseEvent of the given type
func NewExpenseEvent(eventType string, e *Expense) *ExpenseEvent {
	return &ExpenseEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeExpense, e.ID, e.TenantID),
		Category:        e.Category,
		Amount:          e.Amount,
		Status:          e.Status,
	}
}
