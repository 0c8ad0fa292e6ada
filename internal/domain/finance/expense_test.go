package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validExpenseDetails() ExpenseDetails {
	return ExpenseDetails{
		Category:    "Travel",
		Amount:      decimal.NewFromFloat(120.50),
		Description: "Flight to client",
		IncurredAt:  time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewExpense(t *testing.T) {
	t.Run("creates draft with defaults", func(t *testing.T) {
		e, err := NewExpense(uuid.New(), validExpenseDetails())
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusDraft, e.Status)
		assert.Equal(t, ExpenseCategoryTravel, e.Category)
		assert.Equal(t, "USD", e.Currency)
		assert.Len(t, e.GetDomainEvents(), 1)
	})

	tests := []struct {
		name   string
		mutate func(d *ExpenseDetails)
	}{
		{"zero amount", func(d *ExpenseDetails) { d.Amount = decimal.Zero }},
		{"bad category", func(d *ExpenseDetails) { d.Category = "yachts" }},
		{"bad currency", func(d *ExpenseDetails) { d.Currency = "EURO" }},
		{"missing description", func(d *ExpenseDetails) { d.Description = " " }},
		{"missing date", func(d *ExpenseDetails) { d.IncurredAt = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validExpenseDetails()
			tt.mutate(&d)
			_, err := NewExpense(uuid.New(), d)
			assert.Error(t, err)
		})
	}
}

func TestExpense_Workflow(t *testing.T) {
	reviewer := uuid.New()

	t.Run("submit then approve", func(t *testing.T) {
		e, err := NewExpense(uuid.New(), validExpenseDetails())
		require.NoError(t, err)

		require.NoError(t, e.Submit())
		assert.Equal(t, ExpenseStatusSubmitted, e.Status)
		assert.NotNil(t, e.SubmittedAt)
		assert.Error(t, e.Update(validExpenseDetails()))
		assert.Error(t, e.CanDelete())

		require.NoError(t, e.Approve(reviewer))
		assert.Equal(t, ExpenseStatusApproved, e.Status)
		require.NotNil(t, e.ReviewedBy)
		assert.Equal(t, reviewer, *e.ReviewedBy)
		assert.Error(t, e.Submit())
	})

	t.Run("reject requires reason and allows resubmit", func(t *testing.T) {
		e, err := NewExpense(uuid.New(), validExpenseDetails())
		require.NoError(t, err)
		assert.Error(t, e.Approve(reviewer))

		require.NoError(t, e.Submit())
		assert.Error(t, e.Reject(reviewer, ""))
		require.NoError(t, e.Reject(reviewer, "missing receipt"))
		assert.Equal(t, "missing receipt", e.RejectionReason)
		assert.NoError(t, e.CanDelete())

		require.NoError(t, e.Submit())
		assert.Empty(t, e.RejectionReason)
	})

	t.Run("receipt", func(t *testing.T) {
		e, err := NewExpense(uuid.New(), validExpenseDetails())
		require.NoError(t, err)
		assert.False(t, e.HasReceipt())
		assert.Error(t, e.AttachReceipt(""))
		require.NoError(t, e.AttachReceipt("receipts/a.pdf"))
		assert.True(t, e.HasReceipt())
	})
}

func TestExpenseStatus(t *testing.T) {
	assert.True(t, ExpenseStatusApproved.CountsAsSpent())
	assert.True(t, ExpenseStatusSubmitted.CountsAsSpent())
	assert.False(t, ExpenseStatusDraft.CountsAsSpent())
	assert.False(t, ExpenseStatusRejected.CountsAsSpent())
}
