package bootstrap

import (
	"context"
	"testing"
	"time"

	activityapp "github.com/crm/backend/internal/application/activity"
	financeapp "github.com/crm/backend/internal/application/finance"
	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/application/report"
	salesapp "github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/tests/testutil"
	"github.com/google/uuid"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServices(t *testing.T, metrics *telemetry.Metrics) *Services {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	store := cache.NewMemoryStore(0)
	services := NewServices(NewRepositories(db.DB), Options{Cache: store, Metrics: metrics})
	t.Cleanup(func() {
		services.Close()
		_ = store.Close()
	})
	return services
}

func TestStageChangeLogsActivity(t *testing.T) {
	ctx := context.Background()
	metrics := telemetry.NewMetrics()
	s := newServices(t, metrics)
	tenant := uuid.New()

	lead, err := s.Leads.Create(ctx, tenant, salesapp.CreateLeadRequest{Name: "Website redesign"})
	require.NoError(t, err)
	assert.Equal(t, "COLD", lead.Status)

	_, err = s.Leads.Move(ctx, tenant, lead.ID, salesapp.MoveRequest{Stage: "hot"})
	require.NoError(t, err)

	logged, err := s.Activities.ListByRelated(ctx, tenant, "lead", lead.ID, activityapp.ActivityListFilter{})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0].Subject, "HOT")

	count, err := promtestutil.GatherAndCount(metrics.Registry(), "crm_pipeline_stage_moves_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWritesInvalidateDashboard(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	tenant := uuid.New()

	before, err := s.Dashboard.GetDashboard(ctx, tenant, report.DashboardRequest{})
	require.NoError(t, err)
	assert.Zero(t, before.Totals.Companies)

	_, err = s.Companies.Create(ctx, tenant, partnerapp.CreateCompanyRequest{Name: "Initech"})
	require.NoError(t, err)

	after, err := s.Dashboard.GetDashboard(ctx, tenant, report.DashboardRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), after.Totals.Companies)
}

func TestDeletesUnlinkExpenses(t *testing.T) {
	ctx := context.Background()
	s := newServices(t, nil)
	tenant := uuid.New()

	company, err := s.Companies.Create(ctx, tenant, partnerapp.CreateCompanyRequest{Name: "Initech"})
	require.NoError(t, err)
	deal, err := s.Deals.Create(ctx, tenant, salesapp.CreateOpportunityRequest{Name: "Fleet renewal"})
	require.NoError(t, err)

	expense, err := s.Expenses.Create(ctx, tenant, financeapp.CreateExpenseRequest{
		Category:      "travel",
		Amount:        decimal.NewFromInt(120),
		Description:   "Client visit",
		IncurredAt:    time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		CompanyID:     &company.ID,
		OpportunityID: &deal.ID,
	})
	require.NoError(t, err)

	require.NoError(t, s.Companies.Delete(ctx, tenant, company.ID))
	require.NoError(t, s.Deals.Delete(ctx, tenant, deal.ID))

	stored, err := s.Expenses.GetByID(ctx, tenant, expense.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompanyID)
	assert.Nil(t, stored.OpportunityID)

	description := "Client visit, day two"
	updated, err := s.Expenses.Update(ctx, tenant, expense.ID, financeapp.UpdateExpenseRequest{Description: &description})
	require.NoError(t, err)
	assert.Equal(t, description, updated.Description)
}
