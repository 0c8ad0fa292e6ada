package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appactivity "github.com/crm/backend/internal/application/activity"
	appsales "github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/domain/activity"
	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/report"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/settings"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ActivityHighlightCount is how many upcoming and recent activities the dashboard lists
const ActivityHighlightCount = 5

// DefaultCacheTTL applies when the service is built with a non-positive TTL
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "dashboard:"

// Repositories groups the stores the dashboard reads from
type Repositories struct {
	Companies     partner.CompanyRepository
	Contacts      partner.ContactRepository
	Competitors   partner.CompetitorRepository
	Leads         sales.LeadRepository
	Opportunities sales.OpportunityRepository
	Activities    activity.Repository
	Expenses      finance.ExpenseRepository
	Settings      settings.Repository
}

// DashboardService computes and caches the tenant dashboard
type DashboardService struct {
	repos   Repositories
	cache   cache.Store
	ttl     time.Duration
	metrics *telemetry.BusinessMetrics
	now     func() time.Time
}

// NewDashboardService creates a new DashboardService. store and metrics may be nil.
func NewDashboardService(repos Repositories, store cache.Store, ttl time.Duration, metrics *telemetry.BusinessMetrics) *DashboardService {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &DashboardService{
		repos:   repos,
		cache:   store,
		ttl:     ttl,
		metrics: metrics,
		now:     time.Now,
	}
}

// GetDashboard returns the dashboard for [from, to), served from cache when fresh
func (s *DashboardService) GetDashboard(ctx context.Context, tenantID uuid.UUID, req DashboardRequest) (*DashboardResponse, error) {
	prefs, err := settings.Load(ctx, s.repos.Settings, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from, to := prefs.FiscalYearRange(now)
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}
	if !to.After(from) {
		return nil, shared.NewDomainError("INVALID_RANGE", "The end of the range must be after its start")
	}

	key := dashboardKey(tenantID, from, to)
	if cached, ok := s.lookup(ctx, key); ok {
		return cached, nil
	}

	dashboard, err := s.compute(ctx, tenantID, prefs, from, to, now)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, dashboard)
	return dashboard, nil
}

// Invalidate drops every cached dashboard of the tenant
func (s *DashboardService) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeletePrefix(ctx, tenantPrefix(tenantID))
}

func (s *DashboardService) compute(ctx context.Context, tenantID uuid.UUID, prefs *settings.Settings, from, to, now time.Time) (*DashboardResponse, error) {
	var (
		in       = report.DashboardInput{From: from, To: to, MonthlyBudget: prefs.MonthlyExpenseBudget}
		upcoming []activity.Activity
		recent   []activity.Activity
		all      = shared.Filter{}
		open     = shared.Filter{Filters: map[string]interface{}{"completed": false}}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.CompanyCount, err = s.repos.Companies.CountForTenant(gctx, tenantID, all)
		return wrapLoad("companies", err)
	})
	g.Go(func() (err error) {
		in.ContactCount, err = s.repos.Contacts.CountForTenant(gctx, tenantID, all)
		return wrapLoad("contacts", err)
	})
	g.Go(func() (err error) {
		in.CompetitorCount, err = s.repos.Competitors.CountForTenant(gctx, tenantID, all)
		return wrapLoad("competitors", err)
	})
	g.Go(func() (err error) {
		in.Leads, err = s.repos.Leads.FindAllUnpaged(gctx, tenantID, all)
		return wrapLoad("leads", err)
	})
	g.Go(func() (err error) {
		in.Opportunities, err = s.repos.Opportunities.FindAllUnpaged(gctx, tenantID, all)
		return wrapLoad("opportunities", err)
	})
	g.Go(func() (err error) {
		in.Expenses, err = s.repos.Expenses.FindIncurredBetween(gctx, tenantID, from, to)
		return wrapLoad("expenses", err)
	})
	g.Go(func() (err error) {
		in.OpenActivities, err = s.repos.Activities.CountForTenant(gctx, tenantID, open)
		return wrapLoad("open activities", err)
	})
	g.Go(func() (err error) {
		in.OverdueActivities, err = s.repos.Activities.CountOverdue(gctx, tenantID, now)
		return wrapLoad("overdue activities", err)
	})
	g.Go(func() (err error) {
		upcoming, err = s.repos.Activities.FindUpcoming(gctx, tenantID, now, ActivityHighlightCount)
		return wrapLoad("upcoming activities", err)
	})
	g.Go(func() (err error) {
		recent, err = s.repos.Activities.FindRecent(gctx, tenantID, ActivityHighlightCount)
		return wrapLoad("recent activities", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := report.ComputeDashboard(in)

	top := make([]appsales.OpportunityResponse, len(d.TopOpenOpportunities))
	for i := range d.TopOpenOpportunities {
		top[i] = appsales.ToOpportunityResponse(&d.TopOpenOpportunities[i])
	}
	budget := prefs.MonthlyExpenseBudget.Mul(decimalMonths(from, to))

	return &DashboardResponse{
		From:     d.From,
		To:       d.To,
		Currency: prefs.Currency,
		Totals: TotalsResponse{
			Contacts:          d.ContactCount,
			Companies:         d.CompanyCount,
			Competitors:       d.CompetitorCount,
			Leads:             d.LeadCount,
			Opportunities:     d.OpportunityCount,
			OpenActivities:    d.OpenActivities,
			OverdueActivities: d.OverdueActivities,
		},
		LeadsByStage:         toStageResponses(d.LeadsByStage, prefs.StageLabel),
		OpportunitiesByStage: toStageResponses(d.OpportunitiesByStage, prefs.StageLabel),
		Pipeline: PipelineResponse{
			Value:              d.PipelineValue,
			WeightedValue:      d.WeightedPipelineValue,
			WonValue:           d.WonValue,
			WonCount:           d.WonCount,
			LostCount:          d.LostCount,
			WinRate:            d.WinRate,
			LeadConversionRate: d.LeadConversionRate,
			AverageDealSize:    d.AverageDealSize,
		},
		MonthlyRevenue:  toMonthResponses(d.MonthlyRevenue),
		MonthlyExpenses: toMonthResponses(d.MonthlyExpenses),
		Expenses: ExpensesResponse{
			Total:             d.TotalExpenses,
			Budget:            budget,
			BudgetUtilization: d.BudgetUtilization,
			ByCategory:        toCategoryResponses(d.ExpensesByCategory),
		},
		TopOpportunities:   top,
		UpcomingActivities: appactivity.ToActivityResponses(upcoming, now),
		RecentActivities:   appactivity.ToActivityResponses(recent, now),
		GeneratedAt:        now,
	}, nil
}

// lookup reads a cached dashboard. Cache failures are logged and treated as misses.
func (s *DashboardService) lookup(ctx context.Context, key string) (*DashboardResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.L(ctx).Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		found = false
	}
	var cached DashboardResponse
	if found {
		if err := json.Unmarshal(raw, &cached); err != nil {
			logger.L(ctx).Warn("dashboard cache entry is corrupt", zap.String("key", key), zap.Error(err))
			found = false
		}
	}
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(found)
	}
	if !found {
		return nil, false
	}
	return &cached, true
}

func (s *DashboardService) store(ctx context.Context, key string, dashboard *DashboardResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(dashboard)
	if err != nil {
		logger.L(ctx).Warn("dashboard encode failed", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		logger.L(ctx).Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func tenantPrefix(tenantID uuid.UUID) string {
	return cacheKeyPrefix + tenantID.String() + ":"
}

func dashboardKey(tenantID uuid.UUID, from, to time.Time) string {
	return fmt.Sprintf("%s%d:%d", tenantPrefix(tenantID), from.UTC().Unix(), to.UTC().Unix())
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

func decimalMonths(from, to time.Time) decimal.Decimal {
	return decimal.NewFromInt(int64(len(report.MonthsBetween(from, to))))
}
