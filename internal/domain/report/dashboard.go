package report

import (
	"sort"
	"time"

	"github.com/crm/backend/internal/domain/finance"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// TopOpportunityCount is how many open opportunities the dashboard highlights
const TopOpportunityCount = 5

var hundred = decimal.NewFromInt(100)

// DashboardInput is everything the KPI computation needs for one tenant
type DashboardInput struct {
	From time.Time
	To   time.Time

	ContactCount      int64
	CompanyCount      int64
	CompetitorCount   int64
	OpenActivities    int64
	OverdueActivities int64

	Leads         []sales.Lead
	Opportunities []sales.Opportunity
	// Expenses must already be limited to [From, To)
	Expenses      []finance.Expense
	MonthlyBudget decimal.Decimal
}

// StageMetric is the count and value of cards in one stage
type StageMetric struct {
	Stage sales.Stage
	Count int
	Value decimal.Decimal
}

// MonthMetric is a value for one calendar month
type MonthMetric struct {
	Month string // YYYY-MM
	Value decimal.Decimal
}

// CategoryMetric is the spend in one expense category
type CategoryMetric struct {
	Category finance.ExpenseCategory
	Count    int
	Amount   decimal.Decimal
}

// Dashboard holds the derived KPIs
type Dashboard struct {
	From time.Time
	To   time.Time

	ContactCount      int64
	CompanyCount      int64
	CompetitorCount   int64
	LeadCount         int
	OpportunityCount  int
	OpenActivities    int64
	OverdueActivities int64

	LeadsByStage         []StageMetric
	OpportunitiesByStage []StageMetric

	PipelineValue         decimal.Decimal
	WeightedPipelineValue decimal.Decimal
	WonValue              decimal.Decimal
	WonCount              int
	LostCount             int
	WinRate               decimal.Decimal
	LeadConversionRate    decimal.Decimal
	AverageDealSize       decimal.Decimal

	MonthlyRevenue       []MonthMetric
	MonthlyExpenses      []MonthMetric
	ExpensesByCategory   []CategoryMetric
	TotalExpenses        decimal.Decimal
	BudgetUtilization    decimal.Decimal
	TopOpenOpportunities []sales.Opportunity
}

// ComputeDashboard derives every KPI from in-memory collections
func ComputeDashboard(in DashboardInput) Dashboard {
	d := Dashboard{
		From:              in.From,
		To:                in.To,
		ContactCount:      in.ContactCount,
		CompanyCount:      in.CompanyCount,
		CompetitorCount:   in.CompetitorCount,
		LeadCount:         len(in.Leads),
		OpportunityCount:  len(in.Opportunities),
		OpenActivities:    in.OpenActivities,
		OverdueActivities: in.OverdueActivities,
	}

	months := MonthsBetween(in.From, in.To)

	d.LeadsByStage = stageMetrics(in.Leads, sales.LeadCard, sales.LeadValue)
	d.OpportunitiesByStage = stageMetrics(in.Opportunities, sales.OpportunityCard, sales.OpportunityValue)

	d.PipelineValue = decimal.Zero
	d.WeightedPipelineValue = decimal.Zero
	d.WonValue = decimal.Zero
	revenue := newMonthSeries(months, in.From.Location())
	open := make([]sales.Opportunity, 0)

	for _, opp := range in.Opportunities {
		if opp.Stage.IsOpen() {
			d.PipelineValue = d.PipelineValue.Add(opp.Amount)
			d.WeightedPipelineValue = d.WeightedPipelineValue.Add(opp.WeightedAmount())
			open = append(open, opp)
			continue
		}
		if !closedInRange(opp.ClosedAt, in.From, in.To) {
			continue
		}
		switch opp.Stage {
		case sales.StageWon:
			d.WonCount++
			d.WonValue = d.WonValue.Add(opp.Amount)
			revenue.add(*opp.ClosedAt, opp.Amount)
		case sales.StageLost:
			d.LostCount++
		}
	}

	d.WinRate = percentage(d.WonCount, d.WonCount+d.LostCount)
	d.AverageDealSize = decimal.Zero
	if d.WonCount > 0 {
		d.AverageDealSize = d.WonValue.Div(decimal.NewFromInt(int64(d.WonCount))).Round(2)
	}

	wonLeads, lostLeads := 0, 0
	for _, lead := range in.Leads {
		if !closedInRange(lead.ClosedAt, in.From, in.To) {
			continue
		}
		switch lead.Stage {
		case sales.StageWon:
			wonLeads++
		case sales.StageLost:
			lostLeads++
		}
	}
	d.LeadConversionRate = percentage(wonLeads, wonLeads+lostLeads)

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Amount.GreaterThan(open[j].Amount)
	})
	if len(open) > TopOpportunityCount {
		open = open[:TopOpportunityCount]
	}
	d.TopOpenOpportunities = open

	spend := newMonthSeries(months, in.From.Location())
	byCategory := make(map[finance.ExpenseCategory]*CategoryMetric)
	d.TotalExpenses = decimal.Zero
	for _, e := range in.Expenses {
		if !e.Status.CountsAsSpent() {
			continue
		}
		d.TotalExpenses = d.TotalExpenses.Add(e.Amount)
		spend.add(e.IncurredAt, e.Amount)
		m, ok := byCategory[e.Category]
		if !ok {
			m = &CategoryMetric{Category: e.Category, Amount: decimal.Zero}
			byCategory[e.Category] = m
		}
		m.Count++
		m.Amount = m.Amount.Add(e.Amount)
	}
	d.ExpensesByCategory = make([]CategoryMetric, 0, len(byCategory))
	for _, category := range finance.ExpenseCategories {
		if m, ok := byCategory[category]; ok {
			d.ExpensesByCategory = append(d.ExpensesByCategory, *m)
		}
	}

	d.MonthlyRevenue = revenue.metrics()
	d.MonthlyExpenses = spend.metrics()

	d.BudgetUtilization = decimal.Zero
	budget := in.MonthlyBudget.Mul(decimal.NewFromInt(int64(len(months))))
	if budget.GreaterThan(decimal.Zero) {
		d.BudgetUtilization = d.TotalExpenses.Div(budget).Mul(hundred).Round(2)
	}

	return d
}

// MonthsBetween lists the YYYY-MM keys of every month overlapping [from, to)
func MonthsBetween(from, to time.Time) []string {
	if !to.After(from) {
		return []string{}
	}
	months := make([]string, 0, 12)
	cursor := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	for cursor.Before(to) {
		months = append(months, cursor.Format("2006-01"))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

func stageMetrics[T any](items []T, card func(T) sales.Card, value func(T) decimal.Decimal) []StageMetric {
	board := sales.BuildBoard(items, card, value)
	metrics := make([]StageMetric, len(board))
	for i, col := range board {
		metrics[i] = StageMetric{Stage: col.Stage, Count: col.Count, Value: col.Value}
	}
	return metrics
}

func closedInRange(closedAt *time.Time, from, to time.Time) bool {
	return closedAt != nil && !closedAt.Before(from) && closedAt.Before(to)
}

func percentage(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).Round(2)
}

// MonthKey is the YYYY-MM bucket of at as seen from loc
func MonthKey(at time.Time, loc *time.Location) string {
	return at.In(loc).Format("2006-01")
}

type monthSeries struct {
	order  []string
	loc    *time.Location
	values map[string]decimal.Decimal
}

func newMonthSeries(months []string, loc *time.Location) *monthSeries {
	values := make(map[string]decimal.Decimal, len(months))
	for _, m := range months {
		values[m] = decimal.Zero
	}
	return &monthSeries{order: months, loc: loc, values: values}
}

// add buckets in the range's zone and ignores dates outside the series
func (s *monthSeries) add(at time.Time, amount decimal.Decimal) {
	key := MonthKey(at, s.loc)
	if v, ok := s.values[key]; ok {
		s.values[key] = v.Add(amount)
	}
}

func (s *monthSeries) metrics() []MonthMetric {
	out := make([]MonthMetric, len(s.order))
	for i, m := range s.order {
		out[i] = MonthMetric{Month: m, Value: s.values[m]}
	}
	return out
}
