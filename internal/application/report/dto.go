package report

import (
	"time"

	"github.com/crm/backend/internal/application/activity"
	"github.com/crm/backend/internal/application/sales"
	"github.com/crm/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// DashboardRequest selects the reporting range; nil bounds default to the fiscal year
type DashboardRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// TotalsResponse holds the record counts
type TotalsResponse struct {
	Contacts          int64 `json:"contacts"`
	Companies         int64 `json:"companies"`
	Competitors       int64 `json:"competitors"`
	Leads             int   `json:"leads"`
	Opportunities     int   `json:"opportunities"`
	OpenActivities    int64 `json:"open_activities"`
	OverdueActivities int64 `json:"overdue_activities"`
}

// StageResponse is one kanban stage in the funnel charts
type StageResponse struct {
	Stage string          `json:"stage"`
	Label string          `json:"label"`
	Count int             `json:"count"`
	Value decimal.Decimal `json:"value"`
}

// PipelineResponse holds the deal KPIs
type PipelineResponse struct {
	Value              decimal.Decimal `json:"value"`
	WeightedValue      decimal.Decimal `json:"weighted_value"`
	WonValue           decimal.Decimal `json:"won_value"`
	WonCount           int             `json:"won_count"`
	LostCount          int             `json:"lost_count"`
	WinRate            decimal.Decimal `json:"win_rate"`
	LeadConversionRate decimal.Decimal `json:"lead_conversion_rate"`
	AverageDealSize    decimal.Decimal `json:"average_deal_size"`
}

// MonthResponse is a value for one YYYY-MM month
type MonthResponse struct {
	Month string          `json:"month"`
	Value decimal.Decimal `json:"value"`
}

// CategoryResponse is the spend in one expense category
type CategoryResponse struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Amount   decimal.Decimal `json:"amount"`
}

// ExpensesResponse holds the spend KPIs
type ExpensesResponse struct {
	Total             decimal.Decimal    `json:"total"`
	Budget            decimal.Decimal    `json:"budget"`
	BudgetUtilization decimal.Decimal    `json:"budget_utilization"`
	ByCategory        []CategoryResponse `json:"by_category"`
}

// DashboardResponse is the full dashboard payload
type DashboardResponse struct {
	From                 time.Time                   `json:"from"`
	To                   time.Time                   `json:"to"`
	Currency             string                      `json:"currency"`
	Totals               TotalsResponse              `json:"totals"`
	LeadsByStage         []StageResponse             `json:"leads_by_stage"`
	OpportunitiesByStage []StageResponse             `json:"opportunities_by_stage"`
	Pipeline             PipelineResponse            `json:"pipeline"`
	MonthlyRevenue       []MonthResponse             `json:"monthly_revenue"`
	MonthlyExpenses      []MonthResponse             `json:"monthly_expenses"`
	Expenses             ExpensesResponse            `json:"expenses"`
	TopOpportunities     []sales.OpportunityResponse `json:"top_opportunities"`
	UpcomingActivities   []activity.ActivityResponse `json:"upcoming_activities"`
	RecentActivities     []activity.ActivityResponse `json:"recent_activities"`
	GeneratedAt          time.Time                   `json:"generated_at"`
}

func toStageResponses(metrics []report.StageMetric, label func(string) string) []StageResponse {
	out := make([]StageResponse, len(metrics))
	for i, m := range metrics {
		out[i] = StageResponse{
			Stage: m.Stage.String(),
			Label: label(m.Stage.String()),
			Count: m.Count,
			Value: m.Value,
		}
	}
	return out
}

func toMonthResponses(metrics []report.MonthMetric) []MonthResponse {
	out := make([]MonthResponse, len(metrics))
	for i, m := range metrics {
		out[i] = MonthResponse{Month: m.Month, Value: m.Value}
	}
	return out
}

func toCategoryResponses(metrics []report.CategoryMetric) []CategoryResponse {
	out := make([]CategoryResponse, len(metrics))
	for i, m := range metrics {
		out[i] = CategoryResponse{Category: string(m.Category), Count: m.Count, Amount: m.Amount}
	}
	return out
}
