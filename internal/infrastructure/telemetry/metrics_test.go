package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_HTTP(t *testing.T) {
	m := NewMetrics()
	m.IncInFlight()
	m.RecordHTTPRequest("GET", "/api/v1/leads/:id", 200, 12*time.Millisecond, 512)
	m.RecordHTTPRequest("GET", "/api/v1/leads/:id", 404, time.Millisecond, 64)
	m.RecordHTTPRequest("GET", "", 404, time.Millisecond, -1)
	m.DecInFlight()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/api/v1/leads/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.requestsInFlight))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `crm_http_requests_total{method="GET",route="/api/v1/leads/:id",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// a second instance must not panic on duplicate registration
	a, b := NewMetrics(), NewMetrics()
	NewBusinessMetrics(a)
	NewBusinessMetrics(b)
}

func TestBusinessMetrics(t *testing.T) {
	m := NewMetrics()
	bm := NewBusinessMetrics(m)
	ctx := context.Background()
	tenant := uuid.New()

	require.NoError(t, bm.Handle(ctx, sales.NewStageChangedEvent(sales.AggregateTypeLead, uuid.New(), tenant, "Lead", sales.StageCold, sales.StageHot)))
	require.NoError(t, bm.Handle(ctx, sales.NewStageChangedEvent(sales.AggregateTypeOpportunity, uuid.New(), tenant, "Deal", sales.StageHot, sales.StageWon)))
	require.NoError(t, bm.Handle(ctx, partner.NewChangedEvent(partner.EventTypeCompanyCreated, partner.AggregateTypeCompany, uuid.New(), tenant, "Acme")))
	assert.Nil(t, bm.EventTypes())

	assert.Equal(t, 1.0, testutil.ToFloat64(bm.stageMoves.WithLabelValues("lead", "COLD", "HOT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(bm.stageMoves.WithLabelValues("opportunity", "HOT", "WON")))
	assert.Equal(t, 2, testutil.CollectAndCount(bm.stageMoves))
	assert.Equal(t, 1.0, testutil.ToFloat64(bm.domainEvents.WithLabelValues(partner.AggregateTypeCompany, partner.EventTypeCompanyCreated)))

	bm.HandlerFailed(sales.EventTypeStageChanged, nil)
	bm.HandlerFailed(sales.EventTypeStageChanged, assert.AnError)
	assert.Equal(t, 1.0, testutil.ToFloat64(bm.handlerErrors.WithLabelValues(sales.EventTypeStageChanged)))

	bm.RecordImport("contacts", "completed", 10, 2, 1, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(bm.importRuns.WithLabelValues("contacts", "completed")))
	assert.Equal(t, 10.0, testutil.ToFloat64(bm.importRows.WithLabelValues("contacts", "created")))
	assert.Equal(t, 3, testutil.CollectAndCount(bm.importRows))

	bm.RecordCacheLookup(true)
	bm.RecordCacheLookup(false)
	bm.RecordCacheLookup(false)
	assert.Equal(t, 2.0, testutil.ToFloat64(bm.cacheLookups.WithLabelValues("miss")))
}
