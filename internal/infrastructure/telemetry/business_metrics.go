package telemetry

import (
	"context"
	"strings"

	"github.com/crm/backend/internal/domain/sales"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics counts CRM activity. It subscribes to the event bus for
// domain events; import and cache outcomes are reported by their services.
type BusinessMetrics struct {
	domainEvents  *prometheus.CounterVec
	stageMoves    *prometheus.CounterVec
	handlerErrors *prometheus.CounterVec
	importRuns    *prometheus.CounterVec
	importRows    *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)

// NewBusinessMetrics registers the business instruments on m's registry
func NewBusinessMetrics(m *Metrics) *BusinessMetrics {
	factory := promauto.With(m.registry)
	return &BusinessMetrics{
		domainEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published, by aggregate and event type",
		}, []string{"aggregate", "event_type"}),
		stageMoves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_moves_total",
			Help:      "Kanban stage changes, by record kind and target stage",
		}, []string{"entity", "from", "to"}),
		handlerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handler_errors_total",
			Help:      "Event handler failures, by event type",
		}, []string{"event_type"}),
		importRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_runs_total",
			Help:      "Executed imports, by entity and final status",
		}, []string{"entity", "status"}),
		importRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Imported rows, by entity and outcome (created, updated, skipped, failed)",
		}, []string{"entity", "outcome"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_lookups_total",
			Help:      "Dashboard cache lookups, by result",
		}, []string{"result"}),
	}
}

// EventTypes subscribes to every event
func (b *BusinessMetrics) EventTypes() []string { return nil }

// Handle counts the event
func (b *BusinessMetrics) Handle(_ context.Context, event shared.DomainEvent) error {
	b.domainEvents.WithLabelValues(event.AggregateType(), event.EventType()).Inc()
	if moved, ok := event.(*sales.StageChangedEvent); ok {
		b.stageMoves.WithLabelValues(strings.ToLower(moved.AggregateType()), string(moved.From), string(moved.To)).Inc()
	}
	return nil
}

// HandlerFailed is the event bus hook for handler outcomes
func (b *BusinessMetrics) HandlerFailed(eventType string, err error) {
	if err != nil {
		b.handlerErrors.WithLabelValues(eventType).Inc()
	}
}

// RecordImport records an executed import
func (b *BusinessMetrics) RecordImport(entity, status string, created, updated, skipped, failed int) {
	b.importRuns.WithLabelValues(entity, status).Inc()
	for outcome, n := range map[string]int{"created": created, "updated": updated, "skipped": skipped, "failed": failed} {
		if n > 0 {
			b.importRows.WithLabelValues(entity, outcome).Add(float64(n))
		}
	}
}

// RecordCacheLookup records a dashboard cache hit or miss
func (b *BusinessMetrics) RecordCacheLookup(hit bool) {
	if hit {
		b.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		b.cacheLookups.WithLabelValues("miss").Inc()
	}
}
