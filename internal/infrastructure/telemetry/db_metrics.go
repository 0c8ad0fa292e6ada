package telemetry

import (
	"database/sql"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

const startInstanceKey = "crm_metrics:start"

// DBMetrics records query counts and latency through gorm callbacks and
// exposes connection pool statistics
type DBMetrics struct {
	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	slowQueries   *prometheus.CounterVec
	slowThreshold time.Duration
}

// RegisterDBMetrics instruments db and registers pool stats for sqlDB under dbName
func RegisterDBMetrics(m *Metrics, db *gorm.DB, sqlDB *sql.DB, dbName string, slowThreshold time.Duration) (*DBMetrics, error) {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	factory := promauto.With(m.registry)
	dm := &DBMetrics{
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_queries_total",
			Help:      "Database operations, by operation, table and status",
		}, []string{"operation", "table", "status"}),
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database operation latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation", "table"}),
		slowQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_slow_queries_total",
			Help:      "Database operations slower than the slow query threshold",
		}, []string{"operation", "table"}),
		slowThreshold: slowThreshold,
	}
	if sqlDB != nil {
		if err := m.registry.Register(collectors.NewDBStatsCollector(sqlDB, dbName)); err != nil {
			return nil, err
		}
	}

	before := func(tx *gorm.DB) { tx.InstanceSet(startInstanceKey, time.Now()) }
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) { dm.observe(tx, op) }
	}
	if err := registerAround(db, "crm_metrics", before, after); err != nil {
		return nil, err
	}
	return dm, nil
}

func (dm *DBMetrics) observe(tx *gorm.DB, op string) {
	v, ok := tx.InstanceGet(startInstanceKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	table := tx.Statement.Table
	if table == "" {
		table = "unknown"
	}
	status := "ok"
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		status = "error"
	}
	dm.queries.WithLabelValues(op, table, status).Inc()
	dm.queryDuration.WithLabelValues(op, table).Observe(elapsed.Seconds())
	if elapsed > dm.slowThreshold {
		dm.slowQueries.WithLabelValues(op, table).Inc()
	}
}
