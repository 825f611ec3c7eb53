package metrics

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector exposed on /metrics. A dedicated registry keeps
// the default Go collectors out of tests.
var Registry = prometheus.NewRegistry()

var (
	importRunsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "hse_import_runs_total",
		Help: "Mass import runs by kind and final status.",
	}, []string{"kind", "status"})

	importRowsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "hse_import_rows_total",
		Help: "Mass import rows by kind and outcome.",
	}, []string{"kind", "outcome"})

	importDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hse_import_duration_seconds",
		Help:    "Mass import run duration in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"kind"})

	ppeIssuedTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "hse_ppe_issued_quantity_total",
		Help: "PPE units issued through the ledger.",
	}, []string{"item"})
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

// Row outcomes.
const (
	OutcomeImported = "imported"
	OutcomeFailed   = "failed"
)

// ObserveImportRun records one finished run.
func ObserveImportRun(kind, status string, elapsed time.Duration) {
	importRunsTotal.With(prometheus.Labels{"kind": kind, "status": status}).Inc()
	if elapsed < 0 {
		elapsed = 0
	}
	importDuration.With(prometheus.Labels{"kind": kind}).Observe(elapsed.Seconds())
}

// AddImportRows adds n rows with the given outcome.
func AddImportRows(kind, outcome string, n int) {
	if n <= 0 {
		return
	}
	importRowsTotal.With(prometheus.Labels{"kind": kind, "outcome": outcome}).Add(float64(n))
}

// AddPPEIssued records issued PPE units.
func AddPPEIssued(item string, quantity int) {
	if quantity <= 0 {
		return
	}
	ppeIssuedTotal.With(prometheus.Labels{"item": item}).Add(float64(quantity))
}

// RegisterDB exposes connection pool stats for db. Registering the same name
// twice is ignored.
func RegisterDB(name string, db *sql.DB) {
	if db == nil {
		return
	}
	err := Registry.Register(collectors.NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if err != nil && !errors.As(err, &already) {
		panic(err)
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
