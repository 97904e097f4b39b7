// Package metrics defines Prometheus metrics for the access-control engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assignment metrics
var (
	// AssignmentsTotal tracks group/role assignment operations by outcome.
	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessctl_assignments_total",
			Help: "Total number of membership assignment operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// ScopeViolationsTotal tracks rejected cross-tenant group assignments.
	ScopeViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accessctl_scope_violations_total",
			Help: "Total number of group assignments rejected by scope validation",
		},
	)

	// FallbackSubstitutionsTotal tracks Global-to-account group substitutions.
	FallbackSubstitutionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accessctl_fallback_substitutions_total",
			Help: "Total number of Global group references substituted with same-named account groups",
		},
	)

	// BulkBatchesTotal tracks bulk create-and-assign batches by outcome.
	BulkBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessctl_bulk_batches_total",
			Help: "Total number of bulk create-and-assign batches by outcome",
		},
		[]string{"outcome"},
	)

	// BulkWarningsTotal tracks per-item warnings emitted by bulk batches.
	BulkWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accessctl_bulk_warnings_total",
			Help: "Total number of per-item warnings emitted by bulk create-and-assign batches",
		},
	)
)

// Store metrics
var (
	// StoreOperationDuration tracks catalog store operation latency.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "accessctl_store_operation_duration_seconds",
			Help:    "Catalog store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"driver", "operation"},
	)

	// StoreErrorsTotal tracks catalog store failures.
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accessctl_store_errors_total",
			Help: "Total number of catalog store failures by driver and operation",
		},
		[]string{"driver", "operation"},
	)
)

// ObserveStoreOperation records the duration and result of one catalog
// store call.
func ObserveStoreOperation(driver, operation string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(driver, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreErrorsTotal.WithLabelValues(driver, operation).Inc()
	}
}

// Bulk batch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)
