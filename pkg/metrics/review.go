package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ReviewMetrics tracks queue depth and approval outcomes.
// A nil *ReviewMetrics is valid and records nothing.
type ReviewMetrics struct {
	DecisionsTotal        *prometheus.CounterVec // status: approved, auto_approved, rejected
	DecisionFailuresTotal *prometheus.CounterVec // reason: not_found, already_reviewed, downstream_failed, error
	BulkItemsTotal        *prometheus.CounterVec // outcome
	PendingGauge          prometheus.Gauge
	AutoApprovableGauge   prometheus.Gauge
	DecisionDuration      *prometheus.HistogramVec
}

func NewReviewMetrics(registry *prometheus.Registry) (*ReviewMetrics, error) {
	m := &ReviewMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register review metrics: %w", err)
	}
	return m, nil
}

func (m *ReviewMetrics) initMetrics() {
	m.DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerolabel_review_decisions_total",
			Help: "Predictions that left the pending state, by resulting status",
		},
		[]string{"status"},
	)
	m.DecisionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerolabel_review_decision_failures_total",
			Help: "Approve or reject attempts that did not commit, by reason",
		},
		[]string{"reason"},
	)
	m.BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerolabel_review_bulk_items_total",
			Help: "Bulk approval items by outcome",
		},
		[]string{"outcome"},
	)
	m.PendingGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aerolabel_review_pending",
			Help: "Pending predictions seen by the last queue computation",
		},
	)
	m.AutoApprovableGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aerolabel_review_auto_approvable",
			Help: "Auto-approvable predictions seen by the last queue computation",
		},
	)
	m.DecisionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aerolabel_review_decision_duration_seconds",
			Help:    "Time taken to commit one approve or reject",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
}

func (m *ReviewMetrics) Collect(ch chan<- prometheus.Metric) {
	m.DecisionsTotal.Collect(ch)
	m.DecisionFailuresTotal.Collect(ch)
	m.BulkItemsTotal.Collect(ch)
	m.PendingGauge.Collect(ch)
	m.AutoApprovableGauge.Collect(ch)
	m.DecisionDuration.Collect(ch)
}

func (m *ReviewMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.DecisionsTotal.Describe(ch)
	m.DecisionFailuresTotal.Describe(ch)
	m.BulkItemsTotal.Describe(ch)
	m.PendingGauge.Describe(ch)
	m.AutoApprovableGauge.Describe(ch)
	m.DecisionDuration.Describe(ch)
}

func (m *ReviewMetrics) RecordDecision(status string, seconds float64, operation string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(status).Inc()
	m.DecisionDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *ReviewMetrics) RecordFailure(reason string) {
	if m == nil {
		return
	}
	m.DecisionFailuresTotal.WithLabelValues(reason).Inc()
}

func (m *ReviewMetrics) RecordBulkItem(outcome string) {
	if m == nil {
		return
	}
	m.BulkItemsTotal.WithLabelValues(outcome).Inc()
}

func (m *ReviewMetrics) SetQueue(pending, autoApprovable int) {
	if m == nil {
		return
	}
	m.PendingGauge.Set(float64(pending))
	m.AutoApprovableGauge.Set(float64(autoApprovable))
}
