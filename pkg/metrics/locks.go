package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	LockResultAcquired  = "acquired"
	LockResultRefreshed = "refreshed"
	LockResultConflict  = "conflict"
	LockResultNotOwned  = "not_owned"
	LockResultExpired   = "expired"
	LockResultOK        = "ok"

	ReleaseReasonRelease    = "release"
	ReleaseReasonReleaseAll = "release_all"
	ReleaseReasonSwept      = "swept"
)

// LockMetrics tracks lease lifecycle operations.
// A nil *LockMetrics is valid and records nothing.
type LockMetrics struct {
	AcquireTotal   *prometheus.CounterVec // result: acquired, refreshed, conflict
	HeartbeatTotal *prometheus.CounterVec // result: ok, not_owned, expired
	ReleasedTotal  *prometheus.CounterVec // reason: release, release_all, swept
	SweepDuration  prometheus.Histogram
	ActiveLeases   prometheus.Gauge
}

func NewLockMetrics(registry *prometheus.Registry) (*LockMetrics, error) {
	m := &LockMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register lock metrics: %w", err)
	}
	return m, nil
}

func (m *LockMetrics) initMetrics() {
	m.AcquireTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerolabel_lease_acquire_total",
			Help: "Lease acquire attempts by result",
		},
		[]string{"result"},
	)
	m.HeartbeatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerolabel_lease_heartbeat_total",
			Help: "Lease heartbeats by result",
		},
		[]string{"result"},
	)
	m.ReleasedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aerolabel_lease_released_total",
			Help: "Leases removed from the store by reason",
		},
		[]string{"reason"},
	)
	m.SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aerolabel_lease_sweep_duration_seconds",
			Help:    "Time taken by one expired-lease sweep",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)
	m.ActiveLeases = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aerolabel_leases_active",
			Help: "Live leases counted after the last sweep",
		},
	)
}

func (m *LockMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AcquireTotal.Collect(ch)
	m.HeartbeatTotal.Collect(ch)
	m.ReleasedTotal.Collect(ch)
	m.SweepDuration.Collect(ch)
	m.ActiveLeases.Collect(ch)
}

func (m *LockMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AcquireTotal.Describe(ch)
	m.HeartbeatTotal.Describe(ch)
	m.ReleasedTotal.Describe(ch)
	m.SweepDuration.Describe(ch)
	m.ActiveLeases.Describe(ch)
}

func (m *LockMetrics) RecordAcquire(result string) {
	if m == nil {
		return
	}
	m.AcquireTotal.WithLabelValues(result).Inc()
}

func (m *LockMetrics) RecordHeartbeat(result string) {
	if m == nil {
		return
	}
	m.HeartbeatTotal.WithLabelValues(result).Inc()
}

func (m *LockMetrics) RecordReleased(reason string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.ReleasedTotal.WithLabelValues(reason).Add(float64(count))
}

func (m *LockMetrics) ObserveSweep(seconds float64, active int) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(seconds)
	m.ActiveLeases.Set(float64(active))
}
