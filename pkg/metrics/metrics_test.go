package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAllCollectors(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	require.NotNil(t, m.Locks)
	require.NotNil(t, m.Review)
	require.NotNil(t, m.HTTP)
	require.NotNil(t, m.Kafka)

	m.Locks.RecordAcquire(LockResultAcquired)
	m.Locks.RecordAcquire(LockResultConflict)
	m.Locks.RecordAcquire(LockResultConflict)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Locks.AcquireTotal.WithLabelValues(LockResultAcquired)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Locks.AcquireTotal.WithLabelValues(LockResultConflict)))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var locks *LockMetrics
	var review *ReviewMetrics
	var httpMetrics *HTTPMetrics
	var kafkaMetrics *KafkaMetrics

	assert.NotPanics(t, func() {
		locks.RecordAcquire(LockResultAcquired)
		locks.RecordHeartbeat(LockResultOK)
		locks.RecordReleased(ReleaseReasonSwept, 3)
		locks.ObserveSweep(0.01, 2)
		review.RecordDecision("approved", 0.1, "approve")
		review.RecordFailure("not_found")
		review.RecordBulkItem("ok")
		review.SetQueue(1, 1)
		httpMetrics.Observe("GET", "/health", 200, 0.01)
		kafkaMetrics.Observe(DirectionConsume, "t", errors.New("boom"), 0.01)
	})
}

func TestRecordReleased_IgnoresZero(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.Locks.RecordReleased(ReleaseReasonSwept, 0)
	m.Locks.RecordReleased(ReleaseReasonReleaseAll, 4)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.Locks.ReleasedTotal.WithLabelValues(ReleaseReasonSwept)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Locks.ReleasedTotal.WithLabelValues(ReleaseReasonReleaseAll)))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.Review.SetQueue(7, 2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "aerolabel_review_pending 7"))
	assert.True(t, strings.Contains(string(body), "aerolabel_review_auto_approvable 2"))
}
