package service

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aerolabel/internal/locks/lease"
	"aerolabel/pkg/config"
	apperrors "aerolabel/pkg/errors"
	"aerolabel/pkg/logger"
	"aerolabel/pkg/metrics"
	"aerolabel/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (LockService, *clock, *metrics.LockMetrics) {
	t.Helper()

	c := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := &config.Config{
		LeaseTTL: 10 * time.Minute,
		Log:      logger.NewDiscard(),
	}
	m, err := metrics.NewLockMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	return NewLockService(lease.NewStore(4, lease.WithClock(c.Now)), cfg, m), c, m
}

func requireCode(t *testing.T, err error, code string, status int) *apperrors.AppError {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, status, appErr.HTTPStatus)
	return appErr
}

func TestAcquire_ConflictCarriesHolder(t *testing.T) {
	svc, _, m := newTestService(t)
	ctx := context.Background()

	_, err := svc.Acquire(ctx, "img_001.jpg", "alice")
	require.NoError(t, err)

	_, err = svc.Acquire(ctx, "img_001.jpg", "bob")
	appErr := requireCode(t, err, apperrors.CodeLockConflict, http.StatusConflict)
	assert.Equal(t, "alice", appErr.Details["locked_by"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AcquireTotal.WithLabelValues(metrics.LockResultAcquired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AcquireTotal.WithLabelValues(metrics.LockResultConflict)))
}

func TestAcquire_RejectsEmptyIDs(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Acquire(context.Background(), "", "alice")
	requireCode(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)

	_, err = svc.Acquire(context.Background(), "img_001.jpg", "   ")
	requireCode(t, err, apperrors.CodeInvalidInput, http.StatusBadRequest)
}

func TestHeartbeat_ErrorMapping(t *testing.T) {
	svc, c, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Acquire(ctx, "img_001.jpg", "alice")
	require.NoError(t, err)

	l, err := svc.Heartbeat(ctx, "img_001.jpg", "alice")
	require.NoError(t, err)
	assert.Equal(t, c.Now().Add(10*time.Minute), l.ExpiresAt)

	_, err = svc.Heartbeat(ctx, "img_001.jpg", "bob")
	requireCode(t, err, apperrors.CodeLockNotOwned, http.StatusConflict)

	c.Advance(11 * time.Minute)
	_, err = svc.Heartbeat(ctx, "img_001.jpg", "alice")
	requireCode(t, err, apperrors.CodeLockExpired, http.StatusGone)

	// recovery path is a fresh acquire
	_, err = svc.Acquire(ctx, "img_001.jpg", "alice")
	assert.NoError(t, err)
}

func TestRelease_OwnershipAndIdempotency(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Acquire(ctx, "img_001.jpg", "alice")
	require.NoError(t, err)

	_, err = svc.Release(ctx, "img_001.jpg", "bob")
	requireCode(t, err, apperrors.CodeLockNotOwned, http.StatusConflict)

	res, err := svc.Release(ctx, "img_001.jpg", "alice")
	require.NoError(t, err)
	assert.True(t, res.Released)

	res, err = svc.Release(ctx, "img_001.jpg", "alice")
	require.NoError(t, err)
	assert.False(t, res.Released)
}

func TestReleaseAllAndStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, id := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		_, err := svc.Acquire(ctx, id, "alice")
		require.NoError(t, err)
	}

	status, err := svc.Status(ctx, "b.jpg")
	require.NoError(t, err)
	assert.True(t, status.Locked)
	assert.Equal(t, "alice", status.HolderID)
	require.NotNil(t, status.ExpiresAt)

	res, err := svc.ReleaseAll(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, &model.ReleaseAllResult{HolderID: "alice", ReleasedCount: 3}, res)

	status, err = svc.Status(ctx, "b.jpg")
	require.NoError(t, err)
	assert.False(t, status.Locked)
	assert.Nil(t, status.ExpiresAt)
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	svc, c, m := newTestService(t)
	ctx := context.Background()

	_, err := svc.Acquire(ctx, "old.jpg", "alice")
	require.NoError(t, err)
	c.Advance(6 * time.Minute)
	_, err = svc.Acquire(ctx, "new.jpg", "bob")
	require.NoError(t, err)
	c.Advance(5 * time.Minute)

	assert.Equal(t, 1, svc.Sweep(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReleasedTotal.WithLabelValues(metrics.ReleaseReasonSwept)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveLeases))
}

type countingLocks struct {
	LockService
	sweeps atomic.Int32
}

func (c *countingLocks) Sweep(context.Context) int {
	c.sweeps.Add(1)
	return 0
}

func TestSweeper_StartStop(t *testing.T) {
	locks := &countingLocks{}
	s := NewSweeper(locks, 5*time.Millisecond, logger.NewDiscard())

	s.Start()
	s.Start()

	require.Eventually(t, func() bool { return locks.sweeps.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()

	after := locks.sweeps.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, locks.sweeps.Load(), "sweeper kept running after Stop")
}
