package service

import (
	"context"
	"errors"
	"strings"
	"time"

	lockerrors "aerolabel/internal/locks/errors"
	"aerolabel/internal/locks/lease"
	"aerolabel/pkg/config"
	apperrors "aerolabel/pkg/errors"
	"aerolabel/pkg/metrics"
	"aerolabel/pkg/model"
)

const maxIDLength = 255

type LockService interface {
	Acquire(ctx context.Context, resourceID, holderID string) (*model.ResourceLease, error)
	Heartbeat(ctx context.Context, resourceID, holderID string) (*model.ResourceLease, error)
	Release(ctx context.Context, resourceID, holderID string) (*model.ReleaseResult, error)
	ReleaseAll(ctx context.Context, holderID string) (*model.ReleaseAllResult, error)
	Status(ctx context.Context, resourceID string) (*model.LockStatus, error)
	Sweep(ctx context.Context) int
}

type lockService struct {
	store   *lease.Store
	cfg     *config.Config
	metrics *metrics.LockMetrics
}

func NewLockService(store *lease.Store, cfg *config.Config, m *metrics.LockMetrics) LockService {
	return &lockService{
		store:   store,
		cfg:     cfg,
		metrics: m,
	}
}

func (s *lockService) Acquire(ctx context.Context, resourceID, holderID string) (*model.ResourceLease, error) {
	if err := validateIDs(resourceID, holderID); err != nil {
		return nil, err
	}

	l, refreshed, err := s.store.Acquire(resourceID, holderID, s.cfg.LeaseTTL)
	if err != nil {
		var conflict *lockerrors.ConflictError
		if errors.As(err, &conflict) {
			s.metrics.RecordAcquire(metrics.LockResultConflict)
			s.cfg.Log.Info("Lease acquire conflict",
				"resource_id", resourceID,
				"holder_id", holderID,
				"locked_by", conflict.Holder,
				"expires_at", conflict.ExpiresAt,
			)
			return nil, apperrors.LockConflict(resourceID, conflict.Holder, conflict.ExpiresAt)
		}
		return nil, apperrors.Internal("Failed to acquire lease", err)
	}

	if refreshed {
		s.metrics.RecordAcquire(metrics.LockResultRefreshed)
		s.cfg.Log.Debug("Lease refreshed by holder", "resource_id", resourceID, "holder_id", holderID, "expires_at", l.ExpiresAt)
	} else {
		s.metrics.RecordAcquire(metrics.LockResultAcquired)
		s.cfg.Log.Info("Lease acquired", "resource_id", resourceID, "holder_id", holderID, "expires_at", l.ExpiresAt)
	}
	return l, nil
}

func (s *lockService) Heartbeat(ctx context.Context, resourceID, holderID string) (*model.ResourceLease, error) {
	if err := validateIDs(resourceID, holderID); err != nil {
		return nil, err
	}

	l, err := s.store.Heartbeat(resourceID, holderID, s.cfg.LeaseTTL)
	switch {
	case err == nil:
		s.metrics.RecordHeartbeat(metrics.LockResultOK)
		return l, nil
	case errors.Is(err, lockerrors.ErrExpired):
		s.metrics.RecordHeartbeat(metrics.LockResultExpired)
		s.cfg.Log.Info("Heartbeat after lease expiry", "resource_id", resourceID, "holder_id", holderID)
		return nil, apperrors.LockExpired(resourceID)
	case errors.Is(err, lockerrors.ErrNotOwned):
		s.metrics.RecordHeartbeat(metrics.LockResultNotOwned)
		s.cfg.Log.Info("Heartbeat from non-holder", "resource_id", resourceID, "holder_id", holderID)
		return nil, apperrors.LockNotOwned(resourceID)
	default:
		return nil, apperrors.Internal("Failed to renew lease", err)
	}
}

func (s *lockService) Release(ctx context.Context, resourceID, holderID string) (*model.ReleaseResult, error) {
	if err := validateIDs(resourceID, holderID); err != nil {
		return nil, err
	}

	released, err := s.store.Release(resourceID, holderID)
	if err != nil {
		if errors.Is(err, lockerrors.ErrNotOwned) {
			s.cfg.Log.Warn("Release attempted by non-holder", "resource_id", resourceID, "holder_id", holderID)
			return nil, apperrors.LockNotOwned(resourceID)
		}
		return nil, apperrors.Internal("Failed to release lease", err)
	}

	if released {
		s.metrics.RecordReleased(metrics.ReleaseReasonRelease, 1)
		s.cfg.Log.Info("Lease released", "resource_id", resourceID, "holder_id", holderID)
	}
	return &model.ReleaseResult{ResourceID: resourceID, Released: released}, nil
}

func (s *lockService) ReleaseAll(ctx context.Context, holderID string) (*model.ReleaseAllResult, error) {
	if err := validateID("holder_id", holderID); err != nil {
		return nil, err
	}

	count := s.store.ReleaseAll(holderID)
	s.metrics.RecordReleased(metrics.ReleaseReasonReleaseAll, count)
	s.cfg.Log.Info("Released all leases for holder", "holder_id", holderID, "count", count)

	return &model.ReleaseAllResult{HolderID: holderID, ReleasedCount: count}, nil
}

func (s *lockService) Status(ctx context.Context, resourceID string) (*model.LockStatus, error) {
	if err := validateID("resource_id", resourceID); err != nil {
		return nil, err
	}

	status := &model.LockStatus{ResourceID: resourceID}
	if l, ok := s.store.Get(resourceID); ok {
		status.Locked = true
		status.HolderID = l.HolderID
		status.AcquiredAt = &l.AcquiredAt
		status.ExpiresAt = &l.ExpiresAt
	}
	return status, nil
}

func (s *lockService) Sweep(ctx context.Context) int {
	start := time.Now()
	removed := s.store.Sweep(s.store.Now())

	s.metrics.RecordReleased(metrics.ReleaseReasonSwept, removed)
	s.metrics.ObserveSweep(time.Since(start).Seconds(), s.store.Count())
	if removed > 0 {
		s.cfg.Log.Info("Swept expired leases", "count", removed)
	}
	return removed
}

func validateIDs(resourceID, holderID string) error {
	if err := validateID("resource_id", resourceID); err != nil {
		return err
	}
	return validateID("holder_id", holderID)
}

func validateID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.InvalidInput(field + " is required")
	}
	if len(value) > maxIDLength {
		return apperrors.InvalidInput(field + " exceeds 255 characters")
	}
	return nil
}
