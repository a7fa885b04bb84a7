package model

import "time"

// ResourceLease represents exclusive, time-bounded editing rights over one image
type ResourceLease struct {
	ResourceID string    `json:"resource_id"`
	HolderID   string    `json:"holder_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the lease is no longer live at now.
// A lease is live strictly before ExpiresAt.
func (l *ResourceLease) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

type LockStatus struct {
	ResourceID string     `json:"resource_id"`
	Locked     bool       `json:"locked"`
	HolderID   string     `json:"holder_id,omitempty"`
	AcquiredAt *time.Time `json:"acquired_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type LockRequest struct {
	ResourceID string `json:"resource_id"`
	HolderID   string `json:"holder_id"`
}

type ReleaseAllRequest struct {
	HolderID string `json:"holder_id"`
}

type ReleaseResult struct {
	ResourceID string `json:"resource_id"`
	Released   bool   `json:"released"`
}

type ReleaseAllResult struct {
	HolderID      string `json:"holder_id"`
	ReleasedCount int    `json:"released_count"`
}
