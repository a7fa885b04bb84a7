package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotOwned is returned when the caller does not hold a live lease on the resource
	ErrNotOwned = errors.New("lease not owned by caller")

	// ErrExpired is returned on heartbeat when the caller's lease already lapsed
	ErrExpired = errors.New("lease expired")
)

// ConflictError reports the live holder that blocked an acquire.
type ConflictError struct {
	ResourceID string
	Holder     string
	ExpiresAt  time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource %s is locked by %s until %s", e.ResourceID, e.Holder, e.ExpiresAt.Format(time.RFC3339))
}
