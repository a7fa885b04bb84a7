package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeValidation       = "VALIDATION_ERROR"
	CodeConflict         = "CONFLICT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeTimeout          = "TIMEOUT"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeLockConflict     = "LOCK_CONFLICT"
	CodeLockNotOwned     = "LOCK_NOT_OWNED"
	CodeLockExpired      = "LOCK_EXPIRED"
	CodeAlreadyReviewed  = "ALREADY_REVIEWED"
	CodeDownstreamFailed = "DOWNSTREAM_FAILED"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	response := ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
	data, _ := json.Marshal(response)
	return data
}

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// LockConflict is retryable: another holder owns a live lease on the resource
func LockConflict(resourceID, holderID string, expiresAt time.Time) *AppError {
	return &AppError{
		Code:       CodeLockConflict,
		Message:    "Resource is locked by another holder",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"resource_id": resourceID,
			"locked_by":   holderID,
			"expires_at":  expiresAt.UTC().Format(time.RFC3339Nano),
		},
	}
}

func LockNotOwned(resourceID string) *AppError {
	return &AppError{
		Code:       CodeLockNotOwned,
		Message:    "Lease is not held by the caller; re-acquire before editing",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"resource_id": resourceID},
	}
}

func LockExpired(resourceID string) *AppError {
	return &AppError{
		Code:       CodeLockExpired,
		Message:    "Lease has expired; re-acquire before editing",
		HTTPStatus: http.StatusGone,
		Details:    map[string]any{"resource_id": resourceID},
	}
}

// AlreadyReviewed is the expected outcome when another reviewer decided first
func AlreadyReviewed(resourceID string, current string) *AppError {
	return &AppError{
		Code:       CodeAlreadyReviewed,
		Message:    "Prediction has already been reviewed",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"resource_id":   resourceID,
			"review_status": current,
		},
	}
}

// DownstreamFailed reports a committed status transition whose label or file
// materialization did not complete. Operators reconcile without re-approving.
func DownstreamFailed(message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeDownstreamFailed,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying code
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
