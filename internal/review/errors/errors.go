package errors

import "errors"

var (
	ErrNotFound = errors.New("prediction not found")

	ErrImageNotFound = errors.New("source image not found")

	ErrInvalidResourceID = errors.New("invalid resource ID")
)
