package lifeos_errors

import (
	"errors"
	"time"
)

// Common errors. The string values double as the error codes surfaced in
// HTTP responses.
var (
	ErrNotFound       = errors.New("not_found")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrInvalidInput   = errors.New("invalid_input")
	ErrReasonRequired = errors.New("reason_required")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrRateLimited    = errors.New("rate_limited")
	ErrAlreadyExists  = errors.New("already_exists")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
