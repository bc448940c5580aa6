package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("record not found")
	ErrInterviewCompleted   = errors.New("interview already completed")
	ErrConflict             = errors.New("record was modified concurrently")
	ErrSubmissionInProgress = errors.New("an answer for this interview is already being processed")
	ErrStaleQuestion        = errors.New("question is no longer current")
	ErrEngineUnavailable    = errors.New("upstream service unavailable")
	ErrBadUpstreamResponse  = errors.New("upstream service returned an invalid response")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrUnknownTenant        = errors.New("tenant does not exist")
)

// UpstreamError describes a failed call to one of the external AI services or the
// notification webhook. Err is ErrEngineUnavailable or ErrBadUpstreamResponse.
type UpstreamError struct {
	Service    string
	StatusCode int
	Detail     string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %v (status %d): %s", e.Service, e.Err, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: %v: %s", e.Service, e.Err, e.Detail)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
