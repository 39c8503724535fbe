package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResult        = errors.New("no recommendations for this mood")
	ErrBackendUnavailable = errors.New("recommendation backend unavailable")
)

// ValidationError is raised by the submission form before any request is made.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// TransportError covers unreachable endpoints, non-2xx statuses and
// undecodable bodies. It always unwraps to ErrBackendUnavailable.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("backend %s responded with status %d", e.Endpoint, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("backend %s: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("backend %s failed", e.Endpoint)
	}
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBackendUnavailable}
	}
	return []error{ErrBackendUnavailable, e.Err}
}

func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
