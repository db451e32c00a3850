package driver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState matches every *InvalidStateError.
	ErrInvalidState = errors.New("invalid state")

	ErrStateNotInitialized = errors.New("state not initialized: no successful fetch yet")
	ErrDateNotSet          = errors.New("reference date was not set by the provider")
	ErrParse               = errors.New("parse response")
	ErrResponseTooLarge    = errors.New("response too large")
)

// InvalidStateError reports a reference date that could not be parsed.
type InvalidStateError struct {
	Value  string
	Layout string
	Err    error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("can not create date from source %q with layout %q", e.Value, e.Layout)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

func (e *InvalidStateError) Unwrap() error { return e.Err }

// StatusError is returned for a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream http %d: %s", e.Code, e.Body)
}
