package catalog

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("product not found")

// ValidationError reports a query parameter that is malformed or out of range.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(param, format string, args ...any) *ValidationError {
	return &ValidationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

// StartupError means the catalog could not be loaded; the process must not serve.
type StartupError struct {
	Source string
	Err    error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("load catalog from %s: %v", e.Source, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }
