package exprel

import (
	"errors"
	"fmt"
)

// ErrNilContext reports a nil *Context argument. It is a precondition
// violation by the caller, not a resolution failure.
var ErrNilContext = errors.New("exprel: nil resolution context")

// PropertyNotFoundError reports a recognized (base, property) pair whose
// target variable, key, index, or field does not exist.
type PropertyNotFoundError struct {
	Base     any
	Property any
}

func (e *PropertyNotFoundError) Error() string {
	if e.Base == nil {
		return fmt.Sprintf("exprel: variable %v not found", e.Property)
	}
	return fmt.Sprintf("exprel: property %v not found on %T", e.Property, e.Base)
}

// PropertyNotWritableError reports a recognized pair whose target exists but
// cannot be written.
type PropertyNotWritableError struct {
	Base     any
	Property any
}

func (e *PropertyNotWritableError) Error() string {
	return fmt.Sprintf("exprel: property %v on %T is not writable", e.Property, e.Base)
}

// MethodNotFoundError reports a recognized invocation target with no matching
// method.
type MethodNotFoundError struct {
	Base   any
	Method string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("exprel: method %q not found on %T", e.Method, e.Base)
}

// EvaluationError wraps a lower-level failure encountered while performing a
// recognized resolution, carrying the triggering pair for diagnostics.
type EvaluationError struct {
	Base     any
	Property any
	Cause    error
}

func (e *EvaluationError) Error() string {
	if e.Property == nil && e.Base == nil {
		return fmt.Sprintf("exprel: evaluation failed: %v", e.Cause)
	}
	return fmt.Sprintf("exprel: resolving %v on %T: %v", e.Property, e.Base, e.Cause)
}

func (e *EvaluationError) Unwrap() error { return e.Cause }
