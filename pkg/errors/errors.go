// Package errors provides structured error handling for the spatial index.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidInterval indicates a malformed interval (start > end).
	KindInvalidInterval
	// KindIntegrity indicates a structural invariant violation detected
	// by a diagnostic check.
	KindIntegrity
	// KindScene indicates a scene file load or validation failure.
	KindScene
	// KindSnapshot indicates a snapshot rendering failure.
	KindSnapshot
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInterval:
		return "invalid-interval"
	case KindIntegrity:
		return "integrity"
	case KindScene:
		return "scene"
	case KindSnapshot:
		return "snapshot"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ErrInvalidInterval is the sentinel matched by errors.Is for intervals
// whose start exceeds their end. The caller constructed a malformed bound;
// the index never clamps or swaps.
var ErrInvalidInterval = stderrors.New("interval start exceeds end")

// SpatialError represents a structured error in the spatial index.
type SpatialError struct {
	// Op is the operation that failed (e.g., "interval.Insert").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *SpatialError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *SpatialError) Unwrap() error {
	return e.Err
}

// InvalidInterval constructs the error returned when an insert is attempted
// with start > end. It wraps ErrInvalidInterval so callers can test with
// errors.Is regardless of the originating operation.
func InvalidInterval(op string, start, end float64) *SpatialError {
	return &SpatialError{
		Op:   op,
		Kind: KindInvalidInterval,
		Err:  fmt.Errorf("%w: [%g, %g]", ErrInvalidInterval, start, end),
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "hitbench.runBench").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// SceneError represents a failure to load or validate a scene description.
type SceneError struct {
	// Path is the scene file path, if loaded from disk.
	Path string
	// Field names the offending field, if the failure is field-specific.
	Field string
	// Err is the underlying error.
	Err error
}

func (e *SceneError) Error() string {
	switch {
	case e.Path != "" && e.Field != "":
		return fmt.Sprintf("scene %s: field %s: %v", e.Path, e.Field, e.Err)
	case e.Path != "":
		return fmt.Sprintf("scene %s: %v", e.Path, e.Err)
	case e.Field != "":
		return fmt.Sprintf("scene field %s: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("scene: %v", e.Err)
	}
}

func (e *SceneError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the spatial index tooling.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *SpatialError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
