// Package errors defines the loader's error values: sentinels for each
// failure the capture and launch code can report, typed errors that carry
// the context of that failure, and a few helpers to classify them.
//
// # Error Types
//
//   - CaptureError: the capture routine failed; Kind says why
//   - LaunchError: the bundle processor or launch planning failed
//   - ValidationError: a value from the command line or config was rejected
//   - TimeoutError: waiting for a capture took too long
//
// Every typed error matches its kind sentinel and its cause with Is:
//
//	err := errors.NewCaptureError(errors.ResourceResolutionIO, "resolve marker archive", ioErr)
//
//	errors.Is(err, errors.ErrResourceResolution) // true
//	errors.Is(err, ioErr)                        // true
//
//	if kind, ok := errors.KindOf(err); ok && kind == errors.UnsupportedLoaderShape { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Standard library helpers, so callers need a single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	New  = errors.New
	Join = errors.Join
)

// Capture failures, one per FailureKind.
var (
	// ErrUnsupportedLoaderShape means the active loader does not expose its entries.
	ErrUnsupportedLoaderShape = New("loader does not expose its classpath entries")
	// ErrResourceResolution means resolving a containing archive hit an I/O fault.
	ErrResourceResolution = New("resource resolution failed")
	// ErrUnexpectedFault is any other fault raised during capture.
	ErrUnexpectedFault = New("unexpected fault during capture")
)

// Launch failures.
var (
	// ErrUnknownVariant is a launch variant with no tweaker.
	ErrUnknownVariant = New("unknown launch variant")
	// ErrCaptureFailed means the bundle processor received a failed capture.
	ErrCaptureFailed = New("classpath capture failed")
	// ErrHostStart means the host could not spawn the capture entry point.
	ErrHostStart = New("host failed to start entry point")
)

// Conditions shared by several packages.
var (
	ErrTimeout      = New("operation timed out")
	ErrCanceled     = New("operation canceled")
	ErrInvalidInput = New("invalid input")
)

// LoaderError is implemented by every typed error in this package.
type LoaderError interface {
	error
	Unwrap() error

	// IsRetryable reports whether trying again may succeed.
	IsRetryable() bool
}

// baseError holds what all typed errors share: a message, the error that
// caused it and whether a retry can help.
type baseError struct {
	message   string
	cause     error
	retryable bool
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Unwrap() error { return e.cause }

func (e *baseError) IsRetryable() bool { return e.retryable }

// causeIs reports whether target is in the cause chain.
func (e *baseError) causeIs(target error) bool {
	return e.cause != nil && errors.Is(e.cause, target)
}

// format renders "<kind> [k=v, ...]: message: cause", leaving out the
// brackets when there is no context.
func (e *baseError) format(kind string, context []string) string {
	prefix := kind
	if len(context) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(context, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// FailureKind tags the cause of a failed classpath capture.
type FailureKind int

const (
	// UnexpectedFault is any fault not covered by a more specific kind,
	// including panics recovered at the entry point.
	UnexpectedFault FailureKind = iota
	// UnsupportedLoaderShape means the active loader cannot enumerate its entries.
	UnsupportedLoaderShape
	// ResourceResolutionIO means resolving the marker's containing archive failed.
	ResourceResolutionIO
)

// String returns the kind name used in error messages.
func (k FailureKind) String() string {
	switch k {
	case UnsupportedLoaderShape:
		return "unsupported_loader_shape"
	case ResourceResolutionIO:
		return "resource_resolution_io"
	case UnexpectedFault:
		return "unexpected_fault"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case UnsupportedLoaderShape:
		return ErrUnsupportedLoaderShape
	case ResourceResolutionIO:
		return ErrResourceResolution
	default:
		return ErrUnexpectedFault
	}
}

// CaptureError is the failure published through a capture point.
//
//	err := errors.NewCaptureError(errors.ResourceResolutionIO, "resolve archive", ioErr).
//		WithResource("jar:file:/libs/asm.jar!/org/objectweb/asm/ClassReader.class")
//	fmt.Println(err) // "capture error [kind=resource_resolution_io, resource=jar:...]: resolve archive: ..."
type CaptureError struct {
	baseError
	Kind     FailureKind
	Resource string
}

// NewCaptureError creates a CaptureError. Capture runs once, so it is
// never retryable.
func NewCaptureError(kind FailureKind, message string, cause error) *CaptureError {
	return &CaptureError{
		baseError: baseError{message: message, cause: cause},
		Kind:      kind,
	}
}

// WithResource records the resource that was being resolved.
func (e *CaptureError) WithResource(resource string) *CaptureError {
	e.Resource = resource
	return e
}

func (e *CaptureError) Error() string {
	context := []string{"kind=" + e.Kind.String()}
	if e.Resource != "" {
		context = append(context, "resource="+e.Resource)
	}
	return e.format("capture error", context)
}

// Is matches any *CaptureError, the sentinel for the error's kind, and
// anything in the cause chain.
func (e *CaptureError) Is(target error) bool {
	if _, ok := target.(*CaptureError); ok {
		return true
	}
	return target == e.Kind.sentinel() || e.causeIs(target)
}

// LaunchError is a failure of bundle processing or launch planning.
//
//	err := errors.NewLaunchError("bundle processing failed", capErr).WithVariant("server")
type LaunchError struct {
	baseError
	Variant string
	Target  string
}

// NewLaunchError creates a LaunchError. It is retryable when its cause is.
func NewLaunchError(message string, cause error) *LaunchError {
	return &LaunchError{
		baseError: baseError{message: message, cause: cause, retryable: IsRetryable(cause)},
	}
}

// WithVariant records the launch variant.
func (e *LaunchError) WithVariant(variant string) *LaunchError {
	e.Variant = variant
	return e
}

// WithTarget records the main class being launched.
func (e *LaunchError) WithTarget(target string) *LaunchError {
	e.Target = target
	return e
}

func (e *LaunchError) Error() string {
	var context []string
	if e.Variant != "" {
		context = append(context, "variant="+e.Variant)
	}
	if e.Target != "" {
		context = append(context, "target="+e.Target)
	}
	return e.format("launch error", context)
}

// Is matches any *LaunchError and anything in the cause chain.
func (e *LaunchError) Is(target error) bool {
	if _, ok := target.(*LaunchError); ok {
		return true
	}
	return e.causeIs(target)
}

// ValidationError is a rejected input value. It matches ErrInvalidInput.
//
//	err := errors.NewValidationError("unknown variant").WithField("variant").WithValue("applet")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError: baseError{message: message}}
}

// WithField names the rejected field.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue records the rejected value.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause records why the value was rejected.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

func (e *ValidationError) Error() string {
	var context []string
	if e.Field != "" {
		context = append(context, "field="+e.Field)
	}
	if e.Value != nil {
		context = append(context, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", context)
}

// Is matches any *ValidationError, ErrInvalidInput and the cause chain.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return target == ErrInvalidInput || e.causeIs(target)
}

// TimeoutError is an operation that did not finish in time. It matches
// ErrTimeout and is retryable.
//
//	err := errors.NewTimeoutError("awaiting classpath capture", 10*time.Second)
//	fmt.Println(err) // "timeout error: awaiting classpath capture (timeout: 10s)"
type TimeoutError struct {
	baseError
	Operation string
	Duration  time.Duration
}

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(operation string, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		baseError: baseError{message: operation, retryable: true},
		Operation: operation,
		Duration:  duration,
	}
}

// WithCause records the context error that ended the wait.
func (e *TimeoutError) WithCause(cause error) *TimeoutError {
	e.cause = cause
	return e
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timeout error: %s (timeout: %s)", e.Operation, e.Duration)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Is matches any *TimeoutError, ErrTimeout and the cause chain.
func (e *TimeoutError) Is(target error) bool {
	if _, ok := target.(*TimeoutError); ok {
		return true
	}
	return target == ErrTimeout || e.causeIs(target)
}

// IsRetryable reports whether err, or the first LoaderError in its chain,
// says a retry may succeed. Untyped errors are retryable only when they
// wrap ErrTimeout.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var loaderErr LoaderError
	if As(err, &loaderErr) {
		return loaderErr.IsRetryable()
	}
	return Is(err, ErrTimeout)
}

// KindOf returns the capture failure kind carried by err, and false when err
// is not a capture failure.
func KindOf(err error) (FailureKind, bool) {
	var capErr *CaptureError
	if As(err, &capErr) {
		return capErr.Kind, true
	}
	return UnexpectedFault, false
}
