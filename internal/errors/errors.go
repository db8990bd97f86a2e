package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution (or explicit zero work).
	ExitErrorGeneric  = 1   // Indicates invalid arguments or any internal failure.
	ExitErrorCanceled = 130 // Indicates the run was interrupted (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as a malformed
// positional argument. It indicates that the application cannot proceed due to
// incorrect user input. No shared resource has been created when it is returned.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns the human-readable explanation.
func (e ValidationError) Error() string {
	return e.Message
}

// ResourceKind names the class of a named inter-process resource.
type ResourceKind string

// Named resource kinds.
const (
	KindSegment   ResourceKind = "shared memory segment"
	KindSemaphore ResourceKind = "semaphore"
)

// ResourceError reports a failure to create, open or remove a named
// inter-process resource.
type ResourceError struct {
	// Kind is the class of resource involved.
	Kind ResourceKind
	// Name is the system-wide name of the resource.
	Name string
	// Op is the attempted operation ("create", "open", "destroy").
	Op string
	// Stale is set when creation failed because a resource with the same name
	// already exists, usually left behind by a run that did not clean up.
	Stale bool
	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted message describing the resource failure.
func (e *ResourceError) Error() string {
	if e.Stale {
		return fmt.Sprintf("stale %s %q already exists (left by a previous run?); remove it with --cleanup", e.Kind, e.Name)
	}
	return fmt.Sprintf("cannot %s %s %q: %v", e.Op, e.Kind, e.Name, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ResourceError) Unwrap() error { return e.Cause }

// WorkerError reports a worker process that could not be started or that
// exited with a non-zero status.
type WorkerError struct {
	// Slot is the slot id assigned to the worker.
	Slot int
	// PID is the worker's process id, or 0 if it never started.
	PID int
	// ExitCode is the worker's exit status, or -1 if unknown.
	ExitCode int
	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted message describing the worker failure.
func (e *WorkerError) Error() string {
	if e.PID == 0 {
		return fmt.Sprintf("worker %d failed to start: %v", e.Slot, e.Cause)
	}
	return fmt.Sprintf("worker %d (pid %d) exited with status %d", e.Slot, e.PID, e.ExitCode)
}

// Unwrap returns the underlying cause.
func (e *WorkerError) Unwrap() error { return e.Cause }

// TimeoutError represents an operation that exceeded its configured limit.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// It returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsStale reports whether err was caused by a named resource left behind by a
// previous run.
func IsStale(err error) bool {
	var re *ResourceError
	return errors.As(err, &re) && re.Stale
}

// ExitCodeFor maps an error returned by the coordinator to a process exit code.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}
