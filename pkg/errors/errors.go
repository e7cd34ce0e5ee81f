// Package errors defines the dispatch error taxonomy and its stable
// exit-code contract. The exit code is the loader's primary diagnostic
// surface: nothing is logged by default, so every failure path must map
// to a distinct, documented code that operators can cross-reference.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies one failure class in the dispatch pipeline.
type ErrorCode string

const (
	// ErrPanic covers internal invariant violations. It should be
	// unreachable in a correct build.
	ErrPanic ErrorCode = "PANIC"

	// ErrSelfExecution means the resolved target is the loader's own
	// canonical path. Executing it would recurse forever.
	ErrSelfExecution ErrorCode = "SELF_EXECUTION"

	// ErrCommandPathInvalid means argv0 does not fit the bounded path
	// buffer. Rejected before any resolution is attempted.
	ErrCommandPathInvalid ErrorCode = "COMMAND_PATH_INVALID"

	// ErrProcPathIO means the running-image reference (/proc/self/exe)
	// could not be read.
	ErrProcPathIO ErrorCode = "PROC_PATH_IO_ERROR"

	// ErrProcPathInvalid means the running-image reference does not
	// match the expected install path of the loader.
	ErrProcPathInvalid ErrorCode = "PROC_PATH_INVALID"

	// ErrPathResolutionIO means resolving argv0 to an absolute,
	// symlink-free path failed at the filesystem level.
	ErrPathResolutionIO ErrorCode = "PATH_RESOLUTION_IO_ERROR"

	// ErrTargetPathInvalid means the resolved target is not under the
	// installation prefix.
	ErrTargetPathInvalid ErrorCode = "TARGET_PATH_INVALID"

	// ErrTargetPathTooLarge means a formatted candidate path exceeds
	// the bounded path buffer.
	ErrTargetPathTooLarge ErrorCode = "TARGET_PATH_TOO_LARGE"

	// ErrTargetExecution means process replacement failed with
	// something other than "file does not exist".
	ErrTargetExecution ErrorCode = "TARGET_EXECUTION_ERROR"

	// ErrNoViableBinaries means every candidate was absent.
	ErrNoViableBinaries ErrorCode = "TARGET_NO_VIABLE_BINARIES"
)

// exitCodes is the stable code table. Codes are part of the external
// contract and must never be reused for unrelated meanings.
var exitCodes = map[ErrorCode]int{
	ErrPanic:              100,
	ErrSelfExecution:      200,
	ErrCommandPathInvalid: 210,
	ErrProcPathIO:         220,
	ErrProcPathInvalid:    221,
	ErrPathResolutionIO:   230,
	ErrTargetPathInvalid:  240,
	ErrTargetPathTooLarge: 241,
	ErrTargetExecution:    242,
	ErrNoViableBinaries:   243,
}

// DispatchError is a structured error carrying the failure class, the
// offending path (when one exists) and the wrapped cause.
type DispatchError struct {
	Code    ErrorCode
	Message string
	Path    string
	Wrapped error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Wrapped != nil {
		msg += fmt.Sprintf(": %v", e.Wrapped)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface.
func (e *DispatchError) Unwrap() error {
	return e.Wrapped
}

// Is matches two DispatchErrors by code, so callers can test for a
// failure class with errors.Is regardless of message or path.
func (e *DispatchError) Is(target error) bool {
	var targetErr *DispatchError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// ExitCode returns the stable exit status for this error.
func (e *DispatchError) ExitCode() int {
	if code, ok := exitCodes[e.Code]; ok {
		return code
	}
	return exitCodes[ErrPanic]
}

// New creates a DispatchError with the given code and message.
func New(code ErrorCode, message string) *DispatchError {
	return &DispatchError{Code: code, Message: message}
}

// Newf creates a DispatchError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *DispatchError {
	return &DispatchError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a code and message.
func Wrap(err error, code ErrorCode, message string) *DispatchError {
	return &DispatchError{Code: code, Message: message, Wrapped: err}
}

// WithPath returns a copy of the error annotated with the offending path.
func (e *DispatchError) WithPath(path string) *DispatchError {
	clone := *e
	clone.Path = path
	return &clone
}

// CodeOf extracts the ErrorCode from any error. Errors that are not
// DispatchErrors are internal invariant violations.
func CodeOf(err error) ErrorCode {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrPanic
}

// ExitCode maps any error to its stable exit status. Unknown errors map
// to the internal invariant code.
func ExitCode(err error) int {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.ExitCode()
	}
	return exitCodes[ErrPanic]
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
