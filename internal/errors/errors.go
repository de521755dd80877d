// Package errors provides structured error types for plxdemo.
//
// Every user-facing failure carries a type (its category) and a stable code.
// The CLI maps these to exit statuses and the MCP server reports the code
// alongside the message, so both surfaces agree on what went wrong.
package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSignal     ErrorType = "signal"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeFile       ErrorType = "file"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes shared by the CLI and the MCP tools.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnsupportedSignal  = "UNSUPPORTED_SIGNAL"
	CodeParseFailed        = "PARSE_FAILED"
	CodeUnknownDay         = "UNKNOWN_DAY"
	CodeNoExoFiles         = "NO_EXO_FILES"
	CodeNoSolution         = "NO_SOLUTION"
	CodeFileNotFound       = "FILE_NOT_FOUND"
	CodeUnsafeDemoDisabled = "UNSAFE_DEMO_DISABLED"
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodePanicRecovered     = "PANIC_RECOVERED"
	CodeUnknown            = "UNKNOWN_ERROR"
)

// PlxError is the base error type for all plxdemo errors
type PlxError struct {
	Type       ErrorType
	Code       string
	Message    string
	Underlying error
	Details    map[string]interface{}
	Context    context.Context
	StackTrace []string
	Timestamp  time.Time
}

// Error implements the error interface
func (e *PlxError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Type, e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PlxError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is a PlxError with the same type and code.
func (e *PlxError) Is(target error) bool {
	if t, ok := target.(*PlxError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithDetails adds details to the error
func (e *PlxError) WithDetails(key string, value interface{}) *PlxError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithOperation adds operation context to an error
func (e *PlxError) WithOperation(operation string) *PlxError {
	return e.WithDetails("operation", operation)
}

// Common error constructors

// ValidationError creates a validation error
func ValidationError(code, message string, underlying error) *PlxError {
	return newError(ErrorTypeValidation, code, message, underlying)
}

// SignalError creates a signal registration error
func SignalError(code, message string, underlying error) *PlxError {
	return newError(ErrorTypeSignal, code, message, underlying)
}

// ParseError creates a parse error
func ParseError(code, message string, underlying error) *PlxError {
	return newError(ErrorTypeParse, code, message, underlying)
}

// FileError creates a file-related error
func FileError(code, message string, underlying error) *PlxError {
	return newError(ErrorTypeFile, code, message, underlying)
}

// ConfigError creates a configuration error
func ConfigError(code, message string, underlying error) *PlxError {
	return newError(ErrorTypeConfig, code, message, underlying)
}

// InternalError creates an internal error
func InternalError(code, message string, underlying error) *PlxError {
	return newError(ErrorTypeInternal, code, message, underlying)
}

func newError(errorType ErrorType, code, message string, underlying error) *PlxError {
	return &PlxError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Underlying: underlying,
		Timestamp:  time.Now(),
	}
}

// Sentinels for errors.Is comparisons. Only type and code take part in the
// comparison, so callers can match freshly constructed errors against these.
var (
	ErrInvalidInput       = ValidationError(CodeInvalidInput, "Invalid input", nil)
	ErrParseFailed        = ParseError(CodeParseFailed, "Could not parse exercise", nil)
	ErrUnknownDay         = ValidationError(CodeUnknownDay, "Unknown day", nil)
	ErrNoExoFiles         = FileError(CodeNoExoFiles, "No exercise files found", nil)
	ErrNoSolution         = FileError(CodeNoSolution, "No solution file found", nil)
	ErrFileNotFound       = FileError(CodeFileNotFound, "File not found", nil)
	ErrUnsafeDemoDisabled = ValidationError(CodeUnsafeDemoDisabled, "Unsafe demo is disabled", nil)
)

// InvalidInput is a shorthand for the most common user error.
func InvalidInput(format string, args ...interface{}) *PlxError {
	return ValidationError(CodeInvalidInput, fmt.Sprintf(format, args...), nil)
}

// ClassifyError attempts to classify a standard Go error into a PlxError
func ClassifyError(err error) *PlxError {
	if err == nil {
		return nil
	}

	var plxErr *PlxError
	if errors.As(err, &plxErr) {
		return plxErr
	}

	switch {
	case os.IsNotExist(err):
		return FileError(CodeFileNotFound, "File not found", err)
	case os.IsPermission(err):
		return FileError("PERMISSION_DENIED", "Permission denied", err)
	default:
		return InternalError(CodeUnknown, "Unknown error", err)
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, message string) *PlxError {
	if err == nil {
		return nil
	}

	classified := ClassifyError(err)
	wrapped := *classified
	wrapped.Message = message + ": " + classified.Message
	return &wrapped
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var plxErr *PlxError
	if errors.As(err, &plxErr) {
		return plxErr.Type == errorType
	}
	return false
}

// IsCode checks if an error has a specific code
func IsCode(err error, code string) bool {
	var plxErr *PlxError
	if errors.As(err, &plxErr) {
		return plxErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) string {
	var plxErr *PlxError
	if errors.As(err, &plxErr) {
		return plxErr.Code
	}
	return CodeUnknown
}

// ExitCode maps an error to a process exit status. Bad input exits with 1;
// every other failure exits with 2 so scripts can tell them apart.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsType(err, ErrorTypeValidation):
		return 1
	default:
		return 2
	}
}

// newErrorWithContext creates a new PlxError with context and stack trace
func newErrorWithContext(ctx context.Context, errorType ErrorType, code, message string, underlying error) *PlxError {
	err := newError(errorType, code, message, underlying)
	err.Context = ctx
	err.Details = make(map[string]interface{})
	err.StackTrace = captureStackTrace(2)
	return err
}

// captureStackTrace captures the current stack trace
func captureStackTrace(skip int) []string {
	var stack []string
	pc := make([]uintptr, 16)
	n := runtime.Callers(skip+1, pc)

	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		stack = append(stack, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		if !more {
			break
		}
	}

	return stack
}

// LogAttrs returns slog attributes for the error
func (e *PlxError) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("error_type", string(e.Type)),
		slog.String("error_code", e.Code),
		slog.String("error_message", e.Message),
	}

	if !e.Timestamp.IsZero() {
		attrs = append(attrs, slog.Time("error_timestamp", e.Timestamp))
	}

	if e.Underlying != nil {
		attrs = append(attrs, slog.String("underlying_error", e.Underlying.Error()))
	}

	for key, value := range e.Details {
		attrs = append(attrs, slog.Any(fmt.Sprintf("error_detail_%s", key), value))
	}

	// First few frames only
	if len(e.StackTrace) > 0 {
		maxFrames := 3
		if len(e.StackTrace) < maxFrames {
			maxFrames = len(e.StackTrace)
		}
		attrs = append(attrs, slog.Any("error_stack", e.StackTrace[:maxFrames]))
	}

	return attrs
}

// RecoverError converts a value returned by recover() into a PlxError.
// A nil value means there was no panic.
func RecoverError(ctx context.Context, r interface{}) *PlxError {
	if r == nil {
		return nil
	}

	var err error
	if e, ok := r.(error); ok {
		err = e
	} else {
		err = fmt.Errorf("panic: %v", r)
	}

	return newErrorWithContext(ctx, ErrorTypeInternal, CodePanicRecovered, "Recovered from panic", err)
}

// WithRecover wraps a function call with panic recovery
func WithRecover(ctx context.Context, fn func() error) (err error) {
	defer func() {
		if recovered := RecoverError(ctx, recover()); recovered != nil {
			err = recovered
		}
	}()

	return fn()
}
