package errors

import (
	"context"
	"errors"
	"fmt"
)

// Error types for the bootstrap run
type ErrorType string

const (
	ErrorTypeConnection    ErrorType = "CONNECTION_ERROR"
	ErrorTypeProbe         ErrorType = "PROBE_ERROR"
	ErrorTypeSetup         ErrorType = "SETUP_ERROR"
	ErrorTypeWrite         ErrorType = "WRITE_ERROR"
	ErrorTypeValidation    ErrorType = "VALIDATION_ERROR"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeLock          ErrorType = "LOCK_ERROR"
	ErrorTypeInternal      ErrorType = "INTERNAL_ERROR"
)

// Process exit codes. Every normal path, including a lenient seed write
// failure, exits with ExitOK.
const (
	ExitOK          = 0
	ExitConfig      = 1
	ExitProbe       = 2
	ExitSetup       = 3
	ExitWrite       = 4
	ExitLock        = 5
	ExitInterrupted = 130
)

// Common bootstrap errors
var (
	ErrMissingDatabase   = errors.New("target database name is not set")
	ErrMissingCollection = errors.New("target collection name is not set")
	ErrInvalidSeed       = errors.New("invalid seed record")
	ErrUnsupportedSeed   = errors.New("unsupported seed file format")
	ErrLockHeld          = errors.New("initialization lock is held by another run")
	ErrRetriesExhausted  = errors.New("connection retries exhausted")
)

// AppError represents a typed bootstrap error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	ExitCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, exitCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		ExitCode: exitCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewConnectionError creates a connection error. Connection errors are
// retried and only surface when the retry policy gives up.
func NewConnectionError(message string) *AppError {
	return NewAppError(ErrorTypeConnection, message, ExitConfig)
}

// NewProbeError creates a probe error
func NewProbeError(message string) *AppError {
	return NewAppError(ErrorTypeProbe, message, ExitProbe)
}

// NewSetupError creates an error for a failed collection or index creation
func NewSetupError(message string) *AppError {
	return NewAppError(ErrorTypeSetup, message, ExitSetup)
}

// NewWriteError creates a seed write error
func NewWriteError(message string) *AppError {
	return NewAppError(ErrorTypeWrite, message, ExitWrite)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, ExitConfig)
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(message string) *AppError {
	return NewAppError(ErrorTypeConfiguration, message, ExitConfig)
}

// NewLockError creates a lock backend error
func NewLockError(message string) *AppError {
	return NewAppError(ErrorTypeLock, message, ExitLock)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, ExitConfig)
}

// ValidationError represents a validation failure for a single field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors represents a collection of validation errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// NewValidationErrors creates a new validation errors instance
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}

// Add adds a validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) *ValidationErrors {
	ve.Errors = append(ve.Errors, ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
	return ve
}

// HasErrors returns true if there are validation errors
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError converts validation errors to an AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	if !ve.HasErrors() {
		return nil
	}

	appErr := NewValidationError("seed record validation failed").WithCause(ErrInvalidSeed)
	appErr.Details["validation_errors"] = ve.Errors
	return appErr
}

// WrapError wraps an error with context
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// TypeOf returns the AppError type carried by err, or an empty type
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsConnection checks if an error is a connection error
func IsConnection(err error) bool {
	return TypeOf(err) == ErrorTypeConnection
}

// IsProbe checks if an error is a probe error
func IsProbe(err error) bool {
	return TypeOf(err) == ErrorTypeProbe
}

// IsSetup checks if an error is a setup error
func IsSetup(err error) bool {
	return TypeOf(err) == ErrorTypeSetup
}

// IsWrite checks if an error is a seed write error
func IsWrite(err error) bool {
	return TypeOf(err) == ErrorTypeWrite
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	if TypeOf(err) == ErrorTypeValidation {
		return true
	}
	return errors.Is(err, ErrInvalidSeed)
}

// IsLock checks if an error is a lock backend error
func IsLock(err error) bool {
	return TypeOf(err) == ErrorTypeLock
}

// ExitCode maps an error returned by a run to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitConfig
}
