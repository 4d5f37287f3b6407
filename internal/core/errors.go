package core

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation    ErrorCategory = "validation"    // Invalid input
	ErrCatExecution     ErrorCategory = "execution"     // Runtime failure
	ErrCatState         ErrorCategory = "state"         // Invalid state transition
	ErrCatNotFound      ErrorCategory = "not_found"     // Resource not found
	ErrCatSerialization ErrorCategory = "serialization" // Encode/decode failure
	ErrCatInternal      ErrorCategory = "internal"      // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
	Details  map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{Category: ErrCatValidation, Code: code, Message: message}
}

// ErrExecution creates an execution error.
func ErrExecution(code, message string) *DomainError {
	return &DomainError{Category: ErrCatExecution, Code: code, Message: message}
}

// ErrState creates a state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{Category: ErrCatState, Code: code, Message: message}
}

// ErrNotFound creates a not found error.
func ErrNotFound(code, message string) *DomainError {
	return &DomainError{Category: ErrCatNotFound, Code: code, Message: message}
}

// ErrSerialization creates a serialization error.
func ErrSerialization(message string) *DomainError {
	return &DomainError{Category: ErrCatSerialization, Code: "SERIALIZATION_FAILED", Message: message}
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// Predefined error codes
const (
	CodeEmptyWorkflow    = "EMPTY_WORKFLOW"
	CodeParseFailed      = "PARSE_FAILED"
	CodeInvalidState     = "INVALID_STATE"
	CodeWorkflowNotFound = "WORKFLOW_NOT_FOUND"
	CodeLLMFailed        = "LLM_FAILED"
	CodeBadStageOutput   = "BAD_STAGE_OUTPUT"
	CodeInvalidConfig    = "INVALID_CONFIG"
)
