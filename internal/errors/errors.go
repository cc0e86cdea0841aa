// Package errors provides a lightweight structured error type (AgentError)
// for category-based classification in the pipeline stages and HTTP adapter.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of an agent error for classification.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External system integration errors
	CategoryLLM     ErrorCategory = "llm"
	CategoryBlob    ErrorCategory = "blob"
	CategoryForge   ErrorCategory = "forge"
	CategoryNetwork ErrorCategory = "network"

	// Local processing errors
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// ContextFields carries structured context for AgentError.
type ContextFields map[string]any

// AgentError is a structured error with category, severity, and context.
type AgentError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Error implements the error interface.
func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap implements Go 1.13+ error unwrapping.
func (e *AgentError) Unwrap() error { return e.Cause }

// WithContext adds a context key-value pair and returns the error for chaining.
func (e *AgentError) WithContext(key string, value any) *AgentError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// IsCategory checks whether the error belongs to a specific category.
func (e *AgentError) IsCategory(category ErrorCategory) bool {
	return e.Category == category
}

// New creates a new AgentError with the given category and message.
func New(category ErrorCategory, message string) *AgentError {
	return &AgentError{Category: category, Severity: SeverityError, Message: message}
}

// Wrap creates a new AgentError wrapping an existing error.
func Wrap(err error, category ErrorCategory, message string) *AgentError {
	return &AgentError{Category: category, Severity: SeverityError, Message: message, Cause: err}
}

// ValidationError creates an input-validation error. These are raised at the
// point of detection, before any network call is made.
func ValidationError(message string) *AgentError {
	return &AgentError{Category: CategoryValidation, Severity: SeverityError, Message: message}
}

// ConfigError creates a fatal configuration error.
func ConfigError(message string) *AgentError {
	return &AgentError{Category: CategoryConfig, Severity: SeverityFatal, Message: message}
}

// AsAgentError extracts an *AgentError from an error chain.
func AsAgentError(err error) (*AgentError, bool) {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsValidation reports whether err is an input-validation failure.
func IsValidation(err error) bool {
	if ae, ok := AsAgentError(err); ok {
		return ae.IsCategory(CategoryValidation)
	}
	return false
}
