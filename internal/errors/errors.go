// Package errors provides a lightweight structured error type (FboxError)
// for category-based classification and exit code selection in the CLI.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of an fbox error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// External programs and services
	CategoryProcess ErrorCategory = "process"
	CategoryService ErrorCategory = "service"
	CategoryGit     ErrorCategory = "git"

	// Local files
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// FboxError is a structured error with category, severity and context
type FboxError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for FboxError
type ContextFields map[string]any

// Error implements the error interface
func (e *FboxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *FboxError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *FboxError) WithContext(key string, value any) *FboxError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new FboxError
func New(category ErrorCategory, severity ErrorSeverity, message string) *FboxError {
	return &FboxError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new FboxError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *FboxError {
	return &FboxError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As returns the first FboxError in err's chain.
func As(err error) (*FboxError, bool) {
	var fe *FboxError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if fe, ok := As(err); ok {
		return fe.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not an FboxError
func GetCategory(err error) ErrorCategory {
	if fe, ok := As(err); ok {
		return fe.Category
	}
	return CategoryInternal
}
