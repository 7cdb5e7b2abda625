package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Error is the structured error type for envcheck.
// It carries enough context for CLI presentation, JSON output and logging.
type Error struct {
	// Code is the unique error code (e.g., "ERR_401_REGISTRY_MISCONFIGURED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Tool, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// New creates a new Error with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an Error from an existing error.
// The error's message becomes the Error message.
func Wrap(code string, err error) *Error {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *Error {
	return New(ErrCodeConfigInvalid, message, cause)
}

// RegistryError creates a registry misconfiguration error. A run never
// starts when the registry is misconfigured.
func RegistryError(message string, cause error) *Error {
	return New(ErrCodeRegistryMisconfigured, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *Error {
	return New(ErrCodeInvalidInput, message, cause)
}

// UnknownSectionError reports a section filter that matches nothing.
func UnknownSectionError(section string, known []string) *Error {
	e := New(ErrCodeUnknownSection, fmt.Sprintf("unknown section %q", section), nil)
	if len(known) > 0 {
		e.WithSuggestion(fmt.Sprintf("Use one of: %s", joinQuoted(known)))
	}
	return e.WithDetail("section", section)
}

// CancelledError marks a run interrupted before every probe finished.
func CancelledError(cause error) *Error {
	return New(ErrCodeCancelled, "validation run cancelled", cause).
		WithSuggestion("Re-run envcheck validate to completion for a full report")
}

// ToolError describes a probe that could not get an answer from its tool.
// It is logged, never returned from a run.
func ToolError(code, probeID, detail string) *Error {
	return New(code, detail, nil).WithDetail("probe", probeID)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *Error {
	return New(ErrCodeInternal, message, cause)
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from the first *Error in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetCategory extracts the category from the first *Error in the chain.
// Returns empty string if there is none.
func GetCategory(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return ""
}

func joinQuoted(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}
