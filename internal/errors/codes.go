// Package errors provides structured error handling for envcheck.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Tool invocation errors
//   - 4XX: Validation and registry errors
//   - 5XX: Internal errors and cancellation
//
// Probe failures are not Go errors. They are reported as outcomes in the
// validation report; the 2XX codes only tag probe diagnostics in logs and
// never abort a run.
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryTool indicates a failure invoking or reading an external tool.
	CategoryTool Category = "TOOL"
	// CategoryValidation indicates registry or input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates the run cannot start or continue.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates the operation failed.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigInvalid  = "ERR_101_CONFIG_INVALID"
	ErrCodeConfigNotFound = "ERR_102_CONFIG_NOT_FOUND"

	// Tool errors (200-299)
	ErrCodeToolMissing      = "ERR_201_TOOL_MISSING"
	ErrCodeToolTimeout      = "ERR_202_TOOL_TIMEOUT"
	ErrCodeOutputUnparsable = "ERR_203_OUTPUT_UNPARSABLE"

	// Validation errors (400-499)
	ErrCodeRegistryMisconfigured = "ERR_401_REGISTRY_MISCONFIGURED"
	ErrCodeInvalidInput          = "ERR_402_INVALID_INPUT"
	ErrCodeUnknownSection        = "ERR_403_UNKNOWN_SECTION"

	// Internal errors (500-599)
	ErrCodeInternal  = "ERR_501_INTERNAL"
	ErrCodeCancelled = "ERR_502_CANCELLED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// "101" from "ERR_101_CONFIG_INVALID"
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryTool
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeRegistryMisconfigured, ErrCodeConfigInvalid, ErrCodeInternal:
		return SeverityFatal
	case ErrCodeToolMissing, ErrCodeToolTimeout, ErrCodeOutputUnparsable:
		return SeverityWarning
	default:
		return SeverityError
	}
}
