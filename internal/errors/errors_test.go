package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("yaml: line 3: did not find expected key")

	// When: wrapping it as a registry error
	err := RegistryError("registry file is malformed", originalErr)

	// Then: unwrapping returns the original error
	require.NotNil(t, err)
	assert.Equal(t, originalErr, errors.Unwrap(err))
	assert.True(t, errors.Is(err, originalErr))
}

func TestError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigInvalid,
			message:  "probes.timeout must be positive",
			expected: "[ERR_101_CONFIG_INVALID] probes.timeout must be positive",
		},
		{
			name:     "registry error",
			code:     ErrCodeRegistryMisconfigured,
			message:  `duplicate probe id "node.installed"`,
			expected: `[ERR_401_REGISTRY_MISCONFIGURED] duplicate probe id "node.installed"`,
		},
		{
			name:     "cancelled",
			code:     ErrCodeCancelled,
			message:  "validation run cancelled",
			expected: "[ERR_502_CANCELLED] validation run cancelled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code but different messages
	a := RegistryError("duplicate probe id", nil)
	b := RegistryError("empty probe id", nil)

	// Then: errors.Is matches by code, wrapped or not
	assert.True(t, errors.Is(a, b))
	assert.True(t, errors.Is(fmt.Errorf("load: %w", a), New(ErrCodeRegistryMisconfigured, "", nil)))
	assert.False(t, errors.Is(a, CancelledError(nil)))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityFatal},
		{ErrCodeConfigNotFound, CategoryConfig, SeverityError},
		{ErrCodeToolMissing, CategoryTool, SeverityWarning},
		{ErrCodeToolTimeout, CategoryTool, SeverityWarning},
		{ErrCodeOutputUnparsable, CategoryTool, SeverityWarning},
		{ErrCodeRegistryMisconfigured, CategoryValidation, SeverityFatal},
		{ErrCodeUnknownSection, CategoryValidation, SeverityError},
		{ErrCodeInternal, CategoryInternal, SeverityFatal},
		{ErrCodeCancelled, CategoryInternal, SeverityError},
		{"bogus", CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestUnknownSectionError_ListsKnownSections(t *testing.T) {
	err := UnknownSectionError("Containers", []string{"Host Operating System", "Container Runtime"})

	assert.Equal(t, ErrCodeUnknownSection, err.Code)
	assert.Equal(t, "Containers", err.Details["section"])
	assert.Contains(t, err.Suggestion, `"Container Runtime"`)
}

func TestHelpers_WorkThroughWrapping(t *testing.T) {
	// Given: a registry error wrapped by fmt.Errorf
	err := fmt.Errorf("loading defaults: %w", RegistryError("bad", nil))

	// Then: helpers see through the wrap
	assert.Equal(t, ErrCodeRegistryMisconfigured, GetCode(err))
	assert.Equal(t, CategoryValidation, GetCategory(err))
	assert.True(t, IsFatal(err))

	// And: plain errors have no code
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.False(t, IsFatal(errors.New("plain")))
}

func TestFormatForCLI(t *testing.T) {
	// Given: an error with a suggestion
	err := UnknownSectionError("Nope", []string{"Cloud CLI"})

	// When: formatting for the terminal
	out := FormatForCLI(err)

	// Then: message, hint and code each get a line
	assert.Equal(t, "Error: unknown section \"Nope\"\n  Hint: Use one of: \"Cloud CLI\"\n  Code: ERR_403_UNKNOWN_SECTION\n", out)
	assert.Empty(t, FormatForCLI(nil))
}

func TestFormatForCLI_PlainErrorBecomesInternal(t *testing.T) {
	out := FormatForCLI(errors.New("boom"))

	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, ErrCodeInternal)
}

func TestFormatJSON(t *testing.T) {
	// Given: a cancellation error with a cause
	err := CancelledError(errors.New("context canceled"))

	// When: formatting as JSON
	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	// Then: the fields are machine readable
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ErrCodeCancelled, got["code"])
	assert.Equal(t, "INTERNAL", got["category"])
	assert.Equal(t, "context canceled", got["cause"])
	assert.NotEmpty(t, got["suggestion"])
}

func TestFormatForLog(t *testing.T) {
	err := RegistryError("duplicate probe id", nil).WithDetail("probe_id", "node.installed")

	fields := FormatForLog(err)

	assert.Equal(t, ErrCodeRegistryMisconfigured, fields["error_code"])
	assert.Equal(t, "node.installed", fields["detail_probe_id"])
	assert.Equal(t, map[string]any{"error": "plain"}, FormatForLog(errors.New("plain")))
	assert.Nil(t, FormatForLog(nil))
}

func TestToolError(t *testing.T) {
	err := ToolError(ErrCodeToolTimeout, "docker.daemon", "timed out waiting for the tool to respond")

	assert.Equal(t, CategoryTool, err.Category)
	assert.Equal(t, SeverityWarning, err.Severity)
	assert.Equal(t, "docker.daemon", err.Details["probe"])
	assert.False(t, IsFatal(err))
}
