package probe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Status is the raw result of executing a probe, before classification.
type Status int

const (
	// StatusPass indicates the dependency is present and acceptable.
	StatusPass Status = iota
	// StatusFail indicates the dependency is missing or unacceptable.
	StatusFail
	// StatusIndeterminate indicates the probe could not decide.
	StatusIndeterminate
)

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusIndeterminate:
		return "indeterminate"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusPass, StatusFail, StatusIndeterminate:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("invalid probe status %d", int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "fail":
		*s = StatusFail
	case "indeterminate":
		*s = StatusIndeterminate
	default:
		return fmt.Errorf("invalid probe status %q", string(text))
	}
	return nil
}

// Reason tags why an outcome is not a plain pass or fail.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonToolMissing      Reason = "tool_missing"
	ReasonExitStatus       Reason = "exit_status"
	ReasonExecFailed       Reason = "exec_failed"
	ReasonVersionTooOld    Reason = "version_too_old"
	ReasonUnexpectedValue  Reason = "unexpected_value"
	ReasonToolTimeout      Reason = "tool_timeout"
	ReasonOutputUnparsable Reason = "output_unparsable"
	ReasonCancelled        Reason = "cancelled"
	ReasonPanic            Reason = "panic"
)

// Severity is the impact a failing probe has on readiness.
type Severity string

const (
	// SeverityCritical failures block the workstation from being ready.
	SeverityCritical Severity = "critical"
	// SeverityWarning failures degrade but do not block.
	SeverityWarning Severity = "warning"
)

// ParseSeverity accepts "critical" or "warning" in any case.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical, nil
	case SeverityWarning:
		return SeverityWarning, nil
	}
	return "", fmt.Errorf("severity must be critical or warning, got %q", s)
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SeverityCritical || s == SeverityWarning
}

// Outcome is what a single execution of a probe produced.
type Outcome struct {
	Status Status
	// Detail is a one-line human summary, e.g. the detected version.
	Detail string
	// RawOutput is kept for diagnostics when the output could not be read.
	RawOutput string
	Reason    Reason
}

// Passed returns a passing outcome.
func Passed(detail string) Outcome {
	return Outcome{Status: StatusPass, Detail: detail}
}

// Failed returns a failing outcome.
func Failed(reason Reason, detail string) Outcome {
	return Outcome{Status: StatusFail, Detail: detail, Reason: reason}
}

// Indeterminate returns an outcome for a probe that could not decide.
func Indeterminate(reason Reason, detail, raw string) Outcome {
	return Outcome{Status: StatusIndeterminate, Detail: detail, RawOutput: raw, Reason: reason}
}

// CheckFunc is a probe body. It must honor ctx and must not mutate the
// system it inspects.
type CheckFunc func(ctx context.Context) Outcome

// Probe declares one dependency check.
type Probe struct {
	ID string
	// Section is assigned by the registry on registration.
	Section     string
	Description string
	Check       CheckFunc
	// SeverityIfFailed is the impact of a Fail outcome.
	SeverityIfFailed Severity
	// Optional probes never classify above Warning.
	Optional    bool
	Remediation string
	// Timeout overrides the orchestrator default when positive.
	Timeout time.Duration
	// Command is the command line shown in listings, if any.
	Command string
}

// CriticalCapable reports whether a failure of p can block readiness.
func (p Probe) CriticalCapable() bool {
	return p.SeverityIfFailed == SeverityCritical && !p.Optional
}
