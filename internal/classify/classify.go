// Package classify maps a probe outcome to a readiness severity.
//
// The mapping is a pure function of the probe declaration and its
// outcome:
//
//	Pass                          -> Pass
//	Fail, critical, not optional  -> Critical
//	Fail, warning or optional     -> Warning
//	Indeterminate                 -> Warning
package classify

import (
	"fmt"

	"github.com/Aman-CERP/envcheck/internal/probe"
)

// Severity is the classified impact of one probe result.
type Severity string

const (
	SeverityPass     Severity = "pass"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	return string(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeverityPass, SeverityWarning, SeverityCritical:
		return []byte(s), nil
	}
	return nil, fmt.Errorf("invalid severity %q", string(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	switch v := Severity(text); v {
	case SeverityPass, SeverityWarning, SeverityCritical:
		*s = v
		return nil
	}
	return fmt.Errorf("invalid severity %q", string(text))
}

// Result is a probe outcome with its classified severity.
type Result struct {
	Probe    probe.Probe
	Outcome  probe.Outcome
	Severity Severity
}

// Classify derives the severity of outcome o for probe p.
func Classify(p probe.Probe, o probe.Outcome) Result {
	return Result{Probe: p, Outcome: o, Severity: severityOf(p, o)}
}

func severityOf(p probe.Probe, o probe.Outcome) Severity {
	switch o.Status {
	case probe.StatusPass:
		return SeverityPass
	case probe.StatusFail:
		if p.CriticalCapable() {
			return SeverityCritical
		}
		return SeverityWarning
	default:
		// An undecided probe is never allowed to block readiness.
		return SeverityWarning
	}
}
