// Package report aggregates classified probe results into a validation
// report and renders it as text or JSON.
//
// A Report is a value: it is built once by Aggregate and never mutated.
package report

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Aman-CERP/envcheck/internal/classify"
	"github.com/Aman-CERP/envcheck/internal/probe"
)

// Summary status values.
const (
	StatusReady             = "ready"
	StatusReadyWithWarnings = "ready_with_warnings"
	StatusFailed            = "failed"
	StatusIncomplete        = "incomplete"
)

// Exit codes.
const (
	ExitPass       = 0
	ExitCritical   = 1
	ExitIncomplete = 2
)

// Entry is one probe line in the report.
type Entry struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Severity    classify.Severity `json:"severity"`
	Status      probe.Status      `json:"status"`
	Reason      probe.Reason      `json:"reason,omitempty"`
	Optional    bool              `json:"optional,omitempty"`
	Detail      string            `json:"detail"`
	RawOutput   string            `json:"rawOutput,omitempty"`
	Remediation string            `json:"remediation"`
}

// Section groups entries in registry order.
type Section struct {
	Name   string  `json:"name"`
	Probes []Entry `json:"probes"`
}

// Counts tallies entries by severity.
type Counts struct {
	Total    int `json:"total"`
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Critical int `json:"critical"`
}

// Report is the result of one validation run.
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	OverallPass bool      `json:"overallPass"`
	Status      string    `json:"status"`
	Incomplete  bool      `json:"incomplete,omitempty"`
	// Skipped lists probe ids never started because the run was cancelled.
	Skipped  []string  `json:"skipped,omitempty"`
	Counts   Counts    `json:"counts"`
	Sections []Section `json:"sections"`
}

// Option adjusts aggregation.
type Option func(*aggregateOptions)

type aggregateOptions struct {
	incomplete bool
	skipped    []string
}

// WithIncomplete marks the report as the partial result of a cancelled
// run. skipped lists the probes that never started.
func WithIncomplete(skipped []string) Option {
	return func(o *aggregateOptions) {
		o.incomplete = true
		o.skipped = append([]string(nil), skipped...)
	}
}

// Aggregate builds a report from results in registry order. Sections
// appear in the order their first probe appears. generatedAt is stored
// in UTC at second precision.
func Aggregate(results []classify.Result, generatedAt time.Time, opts ...Option) Report {
	var o aggregateOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := Report{
		GeneratedAt: generatedAt.UTC().Truncate(time.Second),
		Sections:    make([]Section, 0),
		Incomplete:  o.incomplete,
	}
	if len(o.skipped) > 0 {
		r.Skipped = o.skipped
	}

	sectionIdx := make(map[string]int)
	for _, res := range results {
		e := entryFor(res)

		i, ok := sectionIdx[res.Probe.Section]
		if !ok {
			i = len(r.Sections)
			sectionIdx[res.Probe.Section] = i
			r.Sections = append(r.Sections, Section{Name: res.Probe.Section})
		}
		r.Sections[i].Probes = append(r.Sections[i].Probes, e)

		r.Counts.Total++
		switch e.Severity {
		case classify.SeverityPass:
			r.Counts.Passed++
		case classify.SeverityWarning:
			r.Counts.Warnings++
		case classify.SeverityCritical:
			r.Counts.Critical++
		}
	}

	r.OverallPass = r.Counts.Critical == 0 && !r.Incomplete
	r.Status = summaryStatus(r)
	return r
}

func entryFor(res classify.Result) Entry {
	e := Entry{
		ID:          res.Probe.ID,
		Description: res.Probe.Description,
		Severity:    res.Severity,
		Status:      res.Outcome.Status,
		Reason:      res.Outcome.Reason,
		Optional:    res.Probe.Optional,
		Detail:      validUTF8(res.Outcome.Detail),
	}
	if res.Severity != classify.SeverityPass {
		e.RawOutput = validUTF8(res.Outcome.RawOutput)
		e.Remediation = res.Probe.Remediation
	}
	return e
}

// validUTF8 replaces invalid bytes so the JSON form round-trips.
func validUTF8(s string) string {
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

func summaryStatus(r Report) string {
	switch {
	case r.Incomplete:
		return StatusIncomplete
	case r.Counts.Critical > 0:
		return StatusFailed
	case r.Counts.Warnings > 0:
		return StatusReadyWithWarnings
	default:
		return StatusReady
	}
}

// ExitCode maps the report to the process exit code: 0 when ready, 1 on
// any critical failure, 2 when the run was cancelled.
func (r Report) ExitCode() int {
	switch {
	case r.Incomplete:
		return ExitIncomplete
	case r.Counts.Critical > 0:
		return ExitCritical
	default:
		return ExitPass
	}
}

// Entries returns all entries in report order.
func (r Report) Entries() []Entry {
	var out []Entry
	for _, s := range r.Sections {
		out = append(out, s.Probes...)
	}
	return out
}

// BySeverity returns the entries with the given severity in report order.
func (r Report) BySeverity(sev classify.Severity) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}
