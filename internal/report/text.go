package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/envcheck/internal/classify"
	"github.com/Aman-CERP/envcheck/internal/ui"
)

// TextOptions controls text rendering.
type TextOptions struct {
	Styles ui.Styles
	// Verbose adds the raw tool output of non-passing probes.
	Verbose bool
}

// PlainText returns options for uncolored output.
func PlainText() TextOptions {
	return TextOptions{Styles: ui.NoColorStyles()}
}

// indent aligns continuation lines under the probe id.
const indent = "         "

// maxRawLines caps raw output in verbose mode.
const maxRawLines = 10

// RenderText writes the human-readable report. Identical reports render
// to identical bytes; the generation time appears only in the header.
func RenderText(w io.Writer, r Report, opts TextOptions) error {
	s := opts.Styles
	tw := &textWriter{w: w}

	tw.line(s.Header.Render("envcheck preflight report"))
	tw.line(s.Label.Render("Generated: " + r.GeneratedAt.UTC().Format(time.RFC3339)))

	idWidth := 0
	for _, e := range r.Entries() {
		idWidth = max(idWidth, len(e.ID))
	}

	for _, sec := range r.Sections {
		tw.line("")
		tw.line(s.Section.Render(sec.Name))
		for _, e := range sec.Probes {
			badge, style := s.ForSeverity(string(e.Severity))
			text := fmt.Sprintf("%-*s  %s", idWidth, e.ID, e.Description)
			if e.Optional {
				text += " (optional)"
			}
			if e.Detail != "" {
				text += s.Dim.Render(" - " + e.Detail)
			}
			tw.line(fmt.Sprintf("  [%s] %s", style.Render(badge), text))

			if e.Severity == classify.SeverityPass {
				continue
			}
			if e.Remediation != "" {
				tw.line(indent + s.Remediation.Render("Fix: "+e.Remediation))
			}
			if opts.Verbose && e.RawOutput != "" {
				for _, l := range rawLines(e.RawOutput) {
					tw.line(indent + s.Dim.Render("| "+l))
				}
			}
		}
	}

	tw.line("")
	tw.line(fmt.Sprintf("Summary: %d check(s), %d passed, %d warning(s), %d critical",
		r.Counts.Total, r.Counts.Passed, r.Counts.Warnings, r.Counts.Critical))
	tw.line("Status: " + statusStyle(s, r).Render(strings.ToUpper(r.Status)))

	if r.Incomplete {
		tw.line("")
		tw.line(s.Warning.Render(fmt.Sprintf("Run interrupted: %d probe(s) not executed", len(r.Skipped))))
		for _, id := range r.Skipped {
			tw.line("  - " + id)
		}
	}

	writeIssues(tw, s.Critical, "critical failure(s)", r.BySeverity(classify.SeverityCritical))
	writeIssues(tw, s.Warning, "warning(s)", r.BySeverity(classify.SeverityWarning))

	return tw.err
}

func writeIssues(tw *textWriter, style lipgloss.Style, label string, entries []Entry) {
	if len(entries) == 0 {
		return
	}
	tw.line("")
	tw.line(style.Render(fmt.Sprintf("%d %s:", len(entries), label)))
	for _, e := range entries {
		line := "  - " + e.ID
		if e.Detail != "" {
			line += ": " + e.Detail
		}
		tw.line(line)
	}
}

func statusStyle(s ui.Styles, r Report) lipgloss.Style {
	switch r.Status {
	case StatusReady:
		return s.Pass
	case StatusReadyWithWarnings, StatusIncomplete:
		return s.Warning
	default:
		return s.Critical
	}
}

func rawLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	if len(lines) > maxRawLines {
		more := len(lines) - maxRawLines
		lines = append(lines[:maxRawLines], fmt.Sprintf("... (%d more line(s))", more))
	}
	return lines
}

// textWriter remembers the first write error.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, s)
}
