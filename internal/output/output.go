// Package output provides consistent CLI output for the non-report
// commands: headings, key/value fields, bullet items and status lines.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/Aman-CERP/envcheck/internal/ui"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out    io.Writer
	styles ui.Styles
}

// New creates an uncolored Writer.
func New(out io.Writer) *Writer {
	return NewStyled(out, ui.NoColorStyles())
}

// NewStyled creates a Writer that renders with styles.
func NewStyled(out io.Writer, styles ui.Styles) *Writer {
	return &Writer{out: out, styles: styles}
}

// Errors from writing are ignored throughout; this is console output.
func (w *Writer) println(s string) {
	_, _ = fmt.Fprintln(w.out, s)
}

// Heading prints a bold title.
func (w *Writer) Heading(title string) {
	w.println(w.styles.Header.Render(title))
}

// Section prints a blank line then a section title.
func (w *Writer) Section(title string) {
	w.Newline()
	w.println(w.styles.Section.Render(title))
}

// Field prints an indented "label: value" line.
func (w *Writer) Field(label, value string) {
	w.println("  " + w.styles.Label.Render(label+":") + " " + value)
}

// Item prints an indented bullet line.
func (w *Writer) Item(text string) {
	w.println("  - " + text)
}

// Itemf prints a formatted bullet line.
func (w *Writer) Itemf(format string, args ...any) {
	w.Item(fmt.Sprintf(format, args...))
}

// Status prints msg behind a short badge.
func (w *Writer) Status(badge, msg string) {
	if badge == "" {
		w.println("   " + msg)
		return
	}
	w.println(badge + " " + msg)
}

// Statusf prints a formatted status message.
func (w *Writer) Statusf(badge, format string, args ...any) {
	w.Status(badge, fmt.Sprintf(format, args...))
}

// Success prints a passing status line.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Pass.Render("[OK]"), msg)
}

// Successf prints a formatted passing status line.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning status line.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("[!!]"), msg)
}

// Warningf prints a formatted warning status line.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error status line.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Critical.Render("[XX]"), msg)
}

// Errorf prints a formatted error status line.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Hint prints a dimmed, indented hint.
func (w *Writer) Hint(msg string) {
	w.println("     " + w.styles.Remediation.Render(msg))
}

// Code prints content indented by two spaces between blank lines.
func (w *Writer) Code(content string) {
	w.Newline()
	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		w.println("  " + line)
	}
	w.Newline()
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	w.println("")
}
