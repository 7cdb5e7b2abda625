// Package ui provides terminal styling and live progress display for a
// validation run.
//
// Progress always goes to stderr so that stdout carries only the report.
package ui

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ProbeEvent describes a probe starting or finishing.
type ProbeEvent struct {
	ID          string
	Section     string
	Description string
	// Severity is empty on start and "pass", "warning" or "critical"
	// on finish.
	Severity string
	Detail   string
	Elapsed  time.Duration
}

// RunSummary is sent once when a run ends.
type RunSummary struct {
	Total     int
	Passed    int
	Warnings  int
	Critical  int
	Skipped   int
	Duration  time.Duration
	Cancelled bool
}

// Observer receives probe lifecycle events. Implementations must be safe
// for concurrent use: probes finish on worker goroutines.
type Observer interface {
	ProbeStarted(event ProbeEvent)
	ProbeFinished(event ProbeEvent)
}

// Renderer defines the interface for progress display.
type Renderer interface {
	Observer

	// Start initializes the renderer for a run of total probes.
	Start(ctx context.Context, total int) error

	// Complete marks rendering as complete with summary.
	Complete(summary RunSummary)

	// Stop stops the renderer and cleans up.
	Stop() error
}

// Config configures the UI renderer.
type Config struct {
	Output     io.Writer
	ForcePlain bool
	NoColor    bool
	// Quiet suppresses all progress output.
	Quiet bool
}

// ConfigOption is a function that modifies Config.
type ConfigOption func(*Config)

// WithForcePlain forces plain text output.
func WithForcePlain(force bool) ConfigOption {
	return func(c *Config) {
		c.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) ConfigOption {
	return func(c *Config) {
		c.NoColor = noColor
	}
}

// WithQuiet suppresses per-probe progress lines.
func WithQuiet(quiet bool) ConfigOption {
	return func(c *Config) {
		c.Quiet = quiet
	}
}

// NewConfig creates a new Config with the given output and options.
func NewConfig(output io.Writer, opts ...ConfigOption) Config {
	cfg := Config{Output: output}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewRenderer creates an appropriate renderer based on config and
// environment: a TUI for interactive terminals, plain text for CI, pipes
// or when --plain or --quiet is given.
func NewRenderer(cfg Config) Renderer {
	if cfg.Quiet || cfg.ForcePlain || !IsTTY(cfg.Output) || DetectCI() {
		return NewPlainRenderer(cfg)
	}

	tui, err := NewTUIRenderer(cfg)
	if err != nil {
		return NewPlainRenderer(cfg)
	}
	return tui
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// TerminalWidth returns the width of w, or fallback when w is not a
// terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// ColorEnabled reports whether styled output should be written to w.
func ColorEnabled(w io.Writer, noColor bool) bool {
	return !noColor && !DetectNoColor() && IsTTY(w)
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TF_BUILD"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
