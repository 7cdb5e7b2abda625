package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// PlainRenderer outputs one line per finished probe (for CI/pipes).
type PlainRenderer struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	quiet  bool
	total  int
	done   int
}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer(cfg Config) *PlainRenderer {
	return &PlainRenderer{
		out:    cfg.Output,
		styles: GetStyles(!ColorEnabled(cfg.Output, cfg.NoColor)),
		quiet:  cfg.Quiet,
	}
}

// Start implements Renderer.
func (r *PlainRenderer) Start(_ context.Context, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	if !r.quiet {
		_, _ = fmt.Fprintf(r.out, "Running %d probe(s)...\n", total)
	}
	return nil
}

// ProbeStarted implements Observer. Plain mode only reports completions.
func (r *PlainRenderer) ProbeStarted(ProbeEvent) {}

// ProbeFinished implements Observer.
func (r *PlainRenderer) ProbeFinished(ev ProbeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.done++
	if r.quiet {
		return
	}
	badge, style := r.styles.ForSeverity(ev.Severity)
	_, _ = fmt.Fprintf(r.out, "[%d/%d] %s %s (%s)\n",
		r.done, r.total, style.Render(badge), ev.ID, ev.Elapsed.Round(time.Millisecond))
}

// Complete implements Renderer.
func (r *PlainRenderer) Complete(s RunSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.quiet {
		return
	}
	if s.Cancelled {
		_, _ = fmt.Fprintf(r.out, "Cancelled after %s: %d of %d probe(s) not run\n",
			s.Duration.Round(100*time.Millisecond), s.Skipped, s.Total)
		return
	}
	_, _ = fmt.Fprintf(r.out, "Completed %d probe(s) in %s\n", s.Total, s.Duration.Round(100*time.Millisecond))
}

// Stop implements Renderer.
func (r *PlainRenderer) Stop() error {
	return nil
}

var _ Renderer = (*PlainRenderer)(nil)
