package preflight

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/envcheck/internal/classify"
	apperrors "github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/probe"
	"github.com/Aman-CERP/envcheck/internal/registry"
	"github.com/Aman-CERP/envcheck/internal/report"
	"github.com/Aman-CERP/envcheck/internal/ui"
)

// Defaults for a run.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultRunTimeout     = 2 * time.Minute
	DefaultMaxConcurrency = 8
)

// Checker runs probes and aggregates their results.
type Checker struct {
	concurrency int
	timeout     time.Duration
	runTimeout  time.Duration
	logger      *slog.Logger
	observer    ui.Observer
	now         func() time.Time
}

// Option configures a Checker.
type Option func(*Checker)

// WithConcurrency caps the number of probes running at once. Zero or
// less selects min(8, probe count).
func WithConcurrency(n int) Option {
	return func(c *Checker) {
		c.concurrency = n
	}
}

// WithTimeout sets the per-probe timeout for probes that do not declare
// their own.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRunTimeout bounds the whole run. Zero disables the bound.
func WithRunTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.runTimeout = d
	}
}

// WithLogger sets the logger for run diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver receives live probe events, e.g. a progress renderer.
func WithObserver(o ui.Observer) Option {
	return func(c *Checker) {
		c.observer = o
	}
}

// WithClock sets the clock used to stamp the report.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		timeout:    DefaultTimeout,
		runTimeout: DefaultRunTimeout,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes every probe in reg and returns the report.
//
// Probe failures never surface as errors. Run returns an error only when
// reg is unusable, or when ctx is cancelled; in the latter case the
// returned report is partial and marked incomplete.
func (c *Checker) Run(ctx context.Context, reg *registry.Registry) (report.Report, error) {
	if reg == nil {
		return report.Report{}, apperrors.RegistryError("no probe registry given", nil)
	}

	probes := reg.AllProbes()
	workers := c.workers(len(probes))
	start := time.Now()

	c.logger.Info("preflight run started",
		slog.Int("probes", len(probes)),
		slog.Int("workers", workers),
		slog.Duration("probe_timeout", c.timeout),
		slog.Duration("run_timeout", c.runTimeout))

	runCtx := ctx
	if c.runTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.runTimeout)
		defer cancel()
	}

	results := make([]classify.Result, len(probes))
	executed := make([]bool, len(probes))

	// A failing probe is not a Go error, so the group never short-circuits.
	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, p := range probes {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = c.runProbe(runCtx, p)
			executed[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var (
		done        []classify.Result
		skipped     []string
		interrupted bool
	)
	for i, p := range probes {
		if !executed[i] {
			skipped = append(skipped, p.ID)
			continue
		}
		done = append(done, results[i])
		if results[i].Outcome.Reason == probe.ReasonCancelled {
			interrupted = true
		}
	}

	// A cancel that lands after the last probe finished changes nothing.
	var opts []report.Option
	cancelled := ctx.Err() != nil && (interrupted || len(skipped) > 0)
	if cancelled {
		opts = append(opts, report.WithIncomplete(skipped))
	}
	rep := report.Aggregate(done, c.now(), opts...)

	c.logger.Info("preflight run finished",
		slog.String("status", rep.Status),
		slog.Int("passed", rep.Counts.Passed),
		slog.Int("warnings", rep.Counts.Warnings),
		slog.Int("critical", rep.Counts.Critical),
		slog.Int("skipped", len(skipped)),
		slog.Duration("duration", time.Since(start)))

	if cancelled {
		return rep, apperrors.CancelledError(ctx.Err())
	}
	return rep, nil
}

// runProbe executes one probe under its own deadline and classifies it.
func (c *Checker) runProbe(runCtx context.Context, p probe.Probe) classify.Result {
	timeout := c.timeout
	if p.Timeout > 0 {
		timeout = p.Timeout
	}

	c.notifyStarted(p)
	start := time.Now()

	var out probe.Outcome
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		out = probe.Indeterminate(probe.ReasonToolTimeout, "run time limit reached before the probe started", "")
	} else {
		probeCtx, cancel := context.WithTimeout(runCtx, timeout)
		out = probe.Run(probeCtx, p)
		cancel()
	}

	res := classify.Classify(p, out)
	elapsed := time.Since(start)

	attrs := []any{
		slog.String("probe", p.ID),
		slog.String("status", out.Status.String()),
		slog.String("severity", res.Severity.String()),
		slog.String("reason", string(out.Reason)),
		slog.Duration("duration", elapsed),
	}
	if code := diagnosticCode(out.Reason); code != "" {
		fields := apperrors.FormatForLog(apperrors.ToolError(code, p.ID, out.Detail))
		for _, k := range sortedKeys(fields) {
			attrs = append(attrs, slog.Any(k, fields[k]))
		}
	}
	c.logger.Debug("probe finished", attrs...)

	c.notifyFinished(res, elapsed)
	return res
}

// diagnosticCode maps a tool-level reason to its error code, or "" for
// reasons that are plain answers from the tool.
func diagnosticCode(r probe.Reason) string {
	switch r {
	case probe.ReasonToolMissing:
		return apperrors.ErrCodeToolMissing
	case probe.ReasonToolTimeout:
		return apperrors.ErrCodeToolTimeout
	case probe.ReasonOutputUnparsable:
		return apperrors.ErrCodeOutputUnparsable
	default:
		return ""
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Checker) workers(n int) int {
	limit := c.concurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	return max(1, min(limit, n))
}

func (c *Checker) notifyStarted(p probe.Probe) {
	if c.observer == nil {
		return
	}
	c.observer.ProbeStarted(ui.ProbeEvent{
		ID:          p.ID,
		Section:     p.Section,
		Description: p.Description,
	})
}

func (c *Checker) notifyFinished(res classify.Result, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ProbeFinished(ui.ProbeEvent{
		ID:          res.Probe.ID,
		Section:     res.Probe.Section,
		Description: res.Probe.Description,
		Severity:    res.Severity.String(),
		Detail:      res.Outcome.Detail,
		Elapsed:     elapsed,
	})
}
