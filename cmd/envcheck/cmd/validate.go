package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envcheck/internal/catalog"
	"github.com/Aman-CERP/envcheck/internal/config"
	apperrors "github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/preflight"
	"github.com/Aman-CERP/envcheck/internal/registry"
	"github.com/Aman-CERP/envcheck/internal/report"
	"github.com/Aman-CERP/envcheck/internal/ui"
)

type validateOptions struct {
	section     string
	jsonOutput  bool
	verbose     bool
	timeout     time.Duration
	concurrency int
	registry    string
	noDefaults  bool
	noColor     bool
	plain       bool
	quiet       bool
}

func newValidateCmd() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the workstation and print a readiness report",
		Long: `Run every declared probe and print a readiness report.

The report goes to stdout; live progress goes to stderr. Probes run in
parallel, each under its own timeout, and a probe that hangs or crashes
becomes an indeterminate warning instead of stopping the run.

Exit codes:
  0  no critical failures (warnings allowed)
  1  at least one critical failure
  2  usage or configuration error, bad registry, or interrupted run`,
		Example: `  # Check the whole workstation
  envcheck validate

  # Only the container checks, as JSON
  envcheck validate --section "Container Runtime" --json

  # Team probes on top of the built-in catalog
  envcheck validate --registry team-probes.yaml

  # Show raw tool output for failures
  envcheck validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.section, "section", "s", "", "Only run probes in this section")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Include raw tool output for failing probes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Per-probe timeout (default from config, 10s)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Probes run at once (default from config, 8)")
	cmd.Flags().StringVar(&opts.registry, "registry", "", "YAML file with additional probes")
	cmd.Flags().BoolVar(&opts.noDefaults, "no-defaults", false, "Skip the built-in catalog (use with --registry)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Plain progress lines instead of the live display")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "No progress output on stderr")

	return cmd
}

func runValidate(cmd *cobra.Command, opts validateOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdout := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		return failBeforeRun(stdout, opts.jsonOutput, err)
	}
	if err := applyValidateFlags(cmd, cfg, opts); err != nil {
		return failBeforeRun(stdout, opts.jsonOutput, err)
	}

	// A bad registry stops here, before any probe runs.
	reg, err := buildRegistry(cfg, opts.section)
	if err != nil {
		return failBeforeRun(stdout, opts.jsonOutput, err)
	}

	renderer := ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr(),
		ui.WithForcePlain(opts.plain),
		ui.WithNoColor(cfg.Output.NoColor),
		ui.WithQuiet(opts.quiet),
	))
	if err := renderer.Start(ctx, reg.Len()); err != nil {
		return apperrors.InternalError("failed to start progress display", err)
	}

	checker := preflight.New(
		preflight.WithConcurrency(cfg.Probes.Concurrency),
		preflight.WithTimeout(cfg.ProbeTimeout()),
		preflight.WithRunTimeout(cfg.RunTimeout()),
		preflight.WithLogger(commandLogger(cmd, cfg)),
		preflight.WithObserver(renderer),
	)

	start := time.Now()
	rep, runErr := checker.Run(ctx, reg)
	renderer.Complete(runSummary(rep, time.Since(start)))
	_ = renderer.Stop()

	if err := writeReport(stdout, rep, opts.jsonOutput, cfg.Output.NoColor, cfg.Output.Verbose); err != nil {
		return apperrors.InternalError("failed to write report", err)
	}

	if runErr != nil {
		return runErr
	}
	if code := rep.ExitCode(); code != ExitOK {
		return &reportedError{
			code: code,
			msg:  fmt.Sprintf("%d critical failure(s)", rep.Counts.Critical),
		}
	}
	return nil
}

// loadConfig loads the configuration for the working directory.
func loadConfig() (*config.Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return config.Load(dir)
}

// applyValidateFlags lets explicitly set flags override the config.
func applyValidateFlags(cmd *cobra.Command, cfg *config.Config, opts validateOptions) error {
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		if opts.timeout <= 0 {
			return apperrors.ValidationError(fmt.Sprintf("--timeout must be positive, got %s", opts.timeout), nil)
		}
		cfg.Probes.Timeout = opts.timeout.String()
	}
	if flags.Changed("concurrency") {
		if opts.concurrency < 1 {
			return apperrors.ValidationError(fmt.Sprintf("--concurrency must be at least 1, got %d", opts.concurrency), nil)
		}
		cfg.Probes.Concurrency = opts.concurrency
	}
	if flags.Changed("registry") {
		cfg.Registry.File = opts.registry
	}
	if opts.noDefaults {
		cfg.Registry.IncludeDefaults = false
	}
	if opts.noColor {
		cfg.Output.NoColor = true
	}
	if opts.verbose {
		cfg.Output.Verbose = true
	}
	return nil
}

// buildRegistry assembles the probes to run: the built-in catalog and/or
// the registry file, with the configured policy and section filter.
func buildRegistry(cfg *config.Config, section string) (*registry.Registry, error) {
	if !cfg.Registry.IncludeDefaults && cfg.Registry.File == "" {
		return nil, apperrors.ValidationError("no probes to run", nil).
			WithSuggestion("Pass --registry FILE, or drop --no-defaults")
	}

	reg := registry.New()
	if cfg.Registry.IncludeDefaults {
		reg = catalog.Default()
	}

	if cfg.Registry.File != "" {
		fileReg, err := registry.LoadFile(cfg.Registry.File)
		if err != nil {
			return nil, err
		}
		if reg, err = reg.Merge(fileReg); err != nil {
			return nil, err
		}
	}

	policy := cfg.Policy()
	if !cfg.Registry.IncludeDefaults {
		// One user config serves runs with and without the catalog.
		policy = policy.Without(catalogOnly(reg)...)
	}
	if !policy.IsZero() {
		var err error
		if reg, err = reg.ApplyPolicy(policy); err != nil {
			return nil, withPolicyHint(err)
		}
	}

	if section != "" {
		return reg.Filter(section)
	}
	return reg, nil
}

// catalogOnly returns the catalog ids missing from reg.
func catalogOnly(reg *registry.Registry) []string {
	var ids []string
	for _, e := range catalog.Entries() {
		if _, ok := reg.Lookup(e.Probe.ID); !ok {
			ids = append(ids, e.Probe.ID)
		}
	}
	return ids
}

// withPolicyHint points a policy error at the config keys that caused it.
func withPolicyHint(err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Suggestion == "" {
		appErr.WithSuggestion(fmt.Sprintf(
			"Check probes.disabled and probes.severity in %s or .envcheck.yaml (see 'envcheck config show')",
			config.GetUserConfigPath()))
	}
	return err
}

// failBeforeRun reports an error that prevented the run. With --json the
// error is also written to stdout so scripts always get a JSON document.
func failBeforeRun(stdout io.Writer, jsonOutput bool, err error) error {
	if jsonOutput {
		if data, jerr := apperrors.FormatJSON(err); jerr == nil {
			_, _ = fmt.Fprintf(stdout, "{\"error\": %s}\n", data)
		}
	}
	return err
}

func writeReport(w io.Writer, rep report.Report, jsonOutput, noColor, verbose bool) error {
	if jsonOutput {
		return report.RenderJSON(w, rep)
	}
	return report.RenderText(w, rep, report.TextOptions{
		Styles:  ui.GetStyles(!ui.ColorEnabled(w, noColor)),
		Verbose: verbose,
	})
}

func runSummary(rep report.Report, elapsed time.Duration) ui.RunSummary {
	return ui.RunSummary{
		Total:     rep.Counts.Total + len(rep.Skipped),
		Passed:    rep.Counts.Passed,
		Warnings:  rep.Counts.Warnings,
		Critical:  rep.Counts.Critical,
		Skipped:   len(rep.Skipped),
		Duration:  elapsed,
		Cancelled: rep.Incomplete,
	}
}
