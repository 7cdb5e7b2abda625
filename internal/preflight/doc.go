// Package preflight runs a registry of probes and produces a validation
// report.
//
// Probes run concurrently on a bounded worker pool. Each probe is bounded
// by its own timeout and the whole run by a total time limit. Results are
// placed by registry position, so the report order never depends on which
// probe finished first.
//
//	checker := preflight.New(preflight.WithConcurrency(4))
//	rep, err := checker.Run(ctx, catalog.Default())
//	if err != nil {
//	    // registry misconfigured, or the run was cancelled (rep is partial)
//	}
//	os.Exit(rep.ExitCode())
package preflight
