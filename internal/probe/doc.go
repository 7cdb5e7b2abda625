// Package probe defines the unit of validation: a named, side-effect-free
// check of one workstation dependency.
//
// A probe's Check never returns an error. Every expected failure mode is
// folded into an Outcome:
//
//   - the tool is not installed: Fail, reason tool_missing
//   - the tool exits non-zero: Fail, reason exit_status
//   - the tool hangs past its timeout: Indeterminate, reason tool_timeout
//   - the tool prints something we cannot read: Indeterminate,
//     reason output_unparsable, with the raw output kept
//
// Probes that shell out are built from CommandSpec with the CommandProbe,
// VersionAtLeast and ExitZero constructors. Run executes any probe with
// panic recovery and a hard bound on its context.
package probe
