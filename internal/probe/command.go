package probe

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxDetailLen keeps report lines readable when a tool prints a banner.
const maxDetailLen = 120

// CommandSpec describes a probe that invokes an external tool.
type CommandSpec struct {
	Name string
	Args []string
	// Parse extracts the detail from output. Nil means the exit status
	// alone decides.
	Parse Parser
	// MinVersion, when set, is compared with the parsed detail.
	MinVersion string
	// Want, when set, must equal the parsed detail (case-insensitive).
	Want string
}

// String renders the command line for listings and logs.
func (s CommandSpec) String() string {
	return strings.TrimSpace(s.Name + " " + strings.Join(s.Args, " "))
}

// CommandProbe returns a check that runs spec and judges its output.
func CommandProbe(spec CommandSpec) CheckFunc {
	return func(ctx context.Context) Outcome {
		res := Exec(ctx, spec.Name, spec.Args...)
		if res.Err != nil {
			return res.errorOutcome(ctx)
		}
		if spec.Parse == nil {
			return Passed(summarize(res.Output(), spec.Name))
		}

		pr := spec.Parse(res.Output())
		if !pr.IsOk() {
			return Indeterminate(ReasonOutputUnparsable,
				fmt.Sprintf("could not read %s output", spec.Name), res.Combined())
		}

		if spec.Want != "" && !strings.EqualFold(pr.Detail, spec.Want) {
			return Failed(ReasonUnexpectedValue,
				fmt.Sprintf("expected %s, found %s", spec.Want, pr.Detail))
		}

		if spec.MinVersion != "" {
			cmp, err := CompareVersions(pr.Detail, spec.MinVersion)
			if err != nil {
				return Indeterminate(ReasonOutputUnparsable,
					fmt.Sprintf("%s reported an unrecognised version %q", spec.Name, pr.Detail), res.Combined())
			}
			if cmp < 0 {
				return Failed(ReasonVersionTooOld,
					fmt.Sprintf("%s is older than the required %s", pr.Detail, spec.MinVersion))
			}
		}

		return Passed(pr.Detail)
	}
}

// VersionAtLeast returns a check that the tool reports a version of at
// least minVersion, read with DefaultVersionPattern.
func VersionAtLeast(minVersion string, name string, args ...string) CheckFunc {
	return CommandProbe(CommandSpec{
		Name:       name,
		Args:       args,
		Parse:      VersionParser(""),
		MinVersion: minVersion,
	})
}

// ExitZero returns a check that passes when the tool exits with status 0.
func ExitZero(name string, args ...string) CheckFunc {
	return CommandProbe(CommandSpec{Name: name, Args: args})
}

func summarize(output, name string) string {
	line := firstLine(output)
	if line == "" {
		return name + " exited with status 0"
	}
	if utf8.RuneCountInString(line) > maxDetailLen {
		line = string([]rune(line)[:maxDetailLen]) + "..."
	}
	return line
}
