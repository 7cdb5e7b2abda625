package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// waitDelay bounds how long Wait blocks after the context kills the
// process, for children that inherited our pipes.
const waitDelay = 500 * time.Millisecond

// commandContext is replaced in tests to re-exec the test binary.
var commandContext = exec.CommandContext

// ExecResult captures one invocation of an external tool.
type ExecResult struct {
	Name     string
	Stdout   string
	Stderr   string
	ExitCode int
	// Err is non-nil when the tool could not start, exited non-zero or
	// was killed.
	Err error
}

// Output returns stdout, falling back to stderr when stdout is empty.
// Some tools print their version to stderr.
func (r ExecResult) Output() string {
	if r.Stdout != "" {
		return r.Stdout
	}
	return r.Stderr
}

// Combined returns stdout and stderr joined for diagnostics.
func (r ExecResult) Combined() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// Exec runs name with args, bounded by ctx. No shell is involved and
// nothing is read from stdin.
func Exec(ctx context.Context, name string, args ...string) ExecResult {
	cmd := commandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	res := ExecResult{
		Name:     name,
		Stdout:   normalizeOutput(stdout.Bytes()),
		Stderr:   normalizeOutput(stderr.Bytes()),
		ExitCode: -1,
		Err:      err,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	return res
}

// errorOutcome maps a failed invocation to an outcome. ctx is the probe
// context the command ran under.
func (r ExecResult) errorOutcome(ctx context.Context) Outcome {
	if ctx.Err() != nil {
		out := interrupted(ctx)
		out.RawOutput = r.Combined()
		return out
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(r.Err, exec.ErrNotFound), errors.Is(r.Err, fs.ErrNotExist):
		return Failed(ReasonToolMissing, fmt.Sprintf("%s not found on PATH", r.Name))
	case errors.As(r.Err, &exitErr):
		out := Failed(ReasonExitStatus, fmt.Sprintf("%s exited with status %d", r.Name, r.ExitCode))
		if msg := firstLine(r.Stderr); msg != "" {
			out.Detail += ": " + msg
		}
		out.RawOutput = r.Combined()
		return out
	default:
		return Failed(ReasonExecFailed, fmt.Sprintf("could not run %s: %v", r.Name, r.Err))
	}
}

// interrupted builds the outcome for a probe whose context ended first.
func interrupted(ctx context.Context) Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Indeterminate(ReasonToolTimeout, "timed out waiting for the tool to respond", "")
	}
	return Indeterminate(ReasonCancelled, "cancelled before the tool responded", "")
}

// normalizeOutput decodes UTF-16LE output (wsl.exe writes it) and
// OEM code page output (localized console tools), then trims line endings
// and surrounding whitespace. The result is always valid UTF-8.
func normalizeOutput(b []byte) string {
	if looksUTF16LE(b) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if decoded, err := dec.Bytes(b); err == nil {
			b = decoded
		}
	}
	if !utf8.Valid(b) {
		if decoded, err := charmap.CodePage850.NewDecoder().Bytes(b); err == nil {
			b = decoded
		}
	}
	s := strings.ToValidUTF8(string(b), string(utf8.RuneError))
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// looksUTF16LE reports a BOM, or ASCII text with every odd byte zero.
func looksUTF16LE(b []byte) bool {
	if len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE {
		return true
	}
	if len(b) < 4 || len(b)%2 != 0 {
		return false
	}
	n := min(len(b), 64)
	for i := 1; i < n; i += 2 {
		if b[i] != 0 {
			return false
		}
	}
	return true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
