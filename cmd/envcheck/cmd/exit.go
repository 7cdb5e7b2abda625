package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	apperrors "github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/report"
)

// Process exit codes.
const (
	ExitOK       = report.ExitPass
	ExitCritical = report.ExitCritical
	// ExitError covers usage errors, configuration and registry errors,
	// cancelled runs and internal failures.
	ExitError = report.ExitIncomplete
)

// reportedError carries the exit code of an outcome the command has
// already printed, such as a report with critical failures.
type reportedError struct {
	code int
	msg  string
}

func (e *reportedError) Error() string {
	return e.msg
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var re *reportedError
	if errors.As(err, &re) {
		return re.code
	}
	return ExitError
}

// reportError prints err to w unless the command already reported it.
// Errors that did not come from envcheck itself are cobra usage errors.
func reportError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var re *reportedError
	if errors.As(err, &re) {
		return
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		err = apperrors.ValidationError(err.Error(), err).
			WithSuggestion("Run 'envcheck --help' for usage")
	}

	attrs := make([]any, 0, 8)
	for k, v := range apperrors.FormatForLog(err) {
		attrs = append(attrs, slog.Any(k, v))
	}
	slog.Debug("command failed", attrs...)

	_, _ = fmt.Fprint(w, apperrors.FormatForCLI(err))
}
