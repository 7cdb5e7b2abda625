// Package cmd provides the CLI commands for envcheck.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envcheck/internal/config"
	apperrors "github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/logging"
	"github.com/Aman-CERP/envcheck/pkg/version"
)

// Debug logging flag
var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the envcheck CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "envcheck",
		Short: "Preflight validator for Windows developer workstations",
		Long: `envcheck checks that a Windows workstation has what the team's
development setup needs: a supported Windows build, WSL 2, Docker Desktop
with WSL integration, the Azure CLI, Node.js and the product CLIs.

It never installs or changes anything. Every failed check comes with the
command that fixes it.

Exit codes: 0 ready, 1 critical failure, 2 usage error or interrupted run.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("envcheck version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.envcheck/logs/")
	cmd.PersistentPreRunE = startLogging

	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	reportError(root.ErrOrStderr(), err)
	stopLogging()
	return ExitCode(err)
}

// startLogging installs the file logger when --debug is set.
func startLogging(_ *cobra.Command, _ []string) error {
	if !debugMode || loggingCleanup != nil {
		return nil
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig())
	if err != nil {
		return apperrors.InternalError("failed to set up debug logging", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	slog.Info("debug logging enabled",
		slog.String("log_file", logging.DefaultLogPath()),
		slog.String("version", version.Version))
	return nil
}

func stopLogging() {
	if loggingCleanup == nil {
		return
	}
	slog.Info("debug logging stopped")
	loggingCleanup()
	loggingCleanup = nil
}

// commandLogger returns the logger for a command run: the debug file
// logger with --debug, otherwise a stderr logger at the configured level.
func commandLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	if debugMode {
		return slog.Default()
	}
	return logging.Stderr(cmd.ErrOrStderr(), cfg.Logging.Level)
}
