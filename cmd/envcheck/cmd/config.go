package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envcheck/configs"
	"github.com/Aman-CERP/envcheck/internal/config"
	apperrors "github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage user configuration",
		Long: `Manage the user configuration file.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. User config (~/.config/envcheck/config.yaml)
  3. Project config (.envcheck.yaml)
  4. Environment variables (ENVCHECK_*, NO_COLOR)
  5. Command-line flags`,
		Example: `  # Create user config from template
  envcheck config init

  # Show effective configuration
  envcheck config show

  # Print user config file path
  envcheck config path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create user configuration file",
		Long: `Create the user configuration file from the built-in template at
~/.config/envcheck/config.yaml ($XDG_CONFIG_HOME/envcheck/config.yaml when
XDG_CONFIG_HOME is set). An existing file is only replaced with --force,
after a timestamped backup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration (a backup is kept)")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			data, err := cfg.YAML()
			if err != nil {
				return apperrors.InternalError("failed to render configuration", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout())
	configPath := config.GetUserConfigPath()

	if config.UserConfigExists() && !force {
		out.Warning("User configuration already exists")
		out.Statusf("", "Location: %s", configPath)
		out.Hint("Use --force to replace it with the template (a backup is kept)")
		return nil
	}

	backup, err := config.WriteUserConfig([]byte(configs.UserConfigTemplate), force)
	if err != nil {
		return apperrors.ConfigError("failed to write user configuration", err).
			WithDetail("file", configPath)
	}

	out.Success("Created user configuration")
	out.Statusf("", "Location: %s", configPath)
	if backup != "" {
		out.Statusf("", "Backup:   %s", backup)
	}
	out.Newline()
	out.Status("", "Next steps:")
	out.Status("", "  1. Edit the file to adjust timeouts or severities")
	out.Status("", "  2. Run 'envcheck config show' to verify")
	return nil
}
