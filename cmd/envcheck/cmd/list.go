package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/envcheck/internal/output"
	"github.com/Aman-CERP/envcheck/internal/probe"
	"github.com/Aman-CERP/envcheck/internal/registry"
	"github.com/Aman-CERP/envcheck/internal/ui"
)

// listedProbe is the JSON form of a declared probe.
type listedProbe struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Severity    probe.Severity `json:"severity"`
	Optional    bool           `json:"optional,omitempty"`
	Command     string         `json:"command,omitempty"`
	Timeout     string         `json:"timeout,omitempty"`
	Remediation string         `json:"remediation,omitempty"`
}

type listedSection struct {
	Name   string        `json:"name"`
	Probes []listedProbe `json:"probes"`
}

func newListCmd() *cobra.Command {
	var (
		section      string
		jsonOutput   bool
		registryFile string
		noDefaults   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the declared probes without running them",
		Example: `  envcheck list
  envcheck list --section "Cloud CLI" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("registry") {
				cfg.Registry.File = registryFile
			}
			if noDefaults {
				cfg.Registry.IncludeDefaults = false
			}

			reg, err := buildRegistry(cfg, section)
			if err != nil {
				return err
			}

			sections := listSections(reg)
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sections)
			}

			w := cmd.OutOrStdout()
			printListing(w, sections, ui.GetStyles(!ui.ColorEnabled(w, cfg.Output.NoColor)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "Only list probes in this section")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&registryFile, "registry", "", "YAML file with additional probes")
	cmd.Flags().BoolVar(&noDefaults, "no-defaults", false, "Skip the built-in catalog")

	return cmd
}

func listSections(reg *registry.Registry) []listedSection {
	sections := make([]listedSection, 0, len(reg.Sections()))
	index := make(map[string]int)
	for _, p := range reg.AllProbes() {
		i, ok := index[p.Section]
		if !ok {
			i = len(sections)
			index[p.Section] = i
			sections = append(sections, listedSection{Name: p.Section})
		}
		lp := listedProbe{
			ID:          p.ID,
			Description: p.Description,
			Severity:    p.SeverityIfFailed,
			Optional:    p.Optional,
			Command:     p.Command,
			Remediation: p.Remediation,
		}
		if p.Timeout > 0 {
			lp.Timeout = p.Timeout.String()
		}
		sections[i].Probes = append(sections[i].Probes, lp)
	}
	return sections
}

func printListing(w io.Writer, sections []listedSection, styles ui.Styles) {
	out := output.NewStyled(w, styles)

	total := 0
	for _, s := range sections {
		total += len(s.Probes)
	}
	out.Heading(fmt.Sprintf("envcheck probes (%d)", total))

	for _, s := range sections {
		out.Section(s.Name)
		for _, p := range s.Probes {
			label := fmt.Sprintf("%s [%s]", p.ID, p.Severity)
			if p.Optional {
				label += " (optional)"
			}
			out.Itemf("%s  %s", label, p.Description)
			if p.Command != "" {
				out.Field("    runs", p.Command)
			}
			if p.Remediation != "" {
				out.Field("    fix", p.Remediation)
			}
		}
	}
}
