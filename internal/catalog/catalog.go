// Package catalog declares the default probes for a Windows developer
// workstation: host OS, WSL 2, Docker Desktop with WSL integration, the
// Azure CLI, Node.js and the product CLIs.
package catalog

import (
	"time"

	"github.com/Aman-CERP/envcheck/internal/probe"
	"github.com/Aman-CERP/envcheck/internal/registry"
)

// Section names, in report order.
const (
	SectionHostOS         = "Host Operating System"
	SectionVirtualization = "Virtualization Layer"
	SectionContainers     = "Container Runtime"
	SectionCloud          = "Cloud CLI"
	SectionRuntime        = "Language Runtime"
	SectionProduct        = "Product CLI"
	SectionOptional       = "Optional Integrations"
)

// Minimum versions.
const (
	// WSL 2 needs Windows 10 version 2004 (build 19041).
	MinWindowsBuild = "10.0.19041"
	// Windows 11 starts at build 22000.
	RecommendedWindowsBuild = "10.0.22000"
	MinNodeVersion          = "18.0.0"
)

// windowsBuildPattern reads "Microsoft Windows [Version 10.0.22631.4037]".
const windowsBuildPattern = `Version (\d+\.\d+\.\d+)`

// Entry is one catalog declaration with the command it runs, for listing.
type Entry struct {
	Section string
	Probe   probe.Probe
	Command probe.CommandSpec
}

// Entries returns the catalog declarations in report order.
func Entries() []Entry {
	winver := probe.CommandSpec{Name: "cmd", Args: []string{"/c", "ver"}, Parse: probe.VersionParser(windowsBuildPattern)}

	osSupported := winver
	osSupported.MinVersion = MinWindowsBuild
	osRecommended := winver
	osRecommended.MinVersion = RecommendedWindowsBuild

	return []Entry{
		{
			Section: SectionHostOS,
			Command: osSupported,
			Probe: probe.Probe{
				ID:               "os.supported",
				Description:      "Windows 10 version 2004 or later",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "Run Windows Update, or upgrade to Windows 11: https://aka.ms/windows11",
			},
		},
		{
			Section: SectionHostOS,
			Command: osRecommended,
			Probe: probe.Probe{
				ID:               "os.recommended",
				Description:      "Windows 11",
				SeverityIfFailed: probe.SeverityWarning,
				Remediation:      "Upgrade to Windows 11 for the supported WSL experience",
			},
		},
		{
			Section: SectionVirtualization,
			Command: probe.CommandSpec{Name: "wsl", Args: []string{"--version"}, Parse: probe.VersionParser(`WSL[^:\n]*:\s*(\d+(?:\.\d+){1,3})`)},
			Probe: probe.Probe{
				ID:               "wsl.installed",
				Description:      "Windows Subsystem for Linux installed",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "wsl --install (from an elevated prompt), then reboot",
			},
		},
		{
			Section: SectionVirtualization,
			Command: probe.CommandSpec{Name: "wsl", Args: []string{"--status"}, Parse: probe.ContainsParser(`default version:\s*(\d)`), Want: "2"},
			Probe: probe.Probe{
				ID:               "wsl.default-version",
				Description:      "WSL 2 is the default version",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "wsl --set-default-version 2",
			},
		},
		{
			Section: SectionContainers,
			Command: probe.CommandSpec{Name: "docker", Args: []string{"--version"}, Parse: probe.VersionParser("")},
			Probe: probe.Probe{
				ID:               "docker.installed",
				Description:      "Docker CLI installed",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "winget install Docker.DockerDesktop",
			},
		},
		{
			Section: SectionContainers,
			Command: probe.CommandSpec{Name: "docker", Args: []string{"info", "--format", "{{.ServerVersion}}"}, Parse: probe.VersionParser("")},
			Probe: probe.Probe{
				ID:               "docker.daemon",
				Description:      "Docker daemon running",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "Start Docker Desktop and wait until the engine is running",
				Timeout:          20 * time.Second,
			},
		},
		{
			Section: SectionContainers,
			Command: probe.CommandSpec{Name: "wsl", Args: []string{"-e", "docker", "version", "--format", "{{.Server.Version}}"}, Parse: probe.VersionParser("")},
			Probe: probe.Probe{
				ID:               "docker.wsl-bridge",
				Description:      "Docker reachable from the default WSL distribution",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "Docker Desktop > Settings > Resources > WSL integration: enable your default distribution",
				Timeout:          30 * time.Second,
			},
		},
		{
			Section: SectionCloud,
			Command: probe.CommandSpec{Name: "az", Args: []string{"version", "--output", "json"}, Parse: probe.JSONFieldParser("azure-cli")},
			Probe: probe.Probe{
				ID:               "az.installed",
				Description:      "Azure CLI installed",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "winget install Microsoft.AzureCLI",
				Timeout:          30 * time.Second,
			},
		},
		{
			Section: SectionCloud,
			Command: probe.CommandSpec{Name: "az", Args: []string{"account", "show", "--output", "json"}, Parse: probe.JSONFieldParser("user.name")},
			Probe: probe.Probe{
				ID:               "az.authenticated",
				Description:      "Azure CLI signed in",
				SeverityIfFailed: probe.SeverityWarning,
				Remediation:      "az login",
				Timeout:          30 * time.Second,
			},
		},
		{
			Section: SectionRuntime,
			Command: probe.CommandSpec{Name: "node", Args: []string{"--version"}, Parse: probe.VersionParser(""), MinVersion: MinNodeVersion},
			Probe: probe.Probe{
				ID:               "node.installed",
				Description:      "Node.js 18 or later",
				SeverityIfFailed: probe.SeverityCritical,
				Remediation:      "winget install OpenJS.NodeJS.LTS",
			},
		},
		{
			Section: SectionRuntime,
			Command: probe.CommandSpec{Name: "npm", Args: []string{"--version"}, Parse: probe.VersionParser("")},
			Probe: probe.Probe{
				ID:               "npm.installed",
				Description:      "npm available",
				SeverityIfFailed: probe.SeverityWarning,
				Remediation:      "Reinstall Node.js LTS, which bundles npm: winget install OpenJS.NodeJS.LTS",
			},
		},
		{
			Section: SectionProduct,
			Command: probe.CommandSpec{Name: "si", Args: []string{"--version"}, Parse: probe.VersionParser("")},
			Probe: probe.Probe{
				ID:               "si.installed",
				Description:      "System Initiative CLI (si) installed",
				SeverityIfFailed: probe.SeverityWarning,
				Remediation:      "Install the si CLI from the platform setup guide and make sure it is on PATH",
			},
		},
		{
			Section: SectionOptional,
			Command: probe.CommandSpec{Name: "claude", Args: []string{"--version"}, Parse: probe.VersionParser("")},
			Probe: probe.Probe{
				ID:               "claude.installed",
				Description:      "Claude CLI installed",
				SeverityIfFailed: probe.SeverityWarning,
				Optional:         true,
				Remediation:      "npm install --global @anthropic-ai/claude-code",
			},
		},
	}
}

// Default returns a registry with every catalog probe.
func Default() *registry.Registry {
	reg := registry.New()
	for _, e := range Entries() {
		p := e.Probe
		p.Check = probe.CommandProbe(e.Command)
		p.Command = e.Command.String()
		reg.MustRegister(e.Section, p)
	}
	return reg
}
