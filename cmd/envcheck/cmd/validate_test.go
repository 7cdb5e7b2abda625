package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envcheck/internal/classify"
	"github.com/Aman-CERP/envcheck/internal/config"
	apperrors "github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/probe"
	"github.com/Aman-CERP/envcheck/internal/registry"
	"github.com/Aman-CERP/envcheck/internal/report"
)

func TestValidate_AllPassExitsZero(t *testing.T) {
	// Given: a registry whose tools all succeed
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name: "Tools",
		Probes: []registry.FileProbe{
			fakeProbe("tool.one", tool("ok"), "critical"),
			fakeProbe("tool.two", tool("ok"), "warning"),
		},
	})

	// When: validating with only that registry
	res := run(t, "validate", "--no-defaults", "--registry", reg, "--plain")

	// Then: the report is ready and the exit code is 0
	assert.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "envcheck preflight report")
	assert.Contains(t, res.stdout, "Summary: 2 check(s), 2 passed, 0 warning(s), 0 critical")
	assert.Contains(t, res.stdout, "Status: READY")

	// And: progress went to stderr, not stdout
	assert.Contains(t, res.stderr, "Running 2 probe(s)...")
	assert.Contains(t, res.stderr, "[2/2]")
	assert.NotContains(t, res.stdout, "Running 2 probe(s)")
}

func TestValidate_CriticalFailureExitsOne(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name: "Containers",
		Probes: []registry.FileProbe{
			fakeProbe("daemon.running", tool("fail"), "critical"),
			fakeProbe("cli.installed", tool("ok"), "critical"),
		},
	})

	res := run(t, "validate", "--no-defaults", "--registry", reg)

	assert.Equal(t, ExitCritical, res.code)
	assert.Contains(t, res.stdout, "[FAIL] daemon.running")
	assert.Contains(t, res.stdout, "Fix: fix daemon.running")
	assert.Contains(t, res.stdout, "Status: FAILED")
	assert.Contains(t, res.stdout, "1 critical failure(s):")
	assert.NotContains(t, res.stderr, "Error:", "a failed report is not an error message")
}

func TestValidate_MissingWarningToolExitsZero(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name: "Product CLI",
		Probes: []registry.FileProbe{
			fakeProbe("si.installed", missingTool, "warning"),
			fakeProbe("node.installed", tool("ok"), "critical"),
		},
	})

	res := run(t, "validate", "--no-defaults", "--registry", reg)

	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "[WARN] si.installed")
	assert.Contains(t, res.stdout, "not found on PATH")
	assert.Contains(t, res.stdout, "Status: READY_WITH_WARNINGS")
}

func TestValidate_JSONReport(t *testing.T) {
	// Given: one passing and one missing critical tool
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name: "Cloud CLI",
		Probes: []registry.FileProbe{
			fakeProbe("az.installed", missingTool, "critical"),
			fakeProbe("az.extension", tool("ok"), "warning"),
		},
	})

	// When: asking for JSON
	res := run(t, "validate", "--no-defaults", "--registry", reg, "--json")

	// Then: stdout is exactly one report document
	assert.Equal(t, ExitCritical, res.code)
	rep, err := report.ParseJSON(strings.NewReader(res.stdout))
	require.NoError(t, err)

	assert.False(t, rep.OverallPass)
	assert.Equal(t, report.StatusFailed, rep.Status)
	assert.Equal(t, report.Counts{Total: 2, Passed: 1, Critical: 1}, rep.Counts)
	require.Len(t, rep.Sections, 1)
	assert.Equal(t, "Cloud CLI", rep.Sections[0].Name)

	missing := rep.Sections[0].Probes[0]
	assert.Equal(t, "az.installed", missing.ID)
	assert.Equal(t, classify.SeverityCritical, missing.Severity)
	assert.Equal(t, probe.StatusFail, missing.Status)
	assert.Equal(t, probe.ReasonToolMissing, missing.Reason)
	assert.Equal(t, "fix az.installed", missing.Remediation)
}

func TestValidate_DuplicateIDExitsTwoWithoutRunning(t *testing.T) {
	// Given: a registry declaring the same id twice, whose probes leave markers
	isolateEnv(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	second := filepath.Join(dir, "second")
	reg := writeRegistry(t, registry.FileSection{
		Name: "Tools",
		Probes: []registry.FileProbe{
			fakeProbe("tool.same", tool("touch", first), "critical"),
			fakeProbe("tool.same", tool("touch", second), "critical"),
		},
	})

	// When: validating
	res := run(t, "validate", "--no-defaults", "--registry", reg)

	// Then: the run is refused with exit 2 and no probe executed
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "duplicate probe id")
	assert.Contains(t, res.stderr, apperrors.ErrCodeRegistryMisconfigured)
	assert.Empty(t, res.stdout)
	assert.NoFileExists(t, first)
	assert.NoFileExists(t, second)
}

func TestValidate_RegistryErrorAsJSON(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name: "Tools",
		Probes: []registry.FileProbe{
			fakeProbe("tool.same", tool("ok"), "critical"),
			fakeProbe("tool.same", tool("ok"), "critical"),
		},
	})

	res := run(t, "validate", "--no-defaults", "--registry", reg, "--json")

	assert.Equal(t, ExitError, res.code)
	var doc struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	assert.Equal(t, apperrors.ErrCodeRegistryMisconfigured, doc.Error.Code)
}

func TestValidate_SectionFilter(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t,
		registry.FileSection{
			Name:   "Language Runtime",
			Probes: []registry.FileProbe{fakeProbe("node.installed", tool("ok"), "critical")},
		},
		registry.FileSection{
			Name:   "Container Runtime",
			Probes: []registry.FileProbe{fakeProbe("docker.daemon", tool("fail"), "critical")},
		},
	)

	res := run(t, "validate", "--no-defaults", "--registry", reg, "--section", "language runtime")

	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "node.installed")
	assert.NotContains(t, res.stdout, "docker.daemon")
}

func TestValidate_UnknownSectionExitsTwo(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name:   "Tools",
		Probes: []registry.FileProbe{fakeProbe("tool.one", tool("ok"), "critical")},
	})

	res := run(t, "validate", "--no-defaults", "--registry", reg, "--section", "Nope")

	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, `unknown section "Nope"`)
	assert.Contains(t, res.stderr, `Hint: Use one of: "Tools"`)
	assert.Empty(t, res.stdout)
}

func TestValidate_NoProbesExitsTwo(t *testing.T) {
	isolateEnv(t)

	res := run(t, "validate", "--no-defaults")

	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "no probes to run")
}

func TestValidate_MissingRegistryFileExitsTwo(t *testing.T) {
	isolateEnv(t)

	res := run(t, "validate", "--no-defaults", "--registry", filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, apperrors.ErrCodeConfigNotFound)
}

func TestValidate_BadFlagsExitTwo(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero concurrency", []string{"--concurrency", "0"}, "--concurrency must be at least 1"},
		{"negative timeout", []string{"--timeout", "-1s"}, "--timeout must be positive"},
		{"unknown flag", []string{"--frobnicate"}, "unknown flag"},
		{"extra argument", []string{"now"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, append([]string{"validate"}, tt.args...)...)

			assert.Equal(t, ExitError, res.code)
			assert.Contains(t, res.stderr, tt.want)
		})
	}
}

func TestValidate_ProjectConfigPolicy(t *testing.T) {
	// Given: a project config that disables one probe and downgrades another
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name: "Tools",
		Probes: []registry.FileProbe{
			fakeProbe("tool.broken", tool("fail"), "critical"),
			fakeProbe("tool.flaky", tool("fail"), "critical"),
			fakeProbe("tool.fine", tool("ok"), "critical"),
		},
	})
	writeProjectConfig(t, `
registry:
  file: `+reg+`
  include_defaults: false
probes:
  disabled: [tool.broken]
  severity:
    tool.flaky: warning
`)

	// When: validating with no flags
	res := run(t, "validate")

	// Then: only the downgraded failure remains, as a warning
	assert.Equal(t, ExitOK, res.code, res.stderr)
	assert.NotContains(t, res.stdout, "tool.broken")
	assert.Contains(t, res.stdout, "[WARN] tool.flaky")
	assert.Contains(t, res.stdout, "Summary: 2 check(s), 1 passed, 1 warning(s), 0 critical")
}

func TestValidate_PolicyForUnknownProbeExitsTwo(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name:   "Tools",
		Probes: []registry.FileProbe{fakeProbe("tool.fine", tool("ok"), "critical")},
	})
	writeProjectConfig(t, "probes:\n  disabled: [tool.typo]\n")

	res := run(t, "validate", "--no-defaults", "--registry", reg)

	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "tool.typo")
	assert.Contains(t, res.stderr, "Hint: Check probes.disabled and probes.severity")
}

func TestValidate_CatalogPolicyIgnoredWithoutCatalog(t *testing.T) {
	// Given: a user config tuning catalog probes
	isolateEnv(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`
probes:
  disabled: [docker.daemon]
  severity:
    az.authenticated: critical
`), 0o644))
	reg := writeRegistry(t, registry.FileSection{
		Name:   "Team",
		Probes: []registry.FileProbe{fakeProbe("team.vpn", tool("ok"), "warning")},
	})

	// When: running only the team registry
	res := run(t, "validate", "--no-defaults", "--registry", reg)

	// Then: the catalog entries in the policy do not fail the run
	assert.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "team.vpn")
}

func TestValidate_QuietHasNoProgress(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name:   "Tools",
		Probes: []registry.FileProbe{fakeProbe("tool.one", tool("ok"), "critical")},
	})

	res := run(t, "validate", "--no-defaults", "--registry", reg, "--quiet")

	assert.Equal(t, ExitOK, res.code)
	assert.Empty(t, res.stderr)
	assert.Contains(t, res.stdout, "Status: READY")
}

func TestValidate_VerboseShowsRawOutput(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name:   "Containers",
		Probes: []registry.FileProbe{fakeProbe("daemon.running", tool("fail"), "critical")},
	})

	res := run(t, "validate", "--no-defaults", "--registry", reg, "--verbose")

	assert.Equal(t, ExitCritical, res.code)
	assert.Contains(t, res.stdout, "| service is not running")
}

func TestBuildRegistry_DefaultsAndFile(t *testing.T) {
	isolateEnv(t)
	reg := writeRegistry(t, registry.FileSection{
		Name:   "Team",
		Probes: []registry.FileProbe{fakeProbe("team.vpn", tool("ok"), "warning")},
	})

	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.Registry.File = reg

	merged, err := buildRegistry(cfg, "")
	require.NoError(t, err)

	_, ok := merged.Lookup("team.vpn")
	assert.True(t, ok)
	_, ok = merged.Lookup("os.supported")
	assert.True(t, ok)
	assert.Equal(t, "Team", merged.Sections()[len(merged.Sections())-1])
}
