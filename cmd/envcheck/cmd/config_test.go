package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/envcheck/configs"
	"github.com/Aman-CERP/envcheck/internal/config"
)

func TestConfigCmd_HasSubcommands(t *testing.T) {
	configCmd, _, err := NewRootCmd().Find([]string{"config"})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, sc := range configCmd.Commands() {
		names[sc.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["show"])
	assert.True(t, names["path"])
}

func TestConfigPath(t *testing.T) {
	isolateEnv(t)

	res := run(t, "config", "path")

	require.Equal(t, ExitOK, res.code)
	assert.Equal(t, config.GetUserConfigPath()+"\n", res.stdout)
}

func TestConfigInit_CreatesFromTemplate(t *testing.T) {
	// Given: no user config
	isolateEnv(t)

	// When: running config init
	res := run(t, "config", "init")

	// Then: the template is written
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Created user configuration")

	data, err := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, configs.UserConfigTemplate, string(data))

	// And: the written template loads cleanly
	_, err = config.Load(t.TempDir())
	require.NoError(t, err)
}

func TestConfigInit_ExistingNeedsForce(t *testing.T) {
	isolateEnv(t)
	path := config.GetUserConfigPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	res := run(t, "config", "init")

	require.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "already exists")
	assert.Contains(t, res.stdout, "--force")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(data))

	res = run(t, "config", "init", "--force")

	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Backup:")
	backups, err := config.ListUserConfigBackups()
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestConfigShow(t *testing.T) {
	isolateEnv(t)
	writeProjectConfig(t, "probes:\n  concurrency: 3\n")

	res := run(t, "config", "show")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "concurrency: 3")
	assert.Contains(t, res.stdout, "timeout: 10s")

	res = run(t, "config", "show", "--json")
	require.Equal(t, ExitOK, res.code, res.stderr)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &cfg))
	assert.Equal(t, 3, cfg.Probes.Concurrency)
}

func TestConfigShow_InvalidConfigExitsTwo(t *testing.T) {
	isolateEnv(t)
	writeProjectConfig(t, "probes:\n  concurrency: 0\n")

	res := run(t, "config", "show")

	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "probes.concurrency")
}
