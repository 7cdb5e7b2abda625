package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempUserConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "envcheck", "config.yaml")
}

func TestBackupUserConfig_NoConfig(t *testing.T) {
	useTempUserConfig(t)

	path, err := BackupUserConfig()

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackupUserConfig_CopiesContent(t *testing.T) {
	// Given: an existing user config
	configPath := useTempUserConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	content := "version: 1\nprobes:\n  concurrency: 4\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	// When: backing it up
	backup, err := BackupUserConfig()

	// Then: the backup sits next to the config with the same content
	require.NoError(t, err)
	assert.Equal(t, filepath.Dir(configPath), filepath.Dir(backup))
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestBackupUserConfig_KeepsNewest(t *testing.T) {
	configPath := useTempUserConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("version: 1\n"), 0o644))

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var made []string
	for i := 0; i < MaxBackups+2; i++ {
		path, err := backupUserConfigAt(base.Add(time.Duration(i) * time.Minute))
		require.NoError(t, err)
		made = append(made, path)
	}

	backups, err := ListUserConfigBackups()
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	assert.Equal(t, made[len(made)-1], backups[0], "newest first")
	assert.NoFileExists(t, made[0])
}

func TestListUserConfigBackups_NoDirectory(t *testing.T) {
	useTempUserConfig(t)

	backups, err := ListUserConfigBackups()

	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestWriteUserConfig(t *testing.T) {
	configPath := useTempUserConfig(t)

	// First write creates the directory and needs no backup.
	backup, err := WriteUserConfig([]byte("version: 1\n"), false)
	require.NoError(t, err)
	assert.Empty(t, backup)
	assert.FileExists(t, configPath)

	// A second write without force is refused.
	_, err = WriteUserConfig([]byte("version: 1\nlogging:\n  level: debug\n"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	// With force the old file is backed up first.
	backup, err = WriteUserConfig([]byte("version: 1\nlogging:\n  level: debug\n"), true)
	require.NoError(t, err)
	require.NotEmpty(t, backup)

	old, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\n", string(old))

	current, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(current), "level: debug")
}
