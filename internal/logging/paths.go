package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.envcheck/logs, or a directory under the system
// temp dir when the home directory is unknown.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), ".envcheck", "logs")
	}
	return filepath.Join(home, ".envcheck", "logs")
}

// DefaultLogPath returns the debug log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "envcheck.log")
}
