package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// GlobalPath returns the path to the global .boolnet directory.
// On Unix: ~/.boolnet
// On Windows: %USERPROFILE%\.boolnet
func GlobalPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".boolnet"), nil
}

// EnsureGlobalDir creates the global .boolnet directory if it doesn't exist
// and returns its path.
func EnsureGlobalDir() (string, error) {
	path, err := GlobalPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create global .boolnet directory: %w", err)
	}
	return path, nil
}
