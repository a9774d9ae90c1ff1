package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFile is the vault-level configuration file name.
const ConfigFile = "remindme.yaml"

// ErrRootNotFound is returned when no vault marker exists above the start directory.
var ErrRootNotFound = errors.New("vault root not found")

// FindRoot walks upwards from startDir looking for a vault marker: the system
// directory, a .git directory, or a remindme.yaml file. It returns the absolute root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, DefaultSystemDir) || hasFile(dir, ".git") || hasFile(dir, ConfigFile) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
