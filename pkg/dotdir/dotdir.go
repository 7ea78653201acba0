// Package dotdir resolves the .exemplar/ data directory.
//
// The directory holds the store files (metadata.json, hashes.json, the
// similarity index artifact) and config.toml. A project-local .exemplar/
// takes precedence over the per-user ~/.exemplar/ directory.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirName is the name of the exemplar directory.
const dirName = ".exemplar"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to the .exemplar/ directory, creating it
// if needed. Order of precedence:
//  1. Provided override
//  2. Local ./.exemplar/ dir
//  3. Home ~/.exemplar/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating exemplar directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDirExists checks whether a .exemplar/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
