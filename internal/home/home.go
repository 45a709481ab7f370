// Package home resolves the biaslens home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the biaslens home directory.
	DefaultDirName = ".biaslens"

	// DataDirName is the subdirectory for the analysis database.
	DataDirName = "data"

	// ModelsDirName is the subdirectory mounted into the classifier sidecar.
	ModelsDirName = "models"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "biaslens.db"
)

// Dir represents the biaslens home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.biaslens).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DataPath returns the path to the data directory.
func (d *Dir) DataPath() string {
	return filepath.Join(d.path, DataDirName)
}

// DatabasePath returns the path to the SQLite database file.
func (d *Dir) DatabasePath() string {
	return filepath.Join(d.DataPath(), DatabaseFileName)
}

// ModelsPath returns the directory holding classifier model weights. It is
// bind-mounted into the sidecar container.
func (d *Dir) ModelsPath() string {
	return filepath.Join(d.path, ModelsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.DataPath(), d.ModelsPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
