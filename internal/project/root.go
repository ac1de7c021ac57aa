// Package project locates and loads the simcheck catalogue of a source tree.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigFileNames are the accepted catalogue names, in lookup order.
var ConfigFileNames = []string{"simcheck.yaml", "simcheck.yml", "simcheck.json"}

// ErrNoConfig is returned when no catalogue file is found.
var ErrNoConfig = errors.New("simcheck.yaml, simcheck.yml or simcheck.json not found in the current directory or any parent")

// FindConfig walks up from the current working directory until it finds a
// catalogue file.
func FindConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindConfigFrom(cwd)
}

// FindConfigFrom walks up from startDir until it finds a catalogue file and
// returns its absolute path.
func FindConfigFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}
