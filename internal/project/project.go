package project

import (
	"fmt"
	"path/filepath"

	"github.com/AndreyAkinshin/simcheck/internal/config"
)

// Project is a loaded catalogue together with the directory it lives in.
type Project struct {
	Root       string
	ConfigPath string
	Config     *config.Config
	Env        []string
	Warnings   []string
}

// Load finds the catalogue from the current directory, or uses configPath
// when it is not empty, and loads it.
func Load(configPath string) (*Project, error) {
	if configPath == "" {
		found, err := FindConfig()
		if err != nil {
			return nil, err
		}
		configPath = found
	}
	return LoadFile(configPath)
}

// LoadFile loads and validates the catalogue at path. Relative directories
// in the catalogue resolve against the file's directory.
func LoadFile(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	cfg, warnings, err := config.LoadAndValidate(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	root := filepath.Dir(abs)
	env, err := cfg.Environment(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return &Project{
		Root:       root,
		ConfigPath: abs,
		Config:     cfg,
		Env:        env,
		Warnings:   warnings,
	}, nil
}

// LogDir resolves a log directory flag against the project root.
func (p *Project) LogDir(flag string) string {
	if filepath.IsAbs(flag) {
		return flag
	}
	return filepath.Join(p.Root, flag)
}
