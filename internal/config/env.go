package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
)

// Environment returns the extra job environment as KEY=VALUE pairs, sorted
// by key. Values from env_file are loaded first and env entries override
// them. A relative env_file is resolved against root.
func (c *Config) Environment(root string) ([]string, error) {
	vars := make(map[string]string)
	if c.EnvFile != "" {
		path := c.EnvFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		fileVars, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read env_file %s: %w", c.EnvFile, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for k, v := range c.Env {
		vars[k] = v
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env, nil
}
