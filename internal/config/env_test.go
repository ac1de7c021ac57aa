package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironment_EnvOnly(t *testing.T) {
	cfg := &Config{Env: map[string]string{"B": "2", "A": "1"}}

	env, err := cfg.Environment(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, []string{"A=1", "B=2"}, env)
}

func TestEnvironment_EnvFileOverriddenByEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("# comment\nA=file\nC=\"quoted value\"\n"), 0644))
	cfg := &Config{EnvFile: ".env", Env: map[string]string{"A": "inline"}}

	env, err := cfg.Environment(root)

	require.NoError(t, err)
	assert.Equal(t, []string{"A=inline", "C=quoted value"}, env)
}

func TestEnvironment_MissingEnvFile(t *testing.T) {
	cfg := &Config{EnvFile: "absent.env"}

	_, err := cfg.Environment(t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.env")
}

func TestEnvironment_Empty(t *testing.T) {
	env, err := (&Config{}).Environment(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, env)
}
