package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalCatalogue = "executable: sim.exe\nmodels:\n  - directory: models/orbit\n    sims: [{directory: SIM_a, runs: [{pattern: RUN_*}]}]\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFindConfigFrom_Found(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "simcheck.yaml"), minimalCatalogue)

	found, err := FindConfigFrom(root)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "simcheck.yaml"), found)
}

func TestFindConfigFrom_FoundFromSubdir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "simcheck.json"), `{}`)
	sub := filepath.Join(root, "models", "orbit", "SIM_a")
	require.NoError(t, os.MkdirAll(sub, 0755))

	found, err := FindConfigFrom(sub)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "simcheck.json"), found)
}

func TestFindConfigFrom_PrefersYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "simcheck.json"), `{}`)
	writeFile(t, filepath.Join(root, "simcheck.yml"), "{}")

	found, err := FindConfigFrom(root)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "simcheck.yml"), found)
}

func TestFindConfigFrom_IgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "simcheck.yaml"), 0755))
	writeFile(t, filepath.Join(root, "simcheck.json"), `{}`)

	found, err := FindConfigFrom(root)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "simcheck.json"), found)
}

func TestLoadFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".env"), "FROM_FILE=1\n")
	writeFile(t, filepath.Join(root, "simcheck.yaml"), "env_file: .env\nenv: {INLINE: \"2\"}\n"+minimalCatalogue)

	p, err := LoadFile(filepath.Join(root, "simcheck.yaml"))

	require.NoError(t, err)
	assert.Equal(t, root, p.Root)
	assert.Equal(t, filepath.Join(root, "simcheck.yaml"), p.ConfigPath)
	assert.Equal(t, "sim.exe", p.Config.Executable)
	assert.Equal(t, []string{"FROM_FILE=1", "INLINE=2"}, p.Env)
	assert.Empty(t, p.Warnings)
}

func TestLoadFile_Invalid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "simcheck.yaml"), "models: []\n")

	_, err := LoadFile(filepath.Join(root, "simcheck.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestLoadFile_MissingEnvFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "simcheck.yaml"), "env_file: absent.env\n"+minimalCatalogue)

	_, err := LoadFile(filepath.Join(root, "simcheck.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.env")
}

func TestLoad_ExplicitPath(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "custom.yaml")
	writeFile(t, path, minimalCatalogue)

	p, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, path, p.ConfigPath)
}

func TestProject_LogDir(t *testing.T) {
	p := &Project{Root: "/work"}

	assert.Equal(t, filepath.Join("/work", "simcheck-logs"), p.LogDir("simcheck-logs"))
	assert.Equal(t, "/var/log/sc", p.LogDir("/var/log/sc"))
}
