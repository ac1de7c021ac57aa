// Package integration contains end-to-end tests for simcheck.
package integration

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/AndreyAkinshin/simcheck/internal/cli"
	"github.com/AndreyAkinshin/simcheck/internal/config"
	"github.com/AndreyAkinshin/simcheck/internal/project"
	"github.com/AndreyAkinshin/simcheck/pkg/simcheck"
)

var (
	fixturesDirOnce sync.Once
	fixturesDirPath string
)

// fixturesDir returns the path to the test fixtures directory.
func fixturesDir() string {
	fixturesDirOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		fixturesDirPath = filepath.Join(filepath.Dir(filename), "..", "fixtures")
	})
	return fixturesDirPath
}

// copyFixture copies a fixture tree into a temp directory so runs can
// write executables and logs without touching the repository.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	src := filepath.Join(fixturesDir(), name)
	dst := t.TempDir()

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	if err != nil {
		t.Fatalf("failed to copy fixture %s: %v", name, err)
	}
	return dst
}

func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	code := cli.RunWithWriters(args, &buf, &buf)
	return code, buf.String()
}

func TestFixtureCataloguesLoad(t *testing.T) {
	t.Parallel()
	tests := []struct {
		file   string
		models int
	}{
		{filepath.Join("minimal", "simcheck.json"), 1},
		{filepath.Join("full", "simcheck.json"), 2},
		{filepath.Join("yaml", "simcheck.yaml"), 1},
		{filepath.Join("orbit", "simcheck.yaml"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()
			cfg, _, err := config.LoadAndValidate(filepath.Join(fixturesDir(), tt.file))
			if err != nil {
				t.Fatalf("failed to load %s: %v", tt.file, err)
			}
			if len(cfg.Models) != tt.models {
				t.Errorf("expected %d models, got %d", tt.models, len(cfg.Models))
			}
		})
	}
}

func TestOrbitProjectEnvironment(t *testing.T) {
	t.Parallel()
	proj, err := project.LoadFile(filepath.Join(fixturesDir(), "orbit", "simcheck.yaml"))
	if err != nil {
		t.Fatalf("failed to load orbit project: %v", err)
	}

	want := map[string]bool{"SIM_GREETING=hello": false, "SIM_SCALE=1": false}
	for _, kv := range proj.Env {
		if _, ok := want[kv]; ok {
			want[kv] = true
		}
	}
	for kv, seen := range want {
		if !seen {
			t.Errorf("expected %s in project environment %v", kv, proj.Env)
		}
	}
}

func TestEndToEndPass(t *testing.T) {
	t.Parallel()
	root := copyFixture(t, "orbit")
	cfgPath := filepath.Join(root, "simcheck.yaml")

	code, out := runCLI(t, "-c", cfgPath, "-j", "2")
	if code != simcheck.ExitSuccess {
		t.Fatalf("first run exit code = %d, want %d\n%s", code, simcheck.ExitSuccess, out)
	}
	if _, err := os.Stat(filepath.Join(root, "models", "orbit", "SIM_circular", "sim.exe")); err != nil {
		t.Errorf("expected executable to be built: %v", err)
	}

	// The executable now exists, so --build-none still runs and passes.
	code, out = runCLI(t, "-c", cfgPath, "--build-none")
	if code != simcheck.ExitSuccess {
		t.Errorf("--build-none exit code = %d, want %d\n%s", code, simcheck.ExitSuccess, out)
	}

	code, out = runCLI(t, "-c", cfgPath, "--build-all", "-q")
	if code != simcheck.ExitSuccess {
		t.Errorf("--build-all exit code = %d, want %d\n%s", code, simcheck.ExitSuccess, out)
	}
}

func TestEndToEndRegression(t *testing.T) {
	t.Parallel()
	root := copyFixture(t, "orbit")
	input := filepath.Join(root, "models", "orbit", "SIM_circular", "RUN_nominal", "input.txt")
	if err := os.WriteFile(input, []byte("43\n"), 0644); err != nil {
		t.Fatalf("failed to change input: %v", err)
	}

	code, out := runCLI(t, "-c", filepath.Join(root, "simcheck.yaml"), "--analyze")
	if code != simcheck.ExitFailure {
		t.Fatalf("exit code = %d, want %d\n%s", code, simcheck.ExitFailure, out)
	}

	analyzeLog := filepath.Join(root, cli.DefaultLogDir, "analyze", "orbit.SIM_circular.RUN_nominal.log_out.csv.log")
	data, err := os.ReadFile(analyzeLog)
	if err != nil {
		t.Fatalf("expected analyze log: %v", err)
	}
	if !bytes.Contains(data, []byte("hello,43")) {
		t.Errorf("analyze log does not show the regression:\n%s", data)
	}
}
