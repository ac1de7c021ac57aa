package catalogue

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/simcheck/internal/config"
	simerrors "github.com/AndreyAkinshin/simcheck/internal/errors"
	"github.com/AndreyAkinshin/simcheck/internal/record"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(path), 0644))
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0755))
}

// tree lays out models/orbit/SIM_a with two runs and baselines for one.
func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "models", "orbit", "SIM_a", "RUN_one"))
	mkdir(t, filepath.Join(root, "models", "orbit", "SIM_a", "RUN_two"))
	touch(t, filepath.Join(root, "models", "orbit", "SIM_a", "RUN_file"))
	mkdir(t, filepath.Join(root, "models", "orbit", "SIM_b"))
	touch(t, filepath.Join(root, "baseline", "orbit", "SIM_a", "RUN_one", "log", "x.csv"))
	touch(t, filepath.Join(root, "baseline", "orbit", "SIM_a", "RUN_one", "log", "y.csv"))
	touch(t, filepath.Join(root, "baseline", "orbit", "SIM_a", "RUN_one", "log", "notes.txt"))
	touch(t, filepath.Join(root, "baseline", "orbit", "SIM_a", "RUN_one", "out", "deep", "z.csv"))
	return root
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Executable: "sim.exe",
		Models: []config.ModelConfig{{
			Directory: "models/orbit",
			Sims: []config.SimConfig{
				{Directory: "SIM_a", Runs: []config.RunEntry{{Pattern: "RUN_*", Compare: []string{"log/*.csv"}}}},
				{Directory: "SIM_b"},
			},
		}},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func discover(t *testing.T, root string, cfg *config.Config) (*record.PackageReport, []string, error) {
	t.Helper()
	return Discover(context.Background(), cfg, Options{Root: root, LogDir: filepath.Join(root, "logs"), Workers: 2, RunID: "id"})
}

func TestDiscover_BuildsHierarchy(t *testing.T) {
	root := tree(t)

	report, _, err := discover(t, root, testConfig())
	require.NoError(t, err)

	require.Len(t, report.Models, 1)
	model := report.Models[0]
	assert.Equal(t, "orbit", model.Name)
	require.Len(t, model.Sims, 2)

	sim := model.Sims[0]
	assert.Equal(t, "orbit/SIM_a", sim.ID())
	assert.Equal(t, filepath.Join(root, "models", "orbit", "SIM_a", "sim.exe"), sim.Executable)
	assert.Equal(t, "make", sim.BuildCommand)
	assert.Equal(t, filepath.Join(root, "logs", "build", "orbit.SIM_a.log"), sim.BuildLogPath)

	require.Len(t, sim.Runs, 2, "RUN_file is not a directory")
	assert.Equal(t, "RUN_one", sim.Runs[0].Name)
	assert.Equal(t, "RUN_two", sim.Runs[1].Name)
	assert.Equal(t, "./sim.exe RUN_one", sim.Runs[0].Command)
	assert.Equal(t, sim.Dir, sim.Runs[0].WorkDir)
	assert.Equal(t, filepath.Join(root, "logs", "run", "orbit.SIM_a.RUN_one.log"), sim.Runs[0].LogPath)

	assert.Equal(t, 2, report.Workers)
	assert.Equal(t, "id", report.RunID)
	assert.Equal(t, filepath.Join(root, "baseline"), report.BaselineDir)
}

func TestDiscover_ComparisonsMirrorBaselineTree(t *testing.T) {
	root := tree(t)

	report, _, err := discover(t, root, testConfig())
	require.NoError(t, err)

	run := report.Models[0].Sims[0].Runs[0]
	require.Len(t, run.Comparisons, 2)
	assert.Equal(t, filepath.Join(run.Dir, "log", "x.csv"), run.Comparisons[0].Produced)
	assert.Equal(t, filepath.Join(root, "baseline", "orbit", "SIM_a", "RUN_one", "log", "x.csv"), run.Comparisons[0].Baseline)
	assert.Equal(t, filepath.Join(run.Dir, "log", "y.csv"), run.Comparisons[1].Produced)
}

func TestDiscover_DoubleStarPattern(t *testing.T) {
	root := tree(t)
	cfg := testConfig()
	cfg.Models[0].Sims[0].Runs[0].Compare = []string{"**/*.csv"}

	report, _, err := discover(t, root, cfg)
	require.NoError(t, err)

	run := report.Models[0].Sims[0].Runs[0]
	require.Len(t, run.Comparisons, 3)
	assert.Equal(t, filepath.Join(run.Dir, "out", "deep", "z.csv"), run.Comparisons[2].Produced)
}

func TestDiscover_EmptyMatchesAreWarnings(t *testing.T) {
	root := tree(t)
	cfg := testConfig()
	cfg.Models[0].Sims[0].Runs = []config.RunEntry{
		{Pattern: "RUN_one", Compare: []string{"*.bin"}},
		{Pattern: "RUN_two", Compare: []string{"log/*.csv"}},
		{Pattern: "NOPE_*"},
	}

	report, warnings, err := discover(t, root, cfg)
	require.NoError(t, err)

	sim := report.Models[0].Sims[0]
	require.Len(t, sim.Runs, 2)
	assert.Empty(t, sim.Runs[0].Comparisons)
	assert.Empty(t, sim.Runs[1].Comparisons)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], `compare pattern "*.bin" matches no baseline files`)
	assert.Contains(t, warnings[1], "baseline directory")
	assert.Contains(t, warnings[2], `run pattern "NOPE_*" matches no directories`)
}

func TestDiscover_DuplicateRunKeepsFirst(t *testing.T) {
	root := tree(t)
	cfg := testConfig()
	cfg.Models[0].Sims[0].Runs = []config.RunEntry{
		{Pattern: "RUN_one", ExpectedExitCode: 3},
		{Pattern: "RUN_*"},
	}

	report, warnings, err := discover(t, root, cfg)
	require.NoError(t, err)

	runs := report.Models[0].Sims[0].Runs
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].ExpectedExitCode)
	assert.Equal(t, "RUN_two", runs[1].Name)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "more than one pattern")
}

func TestDiscover_RunOverrides(t *testing.T) {
	root := tree(t)
	cfg := testConfig()
	cfg.Run.WorkingDir = config.WorkingDirRun
	cfg.Models[0].Sims[0].Executable = "bin/S_main.exe"
	cfg.Models[0].Sims[0].Runs = []config.RunEntry{{Pattern: "RUN_one", Command: "${sim_dir}/${executable} --in ${run_dir} $${HOME} ${unknown}", ExpectedExitCode: 1}}

	report, _, err := discover(t, root, cfg)
	require.NoError(t, err)

	sim := report.Models[0].Sims[0]
	run := sim.Runs[0]
	assert.Equal(t, filepath.Join(sim.Dir, "bin", "S_main.exe"), sim.Executable)
	assert.Equal(t, sim.Dir+"/bin/S_main.exe --in "+run.Dir+" ${HOME} ${unknown}", run.Command)
	assert.Equal(t, run.Dir, run.WorkDir)
	assert.Equal(t, 1, run.ExpectedExitCode)
}

func TestDiscover_ModelFilter(t *testing.T) {
	root := tree(t)
	mkdir(t, filepath.Join(root, "models", "lander"))
	cfg := testConfig()
	cfg.Models = append(cfg.Models, config.ModelConfig{Directory: "models/lander"})

	report, _, err := Discover(context.Background(), cfg, Options{Root: root, LogDir: root, Model: "lander"})
	require.NoError(t, err)

	require.Len(t, report.Models, 1)
	assert.Equal(t, "lander", report.Models[0].Name)
}

func TestDiscover_UnknownModelFilter(t *testing.T) {
	root := tree(t)

	_, _, err := Discover(context.Background(), testConfig(), Options{Root: root, LogDir: root, Model: "mars"})

	require.Error(t, err)
	assert.True(t, simerrors.IsKind(err, simerrors.KindNotFound))
}

func TestDiscover_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(root string, cfg *config.Config)
		want   string
	}{
		{"missing model dir", func(_ string, cfg *config.Config) {
			cfg.Models[0].Directory = "models/absent"
		}, "model directory"},
		{"missing sim dir", func(_ string, cfg *config.Config) {
			cfg.Models[0].Sims[1].Directory = "SIM_absent"
		}, "sim directory"},
		{"baseline equals run dir", func(root string, cfg *config.Config) {
			require.NoError(t, os.Rename(filepath.Join(root, "models", "orbit"), filepath.Join(root, "orbit")))
			cfg.Models[0].Directory = "orbit"
			cfg.Comparison.Directory = "."
		}, "run directory and baseline directory are both"},
		{"bad run pattern", func(_ string, cfg *config.Config) {
			cfg.Models[0].Sims[0].Runs[0].Pattern = "RUN_["
		}, "invalid run pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tree(t)
			cfg := testConfig()
			tt.mutate(root, cfg)

			_, _, err := discover(t, root, cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, simerrors.ExitConfigError, simerrors.GetExitCode(err))
		})
	}
}

func TestPlan(t *testing.T) {
	root := tree(t)
	report, _, err := discover(t, root, testConfig())
	require.NoError(t, err)
	simA, simB := report.Models[0].Sims[0], report.Models[0].Sims[1]
	touch(t, simA.Executable)

	t.Run("if missing", func(t *testing.T) {
		plan := Plan(report, BuildIfMissing)
		assert.Equal(t, []*record.SimRecord{simA}, plan.AlreadyBuilt)
		assert.Equal(t, []*record.SimRecord{simB}, plan.NeedsBuild)
		assert.Empty(t, plan.Forbidden)
		assert.True(t, plan.InBuildSet(simB))
		assert.False(t, plan.InBuildSet(simA))
	})

	t.Run("all", func(t *testing.T) {
		plan := Plan(report, BuildAll)
		assert.Equal(t, []*record.SimRecord{simA, simB}, plan.NeedsBuild)
		assert.Empty(t, plan.AlreadyBuilt)
	})

	t.Run("none", func(t *testing.T) {
		plan := Plan(report, BuildNone)
		assert.Equal(t, []*record.SimRecord{simA, simB}, plan.Forbidden)
		assert.Empty(t, plan.NeedsBuild)
	})
}

func TestPolicyFromFlags(t *testing.T) {
	p, err := PolicyFromFlags(false, false)
	require.NoError(t, err)
	assert.Equal(t, BuildIfMissing, p)

	p, err = PolicyFromFlags(true, false)
	require.NoError(t, err)
	assert.Equal(t, BuildNone, p)

	p, err = PolicyFromFlags(false, true)
	require.NoError(t, err)
	assert.Equal(t, BuildAll, p)

	_, err = PolicyFromFlags(true, true)
	assert.Error(t, err)

	assert.Equal(t, "if-missing", BuildIfMissing.String())
	assert.Equal(t, "unknown(7)", BuildPolicy(7).String())
}

func TestInterpolate(t *testing.T) {
	vars := map[string]string{"executable": "sim.exe", "run": "RUN_a", "run_dir": "/data/my runs/RUN_a"}
	tests := []struct {
		in, want string
	}{
		{"./${executable} ${run}", "./sim.exe RUN_a"},
		{"ls ${run_dir}/log", "ls '/data/my runs/RUN_a'/log"},
		{"$${executable}", "${executable}"},
		{"${missing}", "${missing}"},
		{"echo $HOME", "echo $HOME"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Interpolate(tt.in, vars), tt.in)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain/path-1.csv", "plain/path-1.csv"},
		{"", "''"},
		{"a b", "'a b'"},
		{"it's", `'it'\''s'`},
		{"$HOME", "'$HOME'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShellQuote(tt.in), tt.in)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, rel string
		want         bool
	}{
		{"log/*.csv", "log/a.csv", true},
		{"log/*.csv", "log/sub/a.csv", false},
		{"*.csv", "log/a.csv", false},
		{"**/*.csv", "a.csv", true},
		{"**/*.csv", "log/sub/a.csv", true},
		{"**/sub/*.csv", "log/sub/a.csv", true},
		{"**/*.csv", "log/a.txt", false},
	}
	for _, tt := range tests {
		got, err := matchPattern(tt.pattern, tt.rel)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.pattern, tt.rel)
	}
}

func TestAnalyzeLogPath(t *testing.T) {
	sim := &record.SimRecord{Model: "orbit", Name: "SIM_a"}
	run := &record.RunRecord{Name: "RUN_one"}

	got := AnalyzeLogPath("/logs", sim, run, "log/x.csv")

	assert.Equal(t, filepath.Join("/logs", "analyze", "orbit.SIM_a.RUN_one.log_x.csv.log"), got)
}
