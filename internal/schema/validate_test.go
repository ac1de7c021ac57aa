package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyAkinshin/simcheck/internal/config"
	"github.com/AndreyAkinshin/simcheck/internal/schema"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "test", "fixtures", name, "simcheck.json"))
	require.NoError(t, err)
	return data
}

func TestValidateCatalogue_ValidFixtures(t *testing.T) {
	for _, name := range []string{"minimal", "full"} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, schema.ValidateCatalogue(fixture(t, name)))
		})
	}
}

func TestValidateCatalogue_YAMLFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "test", "fixtures", "yaml", "simcheck.yaml"))
	require.NoError(t, err)

	converted, err := config.YAMLToJSON(data)
	require.NoError(t, err)

	assert.NoError(t, schema.ValidateCatalogue(converted))
}

func TestValidateCatalogue_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing executable", `{"models": [{"directory": "m"}]}`},
		{"missing models", `{"executable": "sim.exe"}`},
		{"empty models", `{"executable": "sim.exe", "models": []}`},
		{"model without directory", `{"executable": "sim.exe", "models": [{"sims": []}]}`},
		{"run without pattern", `{"executable": "s", "models": [{"directory": "m", "sims": [{"directory": "s", "runs": [{}]}]}]}`},
		{"exit code out of range", `{"executable": "s", "models": [{"directory": "m", "sims": [{"directory": "s", "runs": [{"pattern": "R*", "expected_exit_code": 300}]}]}]}`},
		{"bad working dir", `{"executable": "s", "run": {"working_dir": "home"}, "models": [{"directory": "m"}]}`},
		{"negative retries", `{"executable": "s", "build": {"retries": -1}, "models": [{"directory": "m"}]}`},
		{"analyze without command", `{"executable": "s", "analyze": {}, "models": [{"directory": "m"}]}`},
		{"env not strings", `{"executable": "s", "env": {"A": 1}, "models": [{"directory": "m"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, schema.ValidateCatalogue([]byte(tt.data)))
		})
	}
}

func TestValidateCatalogue_MalformedJSON(t *testing.T) {
	err := schema.ValidateCatalogue([]byte(`{"executable": `))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}
