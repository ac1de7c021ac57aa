package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// LoadWithWarnings parses JSON catalogue data and returns any unknown field
// warnings.
func LoadWithWarnings(path string, data []byte) (*Config, []string, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	warnings := detectUnknownFields(data)

	return &cfg, warnings, nil
}

// detectUnknownFields compares raw JSON with known struct fields, descending
// into the model, sim and run lists.
func detectUnknownFields(data []byte) []string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return []string{"internal: failed to re-parse config for unknown field detection"}
	}

	warnings := unknownKeys(raw, reflect.TypeOf(Config{}), "root level")
	for _, section := range []struct {
		key string
		typ reflect.Type
	}{
		{"build", reflect.TypeOf(BuildConfig{})},
		{"run", reflect.TypeOf(RunConfig{})},
		{"comparison", reflect.TypeOf(ComparisonConfig{})},
		{"analyze", reflect.TypeOf(CommandConfig{})},
		{"coverage", reflect.TypeOf(CommandConfig{})},
	} {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw[section.key], &fields); err != nil {
			continue
		}
		warnings = append(warnings, unknownKeys(fields, section.typ, fmt.Sprintf("%q", section.key))...)
	}

	if modelsRaw, ok := raw["models"]; ok {
		warnings = append(warnings, checkModelsUnknownFields(modelsRaw)...)
	}

	return warnings
}

func checkModelsUnknownFields(data json.RawMessage) []string {
	var warnings []string

	var models []map[string]json.RawMessage
	if err := json.Unmarshal(data, &models); err != nil {
		return nil
	}

	modelType := reflect.TypeOf(ModelConfig{})
	simType := reflect.TypeOf(SimConfig{})
	runType := reflect.TypeOf(RunEntry{})
	for i, model := range models {
		where := fmt.Sprintf("models[%d]", i)
		warnings = append(warnings, unknownKeys(model, modelType, where)...)

		var sims []map[string]json.RawMessage
		if err := json.Unmarshal(model["sims"], &sims); err != nil {
			continue
		}
		for j, sim := range sims {
			simWhere := fmt.Sprintf("%s.sims[%d]", where, j)
			warnings = append(warnings, unknownKeys(sim, simType, simWhere)...)

			var runs []map[string]json.RawMessage
			if err := json.Unmarshal(sim["runs"], &runs); err != nil {
				continue
			}
			for k, run := range runs {
				warnings = append(warnings, unknownKeys(run, runType, fmt.Sprintf("%s.runs[%d]", simWhere, k))...)
			}
		}
	}

	return warnings
}

func unknownKeys(fields map[string]json.RawMessage, t reflect.Type, where string) []string {
	var warnings []string
	known := getJSONFields(t)
	for key := range fields {
		if key == "$schema" {
			continue
		}
		if !known[key] {
			warnings = append(warnings, fmt.Sprintf("unknown field %q in %s (ignored)", key, where))
		}
	}
	return warnings
}

// getJSONFields returns a map of known JSON field names for a struct type.
func getJSONFields(t reflect.Type) map[string]bool {
	fields := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		if name := strings.Split(tag, ",")[0]; name != "" {
			fields[name] = true
		}
	}
	return fields
}
