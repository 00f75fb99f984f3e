package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/aegis_wall.yaml")
	require.NoError(t, err)

	assert.Equal(t, "aegis_wall", s.Name)
	assert.Equal(t, "test-session-aegis", s.SessionID)
	require.Len(t, s.Definitions, 1)
	assert.Equal(t, "ON_BLOCK", s.Definitions[0].Trigger)

	require.Len(t, s.Steps, 2)
	assert.Equal(t, 3, s.Steps[0].Repeat)
	require.Len(t, s.Steps[0].Do, 2)
	assert.Equal(t, 500, s.Steps[0].Do[1].Ms)

	require.Len(t, s.Assertions, 5)
	require.NotNil(t, s.Assertions[0].Equals)
	assert.Equal(t, 3, *s.Assertions[0].Equals)
}

func TestLoadScenario_ResolvesDefinitionsFile(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/melee_rotation.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "procs.yaml"), s.DefinitionsFile)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	data := []byte(`
name: typo
description: misspelled key
definitions:
  - trigger: ON_HIT
steps:
  - action: hit
assertion:
  - type: total_fires
    equals: 1
`)
	_, err := ParseScenario(data, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_RejectsUnknownDefinitionFields(t *testing.T) {
	data := []byte(`
name: typo
description: misspelled definition key
definitions:
  - trigger: ON_HIT
    icd: 100
steps:
  - action: hit
assertions:
  - type: total_fires
    equals: 1
`)
	_, err := ParseScenario(data, "")
	require.Error(t, err)
}

func TestParseScenario_Validation(t *testing.T) {
	const defs = "definitions:\n  - trigger: ON_HIT\n"
	const steps = "steps:\n  - action: hit\n"
	const asserts = "assertions:\n  - type: total_fires\n    equals: 1\n"

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing name", "description: d\n" + defs + steps + asserts, "name is required"},
		{"missing description", "name: n\n" + defs + steps + asserts, "description is required"},
		{"missing definitions", "name: n\ndescription: d\n" + steps + asserts, "definitions or definitions_file is required"},
		{"missing steps", "name: n\ndescription: d\n" + defs + asserts, "steps list is required"},
		{"missing assertions", "name: n\ndescription: d\n" + defs + steps, "assertions list is required"},
		{
			"missing definitions file",
			"name: n\ndescription: d\ndefinitions_file: gone.yaml\n" + steps + asserts,
			"definitions file not found",
		},
		{
			"unknown action",
			"name: n\ndescription: d\n" + defs + "steps:\n  - action: parry\n" + asserts,
			`steps[0]: unknown action "parry"`,
		},
		{
			"empty step",
			"name: n\ndescription: d\n" + defs + "steps:\n  - ms: 20\n" + asserts,
			"steps[0]: action is required",
		},
		{
			"action with do",
			"name: n\ndescription: d\n" + defs + "steps:\n  - action: hit\n    do:\n      - action: hit\n" + asserts,
			"mutually exclusive",
		},
		{
			"nested step error",
			"name: n\ndescription: d\n" + defs + "steps:\n  - repeat: 2\n    do:\n      - action: hit\n      - action: force\n" + asserts,
			"steps[0].do[1]: proc is required for force",
		},
		{
			"negative repeat",
			"name: n\ndescription: d\n" + defs + "steps:\n  - action: hit\n    repeat: -1\n" + asserts,
			"repeat must be non-negative",
		},
		{
			"unbounded numeric assertion",
			"name: n\ndescription: d\n" + defs + steps + "assertions:\n  - type: trigger_count\n    proc: X\n",
			"equals, min or max is required",
		},
		{
			"per-proc assertion without proc",
			"name: n\ndescription: d\n" + defs + steps + "assertions:\n  - type: active_stacks\n    equals: 1\n",
			"proc is required for active_stacks",
		},
		{
			"empty fire order",
			"name: n\ndescription: d\n" + defs + steps + "assertions:\n  - type: fire_order\n",
			"procs list is required",
		},
		{
			"unknown assertion",
			"name: n\ndescription: d\n" + defs + steps + "assertions:\n  - type: uptime\n",
			`unknown assertion type "uptime"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseScenario_AbsoluteDefinitionsFileUntouched(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "procs.json")
	require.NoError(t, os.WriteFile(defs, []byte(`[{"trigger":"ON_HIT"}]`), 0644))

	data := []byte("name: n\ndescription: d\ndefinitions_file: " + defs + "\nsteps:\n  - action: hit\nassertions:\n  - type: total_fires\n    equals: 1\n")
	s, err := ParseScenario(data, "/somewhere/else")
	require.NoError(t, err)
	assert.Equal(t, defs, s.DefinitionsFile)
}
