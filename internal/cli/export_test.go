package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/procforge/internal/procdef"
)

func TestExportJSONToStdout(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "procs.json", testDefinitions)

	out, _, err := execute(NewExportCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)

	var recs procdef.File
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "Flurry", recs[0].Name)
	assert.Equal(t, "ON_HIT", recs[0].Trigger)
	assert.Equal(t, "BurningAegis", recs[1].Name)
	assert.Equal(t, "STACK", recs[1].StackRule)
}

func TestExportSkipsRejectedRecords(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join("..", "procdef", "testdata", "designer.json")

	out, errOut, err := execute(NewExportCommand(&RootOptions{Format: "text"}), path, "--to", "yaml")
	require.NoError(t, err)
	assert.Contains(t, errOut, "warning:")

	var recs procdef.File
	require.NoError(t, yaml.Unmarshal([]byte(out), &recs))
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"BurningAegis", "Flurry", "LastStand"}, names)
}

func TestExportToFile(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "procs.json", testDefinitions)
	target := filepath.Join(t.TempDir(), "procs.yaml")

	out, _, err := execute(NewExportCommand(&RootOptions{Format: "json"}), path, "--to", "yaml", "-o", target)
	require.NoError(t, err)

	var result ExportResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, result.Definitions)
	assert.Equal(t, "yaml", result.Format)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	res, err := procdef.Parse(data, procdef.FormatYAML, target)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 2)
}

func TestExportRespectsCapacity(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PROCFORGE_CAPACITY", "1")
	path := writeFile(t, "procs.json", testDefinitions)

	out, errOut, err := execute(NewExportCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "warning:")

	var recs procdef.File
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 1)
}

func TestExportUnsupportedFormat(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "procs.json", testDefinitions)

	_, _, err := execute(NewExportCommand(&RootOptions{Format: "text"}), path, "--to", "lua")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
