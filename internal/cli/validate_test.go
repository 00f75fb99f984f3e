package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidFile(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "procs.json", testDefinitions)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ procs.json: 2 definition(s)")
	assert.Contains(t, out, "✓ All definitions valid")
}

func TestValidateValidFileJSON(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "procs.json", testDefinitions)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	require.Len(t, result.Files, 1)
	assert.Equal(t, 2, result.Files[0].Accepted)
}

func TestValidateReportsRejectedRecords(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join("..", "procdef", "testdata", "designer.json")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ designer.json: 3 accepted, 1 rejected")
	assert.Contains(t, out, "record 2 (Broken)")
	assert.Contains(t, out, "trigger")
	assert.Contains(t, out, "✗ Validation failed")
}

func TestValidateRejectedJSON(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join("..", "procdef", "testdata", "designer.json")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRejected, resp.Error.Code)
	assert.False(t, result.Valid)
	require.Len(t, result.Files[0].Rejected, 1)
	assert.Equal(t, "Broken", result.Files[0].Rejected[0].Name)
	assert.NotEmpty(t, result.Files[0].Rejected[0].Errors)
}

func TestValidateMultipleFormats(t *testing.T) {
	isolateEnv(t)
	dir := filepath.Join("..", "procdef", "testdata")

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}),
		filepath.Join(dir, "designer.cue"),
		filepath.Join(dir, "designer.lua"),
		filepath.Join(dir, "designer.yaml"),
	)
	require.Error(t, err, "every designer fixture carries a bad record")
	assert.Contains(t, out, "designer.cue")
	assert.Contains(t, out, "designer.lua")
	assert.Contains(t, out, "designer.yaml")
}

func TestValidateNonExistentFile(t *testing.T) {
	isolateEnv(t)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/procs.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidateSyntaxError(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, "broken.json", `[{"name": "Flurry",`)

	out, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
	assert.Contains(t, out, "Error [E004]")
}

func TestValidateRequiresArgs(t *testing.T) {
	_, _, err := execute(NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
}
