package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaToStdout(t *testing.T) {
	isolateEnv(t)

	out, _, err := execute(NewSchemaCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Contains(t, out, "ON_BLOCK")
	assert.Contains(t, out, "stack_rule")
}

func TestSchemaToFile(t *testing.T) {
	isolateEnv(t)
	target := filepath.Join(t.TempDir(), "procs.schema.json")

	out, _, err := execute(NewSchemaCommand(&RootOptions{Format: "text"}), "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Schema written to")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
