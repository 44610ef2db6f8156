package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCommand_Valid(t *testing.T) {
	out, err := execRoot(t, "validate", "testdata/logical.yaml")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid, 3 order(s)")
}

func TestValidateCommand_OrdersOverride(t *testing.T) {
	out, err := execRoot(t, "validate", "--orders", "testdata/orders.json")

	require.NoError(t, err)
	assert.Contains(t, out, "3 order(s)")
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	out, err := execRoot(t, "--format", "json", "validate", "testdata/logical.yaml")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, 3.0, data["orders"])
}

func TestValidateCommand_MissingConfig(t *testing.T) {
	out, err := execRoot(t, "validate", "testdata/does-not-exist.yaml")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
}

func TestValidateCommand_BadBatch(t *testing.T) {
	dir := t.TempDir()
	batch := filepath.Join(dir, "orders.json")
	require.NoError(t, os.WriteFile(batch, []byte(`[{"name": "No ID", "temp": "hot", "shelfLife": 1, "decayRate": 1}]`), 0o644))

	out, err := execRoot(t, "validate", "--orders", batch)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
}

func TestValidateCommand_BadConfigValues(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("order_rate: -1\n"), 0o644))

	_, err := execRoot(t, "validate", cfgPath)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")
}
