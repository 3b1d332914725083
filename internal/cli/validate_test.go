package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, _, err := execute(t, "validate", testdata("query.yaml"), "--fields", testdata("fields.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "✓ Query valid (2 condition(s), depth 1)\n", out)
}

func TestValidate_ValidJSON(t *testing.T) {
	out, _, err := execute(t, "validate", testdata("query.json"), "--fields", testdata("fields.yaml"), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 2, resp.Data.Conditions)
	assert.Equal(t, 1, resp.Data.Depth)
}

func TestValidate_Invalid(t *testing.T) {
	out, _, err := execute(t, "validate", testdata("invalid.yaml"), "--fields", testdata("fields.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, `  [E203] node c1: unknown field "salary"`)
	assert.Contains(t, out, `  warning: operator "between" is not offered for text field "name"`)
}

func TestValidate_InvalidJSON(t *testing.T) {
	out, _, err := execute(t, "validate", testdata("invalid.yaml"), "--fields", testdata("fields.yaml"), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationReport `json:"data"`
		Error  CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E203", resp.Error.Code)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "c1", resp.Data.Errors[0].NodeID)
	assert.Len(t, resp.Data.Warnings, 1)
}

func TestValidate_MaxDepthFlag(t *testing.T) {
	// query.yaml has depth 1; a zero limit is rejected by configuration.
	_, _, err := execute(t, "validate", testdata("query.yaml"), "--fields", testdata("fields.yaml"), "--max-depth", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "max_depth must be at least 1")
}

func TestValidate_Unversioned(t *testing.T) {
	out, _, err := execute(t, "validate", testdata("unversioned.json"), "--fields", testdata("fields.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")

	out, _, err = execute(t, "validate", testdata("unversioned.json"), "--fields", testdata("fields.yaml"), "--strict-version=false")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Query valid (1 condition(s), depth 1)")
}

func TestValidate_CommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing fields flag", []string{"validate", testdata("query.yaml")}, "E002"},
		{"missing fields file", []string{"validate", testdata("query.yaml"), "--fields", testdata("nope.yaml")}, "E005"},
		{"missing query file", []string{"validate", testdata("nope.yaml"), "--fields", testdata("fields.yaml")}, "E005"},
		{"fields are not a list", []string{"validate", testdata("query.yaml"), "--fields", testdata("query.yaml")}, "E004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestValidate_RequiresOneArg(t *testing.T) {
	_, _, err := execute(t, "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
