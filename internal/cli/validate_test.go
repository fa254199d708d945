package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kazt/internal/compiler"
)

func TestValidateValidRuleSet(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Rule set valid (2 blocks)")
}

func TestValidateValidRuleSetJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	var payload ValidateOutput
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, 2, payload.BlockCount)
	assert.True(t, payload.Valid)
	assert.False(t, payload.CycleDetected)
	assert.Empty(t, payload.Conflicts)
	assert.NotEmpty(t, payload.BlockSetHash)
	assert.NotNil(t, payload.Diagnostics)
}

func TestValidateWarningsKeepRuleSetValid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", lowIntervalYAML)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Rule set valid (1 blocks)")
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "interval 20ms is very low")
}

func TestValidateCycle(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.json", cyclicJSON)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 conflict(s)")
	assert.Contains(t, out, "✗ Rule set invalid")
	assert.Contains(t, out, "Circular dependency")
}

func TestValidateCycleJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.json", cyclicJSON)

	out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, compiler.ErrCycle, resp.Error.Code)

	var payload ValidateOutput
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.False(t, payload.Valid)
	assert.True(t, payload.CycleDetected)
}

func TestValidateLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code string
	}{
		{
			name: "missing file",
			path: filepath.Join(dir, "missing.yaml"),
			code: ErrCodeNotFound,
		},
		{
			name: "directory",
			path: dir,
			code: ErrCodeReadFailed,
		},
		{
			name: "unsupported extension",
			path: writeFile(t, dir, "rules.txt", orderbookYAML),
			code: ErrCodeUnsupported,
		},
		{
			name: "yaml syntax",
			path: writeFile(t, dir, "broken.yaml", "blocks: [\n"),
			code: ErrCodeParseFailed,
		},
		{
			name: "param out of bounds",
			path: writeFile(t, dir, "weight.json",
				`[{"id": "p", "type": "priority", "params": {"factor": "fee", "weight": 101}}]`),
			code: ErrCodeInvalidParams,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)

			resp, _ := decodeResponse(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestValidateMissingFileText(t *testing.T) {
	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/rules.yaml")
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
	assert.Contains(t, out, "not found")
}

func TestValidateRequiresOneArg(t *testing.T) {
	_, err := execute(NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestValidateCUERuleSet(t *testing.T) {
	path := filepath.Join("..", "harness", "testdata", "rules", "orderbook.cue")

	out, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Rule set valid (5 blocks)")
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		err  *compiler.CompileError
		code string
	}{
		{&compiler.CompileError{Field: "file"}, ErrCodeUnsupported},
		{&compiler.CompileError{}, ErrCodeGeneric},
		{&compiler.CompileError{Field: "yaml"}, ErrCodeParseFailed},
		{&compiler.CompileError{Field: "blocks"}, ErrCodeParseFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, MapFieldToErrorCode(tt.err), "field %q", tt.err.Field)
	}
}

func TestFirstConflict(t *testing.T) {
	diags := []compiler.Diagnostic{
		{Code: "W303", Level: compiler.LevelWarning, Message: "w"},
		{Code: compiler.ErrCycle, Level: compiler.LevelConflict, Message: "c"},
	}
	assert.Equal(t, compiler.ErrCycle, firstConflict(diags).Code)
	assert.Equal(t, ErrCodeGeneric, firstConflict(nil).Code)
}
