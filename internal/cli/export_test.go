package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/export"
	"github.com/roach88/kazt/internal/ir"
	"github.com/roach88/kazt/internal/testutil"
)

func TestExportJSONText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)

	out, err := execute(NewExportCommand(newTestOptions(t, "text")), path, "--to", "json")
	require.NoError(t, err)

	doc, err := export.ParseEnvelope([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, ir.SchemaVersion, doc.Version)
	assert.Equal(t, 2, doc.Metadata.BlockCount)
	assert.Equal(t, testutil.DefaultTime.Unix(), doc.Metadata.GeneratedAt)
	require.Len(t, doc.Rules, 2)
	assert.Equal(t, "order", doc.Rules[0].ID)
}

func TestExportJSONRoundTripsBlocks(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)
	rs, err := LoadRuleSet(path)
	require.NoError(t, err)

	out, err := execute(NewExportCommand(newTestOptions(t, "text")), path)
	require.NoError(t, err)

	doc, err := export.ParseEnvelope([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, rs.Blocks, doc.Rules)
}

func TestExportJSONFormatResponse(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)

	out, err := execute(NewExportCommand(newTestOptions(t, "json")), path, "--to", "json")
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	doc, err := export.ParseEnvelope(data)
	require.NoError(t, err)
	assert.Len(t, doc.Rules, 2)
}

func TestExportAnchor(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)

	out, err := execute(NewExportCommand(newTestOptions(t, "text")), path, "--to", "anchor")
	require.NoError(t, err)
	assert.Contains(t, out, "use anchor_lang::prelude::*;")
	assert.Contains(t, out, "rules_account.block_count = 2 as u32;")
	assert.Contains(t, out, "pub struct RulesAccount")
}

func TestExportAnchorJSONFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)

	out, err := execute(NewExportCommand(newTestOptions(t, "json")), path, "--to", "anchor")
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	var env struct {
		Format string `json:"format"`
		Data   string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, "anchor", env.Format)
	assert.Equal(t, export.Anchor(mustLoadBlocks(t, path)), env.Data)
}

func TestExportUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)

	out, err := execute(NewExportCommand(newTestOptions(t, "json")), path, "--to", "solidity")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp, _ := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(engine.ErrCodeUnsupportedFormat), resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "solidity")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.yaml", orderbookYAML)
	target := filepath.Join(dir, "program.rs")

	out, err := execute(NewExportCommand(newTestOptions(t, "text")), path, "--to", "anchor", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote anchor export to "+target)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, export.Anchor(mustLoadBlocks(t, path)), string(data))
}

func TestExportToFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.yaml", orderbookYAML)
	target := filepath.Join(dir, "rules.export.json")

	out, err := execute(NewExportCommand(newTestOptions(t, "json")), path, "--out", target)
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	var payload ExportOutput
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, export.FormatJSON, payload.Format)
	assert.Equal(t, target, payload.Path)

	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, len(written), payload.Bytes)

	_, err = export.ParseEnvelope(written)
	require.NoError(t, err)
}

func TestExportWriteFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.yaml", orderbookYAML)
	target := filepath.Join(dir, "missing", "out.json")

	out, err := execute(NewExportCommand(newTestOptions(t, "json")), path, "--out", target)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp, _ := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeWriteFailed, resp.Error.Code)
}

func TestExportInvalidRuleSetStillExports(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.json", cyclicJSON)

	out, err := execute(NewExportCommand(newTestOptions(t, "text")), path)
	require.NoError(t, err)

	doc, err := export.ParseEnvelope([]byte(out))
	require.NoError(t, err)
	assert.Len(t, doc.Rules, 2)
}

func TestExportTemplate(t *testing.T) {
	out, err := execute(NewExportCommand(newTestOptions(t, "text")), "--rule-set", "tpl_orderbook")
	require.NoError(t, err)

	doc, err := export.ParseEnvelope([]byte(out))
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Rules)
}

func mustLoadBlocks(t *testing.T, path string) []ir.RuleBlock {
	t.Helper()
	rs, err := LoadRuleSet(path)
	require.NoError(t, err)
	return rs.Blocks
}
