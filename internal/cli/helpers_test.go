package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/store"
	"github.com/roach88/kazt/internal/testutil"
)

const orderbookYAML = `name: orderbook
description: fifo batches of two
blocks:
  - id: order
    type: ordering
    params: { method: FIFO }
    connections: [batch]
  - id: batch
    type: batching
    params: { interval_ms: 100, max_batch: 2, min_batch: 1 }
`

const lowIntervalYAML = `blocks:
  - id: batch
    type: batching
    params: { interval_ms: 20 }
`

const cyclicJSON = `[
  {"id": "a", "type": "ordering", "connections": ["b"]},
  {"id": "b", "type": "batching", "connections": ["a"]}
]`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// newTestOptions returns root options backed by a fresh database with a
// fixed clock and the given ids for new records.
func newTestOptions(t *testing.T, format string, ids ...string) *RootOptions {
	t.Helper()
	clock := testutil.NewFixedClock(testutil.DefaultTime)
	return &RootOptions{
		Format: format,
		DBPath: filepath.Join(t.TempDir(), "kazt.db"),
		Clock:  clock,
		StoreOptions: []store.Option{
			store.WithClock(clock),
			store.WithIDGenerator(engine.NewFixedGenerator(ids...)),
		},
	}
}

// execute runs cmd with args and returns stdout and the command error.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse parses a single JSON CLI response with a raw data field.
func decodeResponse(t *testing.T, out string) (CLIResponse, json.RawMessage) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope), "output: %s", out)
	return CLIResponse{Status: envelope.Status, Error: envelope.Error}, envelope.Data
}
