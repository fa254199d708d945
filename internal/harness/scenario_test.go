package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kazt/internal/engine"
	"github.com/roach88/kazt/internal/ir"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_InlineBlocks(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/fifo_batching.yaml")
	require.NoError(t, err)

	assert.Equal(t, "fifo_batching", scenario.Name)
	assert.Equal(t, int64(1), scenario.Seed)
	require.Len(t, scenario.Blocks, 3)

	guard, ok := ir.ParamsOf[ir.FilterParams](scenario.Blocks[0])
	require.True(t, ok)
	assert.Equal(t, []string{"eve"}, guard.Blacklist)
	require.NotNil(t, guard.MaxSize)
	assert.Equal(t, 500.0, *guard.MaxSize)
	assert.Equal(t, []string{"order"}, scenario.Blocks[0].Connections)

	require.Len(t, scenario.Transactions, 5)
	assert.Equal(t, ir.Transaction{
		TxID: "t1", Sender: "alice", Amount: 10, Fee: 0.01, Timestamp: 1735689600,
	}, scenario.Transactions[0])

	require.NotNil(t, scenario.Expect.Valid)
	assert.True(t, *scenario.Expect.Valid)
	require.NotNil(t, scenario.Expect.Processed)
	assert.Equal(t, 3, *scenario.Expect.Processed)
	assert.Equal(t, map[string]int{"batched": 3, "filtered": 2}, scenario.Expect.Outcomes)
}

func TestLoadScenario_EmptyBlockListIsPresent(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/no_blocks.yaml")
	require.NoError(t, err)

	assert.NotNil(t, scenario.Blocks)
	assert.Empty(t, scenario.Blocks)
	assert.Equal(t, engine.DefaultSampleTxs, scenario.sampleCount())
}

func TestLoadScenario_RuleFileResolvedAgainstScenarioDir(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/orderbook_rule_file.yaml")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "rules", "orderbook.cue"), scenario.RuleFile)
	assert.Nil(t, scenario.Blocks)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	base, err := filepath.Abs("testdata/rules")
	require.NoError(t, err)
	path := writeScenario(t, `
name: based
description: "rule file from a base path"
rule_file: orderbook.cue
expect: {}
`)

	scenario, err := LoadScenarioWithBasePath(path, base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "orderbook.cue"), scenario.RuleFile)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing name",
			content: "description: d\nblocks: []\n",
			want:    "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nblocks: []\n",
			want:    "description is required",
		},
		{
			name:    "no blocks source",
			content: "name: n\ndescription: d\n",
			want:    "one of blocks or rule_file is required",
		},
		{
			name:    "both blocks sources",
			content: "name: n\ndescription: d\nblocks: []\nrule_file: x.cue\n",
			want:    "mutually exclusive",
		},
		{
			name:    "rule file missing",
			content: "name: n\ndescription: d\nrule_file: nowhere.cue\n",
			want:    "rule file not found",
		},
		{
			name:    "unknown field",
			content: "name: n\ndescription: d\nblocks: []\nexpects: {}\n",
			want:    "field expects not found",
		},
		{
			name:    "sample count too large",
			content: "name: n\ndescription: d\nblocks: []\nsample_txs: 21\n",
			want:    "sample_txs must be between 1 and 20, got 21",
		},
		{
			name:    "sample count with transactions",
			content: "name: n\ndescription: d\nblocks: []\nsample_txs: 2\ntransactions: []\n",
			want:    "sample_txs cannot be combined with transactions",
		},
		{
			name:    "unknown outcome",
			content: "name: n\ndescription: d\nblocks: []\nexpect:\n  outcomes: { dropped: 1 }\n",
			want:    `unknown outcome "dropped"`,
		},
		{
			name:    "bad block params",
			content: "name: n\ndescription: d\nblocks:\n  - { id: b, type: batching, params: { max_batch: 0 } }\n",
			want:    ir.ErrOutOfBounds,
		},
		{
			name:    "unknown transaction field",
			content: "name: n\ndescription: d\nblocks: []\ntransactions:\n  - { tx_id: t, size: 3 }\n",
			want:    "unknown field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
