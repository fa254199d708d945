package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kazt/internal/testutil"
)

func TestHistoryEmpty(t *testing.T) {
	out, err := execute(NewHistoryCommand(newTestOptions(t, "text")))
	require.NoError(t, err)
	assert.Contains(t, out, "No simulations recorded.")
}

func TestHistoryEmptyJSON(t *testing.T) {
	out, err := execute(NewHistoryCommand(newTestOptions(t, "json")))
	require.NoError(t, err)

	resp, data := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	var history HistoryOutput
	require.NoError(t, json.Unmarshal(data, &history))
	assert.NotNil(t, history.Simulations)
	assert.Empty(t, history.Simulations)
}

func TestHistoryListsNewestFirstWithLimit(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)
	opts := newTestOptions(t, "json", "run-1", "run-2", "run-3")
	clock := opts.Clock.(*testutil.FixedClock)

	for i := 0; i < 3; i++ {
		_, err := execute(NewSimulateCommand(opts), path, "-n", "2", "--seed", "1", "--save")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	out, err := execute(NewHistoryCommand(opts), "--limit", "2")
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	var history HistoryOutput
	require.NoError(t, json.Unmarshal(data, &history))
	require.Len(t, history.Simulations, 2)
	assert.Equal(t, "run-3", history.Simulations[0].ID)
	assert.Equal(t, "run-2", history.Simulations[1].ID)
}

func TestHistoryText(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)
	opts := newTestOptions(t, "text", "run-1")

	_, err := execute(NewSimulateCommand(opts), path, "-n", "3", "--seed", "2", "--save")
	require.NoError(t, err)

	out, err := execute(NewHistoryCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "2025-01-01T00:00:00Z")
	assert.Contains(t, out, "rule_set=-")
	assert.Contains(t, out, "total=3 processed=3 filtered=0")
}

func TestHistoryOtherOwnerIsHidden(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rules.yaml", orderbookYAML)
	opts := newTestOptions(t, "text", "run-1")

	_, err := execute(NewSimulateCommand(opts), path, "-n", "1", "--save", "--owner", "alice")
	require.NoError(t, err)

	out, err := execute(NewHistoryCommand(opts), "--owner", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "No simulations recorded.")
}
