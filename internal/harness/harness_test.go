package harness

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kazt/internal/ir"
	"github.com/roach88/kazt/internal/testutil"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestRun_TestdataScenariosPass(t *testing.T) {
	files := []string{
		"fifo_batching",
		"price_time_ranks",
		"invalid_cycle",
		"no_blocks",
		"seeded_sampling",
		"orderbook_rule_file",
	}

	for _, name := range files {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_SameSeedSameReport(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/seeded_sampling.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Report, second.Report)
}

func TestRun_DifferentSeedsDiffer(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/seeded_sampling.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)

	scenario.Seed++
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.NotEqual(t, first.Report.Results[0].TxID, second.Report.Results[0].TxID)
}

func TestRun_FailedExpectationsAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "expects the opposite of what happens",
		Blocks:      BlockList{testutil.Ordering("o", ir.OrderingFIFO)},
		Transactions: TransactionList{
			{TxID: "t1", Sender: "a", Amount: 1, Fee: 0.01},
		},
		Expect: Expectation{
			Valid:     boolPtr(false),
			Processed: intPtr(2),
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"expect.valid: expected false, got true",
		"expect.processed: expected 2, got 1",
	}, result.Errors)
}

func TestRun_MissingRuleFile(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "rule file vanished after loading",
		RuleFile:    "testdata/rules/missing.cue",
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load rule file")
}

func TestRun_TransactionsBypassSampling(t *testing.T) {
	scenario := &Scenario{
		Name:        "fixed",
		Description: "explicit transactions",
		Seed:        123,
		Blocks:      BlockList{testutil.Ordering("o", ir.OrderingFIFO)},
		Transactions: TransactionList{
			{TxID: "x", Sender: "a", Amount: 1, Fee: 0.01},
			{TxID: "y", Sender: "b", Amount: 2, Fee: 0.02},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	require.Len(t, result.Report.Results, 2)
	assert.Equal(t, "x", result.Report.Results[0].TxID)
	assert.Equal(t, "y", result.Report.Results[1].TxID)
	assert.Equal(t, ir.OutcomeIncluded, result.Report.Results[1].Outcome)
}

func TestHarness_LogsScenario(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	scenario, err := LoadScenario("testdata/scenarios/invalid_cycle.yaml")
	require.NoError(t, err)

	_, err = New(logger).Run(scenario)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"scenario":"invalid_cycle"`)
	assert.Contains(t, out, "simulation skipped: rule set is invalid")
	assert.Contains(t, out, "scenario complete")
}
