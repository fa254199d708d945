package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kazt/internal/ir"
)

// Snapshot renders a scenario run as canonical JSON for golden comparison.
// Optional report fields are omitted rather than written as null.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	v := result.Validation
	r := result.Report

	results := make(ir.Array, len(r.Results))
	for i, res := range r.Results {
		obj := ir.Object{
			"tx_id":   ir.String(res.TxID),
			"outcome": ir.String(res.Outcome),
		}
		if res.Position != nil {
			obj["position"] = ir.Int(*res.Position)
		}
		if res.BatchID != nil {
			obj["batch_id"] = ir.Int(*res.BatchID)
		}
		if res.Reason != nil {
			obj["reason"] = ir.String(*res.Reason)
		}
		results[i] = obj
	}

	snapshot := ir.Object{
		"scenario_name": ir.String(scenario.Name),
		"seed":          ir.Int(scenario.Seed),
		"validation": ir.Object{
			"valid":          ir.Bool(v.Valid),
			"cycle_detected": ir.Bool(v.CycleDetected),
			"conflicts":      stringArray(v.Conflicts),
			"warnings":       stringArray(v.Warnings),
		},
		"report": ir.Object{
			"total_txs": ir.Int(r.TotalTxs),
			"processed": ir.Int(r.Processed),
			"filtered":  ir.Int(r.Filtered),
			"conflicts": stringArray(r.Conflicts),
			"results":   results,
		},
	}
	return ir.MarshalCanonical(snapshot)
}

func stringArray(vals []string) ir.Array {
	out := make(ir.Array, len(vals))
	for i, s := range vals {
		out[i] = ir.String(s)
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
