// Package harness runs rule-set scenarios as executable regression tests.
//
// A scenario names a block graph, a way to obtain transactions and the
// outcome it expects. The harness validates the graph, runs the simulation
// with a seeded random source and a fixed clock, and evaluates the
// expectations against the validator verdict and the simulation report.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: orderbook_fee_ranking
//	description: "Higher fees take earlier batch slots"
//	seed: 42
//	sample_txs: 8
//	blocks:
//	  - id: order
//	    type: ordering
//	    params: { method: price_time }
//	    connections: [batch]
//	  - id: batch
//	    type: batching
//	    params: { max_batch: 4 }
//	expect:
//	  valid: true
//	  processed: 8
//	  outcomes: { batched: 8 }
//
// Instead of inline blocks a scenario may set rule_file to a .json, .yaml or
// .cue rule set, resolved relative to the scenario file. Instead of sampling
// it may list explicit transactions:
//
//	transactions:
//	  - { tx_id: t1, sender: alice, amount: 10, fee: 0.01, timestamp: 1735689600 }
//
// # Expectations
//
// Every expect field is optional; only the fields present are checked.
//
//   - valid, cycle_detected: the validator verdict
//   - conflicts_contain, warnings_contain: substrings that must each match
//     at least one conflict or warning
//   - total_txs, processed, filtered: report counters
//   - outcomes: exact counts per outcome (included, filtered, batched, rejected)
//   - reasons_contain: substrings that must each match a filter reason
//
// # Deterministic Testing
//
// Each scenario gets its own math/rand source seeded from seed and a clock
// stopped at testutil.DefaultTime, so repeated runs produce identical
// reports and golden snapshots stay stable.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/fifo_batching.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
