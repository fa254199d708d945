package testutil

import "github.com/roach88/kazt/internal/ir"

// Block builders for tests. They panic on invalid params.

func Ordering(id string, method ir.OrderingMethod, conns ...string) ir.RuleBlock {
	return ir.MustRuleBlock(id, ir.BlockOrdering, ir.OrderingParams{Method: method}, conns...)
}

func Batching(id string, intervalMS, maxBatch, minBatch int, conns ...string) ir.RuleBlock {
	return ir.MustRuleBlock(id, ir.BlockBatching, ir.BatchingParams{
		IntervalMS: intervalMS,
		MaxBatch:   maxBatch,
		MinBatch:   minBatch,
	}, conns...)
}

func Matching(id string, engine ir.MatchingEngine, conns ...string) ir.RuleBlock {
	return ir.MustRuleBlock(id, ir.BlockMatching, ir.MatchingParams{Engine: engine, PartialFill: true}, conns...)
}

func Priority(id string, factor ir.PriorityFactor, weight float64, conns ...string) ir.RuleBlock {
	return ir.MustRuleBlock(id, ir.BlockPriority, ir.PriorityParams{Factor: factor, Weight: weight}, conns...)
}

func Filter(id string, params ir.FilterParams, conns ...string) ir.RuleBlock {
	return ir.MustRuleBlock(id, ir.BlockFilter, params, conns...)
}

// Whitelist builds a filter that admits only senders.
func Whitelist(id string, senders ...string) ir.RuleBlock {
	return Filter(id, ir.FilterParams{Whitelist: senders})
}

// Blacklist builds a filter that drops senders.
func Blacklist(id string, senders ...string) ir.RuleBlock {
	return Filter(id, ir.FilterParams{Blacklist: senders})
}

// Float returns a pointer to f, for optional size bounds.
func Float(f float64) *float64 {
	return &f
}
