package store

import "github.com/roach88/kazt/internal/ir"

// TemplateOwner owns every built-in template pack.
const TemplateOwner = "kazt"

// Template categories.
const (
	CategoryDEX       = "dex"
	CategoryLending   = "lending"
	CategoryOrderbook = "orderbook"
)

// Templates returns the built-in template packs. Each call builds fresh
// values, so callers may modify the result.
func Templates() []ir.RuleSet {
	maxTrade := 100000.0
	minOrder := 1.0

	return []ir.RuleSet{
		{
			ID:          "tpl_dex_amm",
			Name:        "DEX AMM Protection Pack",
			Description: "Standard MEV protection rules for AMM-based DEX protocols",
			Owner:       TemplateOwner,
			IsTemplate:  true,
			Category:    CategoryDEX,
			Blocks: []ir.RuleBlock{
				ir.MustRuleBlock("amm_filter", ir.BlockFilter, ir.FilterParams{MaxSize: &maxTrade}, "amm_order"),
				ir.MustRuleBlock("amm_order", ir.BlockOrdering, ir.OrderingParams{
					Method:     ir.OrderingPriceTime,
					Tiebreaker: ir.TiebreakerTimestamp,
				}, "amm_batch"),
				ir.MustRuleBlock("amm_batch", ir.BlockBatching, ir.BatchingParams{
					IntervalMS: 200, MaxBatch: 20, MinBatch: 1,
				}, "amm_match"),
				ir.MustRuleBlock("amm_match", ir.BlockMatching, ir.MatchingParams{Engine: ir.EngineAMM, PartialFill: true}),
			},
		},
		{
			ID:          "tpl_lending",
			Name:        "Lending Protocol Pack",
			Description: "Ordering and batching rules optimized for lending protocols",
			Owner:       TemplateOwner,
			IsTemplate:  true,
			Category:    CategoryLending,
			Blocks: []ir.RuleBlock{
				ir.MustRuleBlock("lend_priority", ir.BlockPriority, ir.PriorityParams{
					Factor: ir.FactorStake, Weight: 2,
				}, "lend_order"),
				ir.MustRuleBlock("lend_order", ir.BlockOrdering, ir.OrderingParams{
					Method:     ir.OrderingFIFO,
					Tiebreaker: ir.TiebreakerStake,
				}, "lend_batch"),
				ir.MustRuleBlock("lend_batch", ir.BlockBatching, ir.BatchingParams{
					IntervalMS: 500, MaxBatch: 100, MinBatch: 5,
				}),
			},
		},
		{
			ID:          "tpl_orderbook",
			Name:        "Orderbook Fairness Pack",
			Description: "Price-time priority ordering with anti-frontrunning filters",
			Owner:       TemplateOwner,
			IsTemplate:  true,
			Category:    CategoryOrderbook,
			Blocks: []ir.RuleBlock{
				ir.MustRuleBlock("ob_filter", ir.BlockFilter, ir.FilterParams{MinSize: &minOrder}, "ob_priority"),
				ir.MustRuleBlock("ob_priority", ir.BlockPriority, ir.PriorityParams{
					Factor: ir.FactorFee, Weight: 1,
				}, "ob_order"),
				ir.MustRuleBlock("ob_order", ir.BlockOrdering, ir.OrderingParams{
					Method:     ir.OrderingPriceTime,
					Tiebreaker: ir.TiebreakerTimestamp,
				}, "ob_batch"),
				ir.MustRuleBlock("ob_batch", ir.BlockBatching, ir.BatchingParams{
					IntervalMS: 100, MaxBatch: 50, MinBatch: 1,
				}, "ob_match"),
				ir.MustRuleBlock("ob_match", ir.BlockMatching, ir.MatchingParams{Engine: ir.EngineCLOB, PartialFill: true}),
			},
		},
	}
}
