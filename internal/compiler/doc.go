// Package compiler turns rule-set sources into typed blocks and statically
// checks block graphs.
//
// Validate is the graph validator: referential integrity, cycle detection,
// duplicate-type advice, ordering/matching compatibility, filter list
// overlap and batching parameter sanity, always in that order so the
// conflict and warning lists are reproducible for the same input.
//
// CompileRuleSet, DecodeBlocksJSON and DecodeBlocksYAML are the boundary
// layer: they enforce parameter bounds once, at construction, so the
// validator and the simulation engine can assume well-typed blocks.
package compiler
