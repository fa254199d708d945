package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/kazt/internal/ir"
)

// Graph diagnostic codes (E300-E399). W-prefixed codes are warnings.
const (
	ErrNoBlocks           = "E300" // empty block list
	ErrDanglingConnection = "E301" // connection names a missing block
	ErrCycle              = "E302" // directed cycle in the rule chain
	WarnDuplicateType     = "W303" // more than one block of a type
	ErrProRataCLOB        = "E304" // pro_rata ordering with clob matching
	ErrFilterOverlap      = "E305" // address in both blacklist and whitelist
	WarnFilterBothLists   = "W306" // both lists set, disjoint
	ErrBatchBounds        = "E307" // min_batch > max_batch
	WarnLowInterval       = "W308" // interval_ms below LowIntervalMS
	WarnDuplicateID       = "W309" // block id defined more than once
)

// LowIntervalMS is the batching interval below which a load warning is raised.
const LowIntervalMS = 50

// Level separates blocking conflicts from advisory warnings.
type Level string

const (
	LevelConflict Level = "conflict"
	LevelWarning  Level = "warning"
)

// Diagnostic is one finding of the graph validator.
type Diagnostic struct {
	Code    string `json:"code"`
	Level   Level  `json:"level"`
	Block   string `json:"block,omitempty"`
	Message string `json:"message"`
}

// Diagnose runs every graph check over blocks and returns the findings in
// check order. It never fails: malformed graphs produce conflicts.
func Diagnose(blocks []ir.RuleBlock) []Diagnostic {
	if len(blocks) == 0 {
		return []Diagnostic{{Code: ErrNoBlocks, Level: LevelConflict, Message: "No blocks provided"}}
	}

	var diags []Diagnostic
	diags = append(diags, checkConnections(blocks)...)
	diags = append(diags, checkCycles(blocks)...)
	diags = append(diags, checkDuplicateTypes(blocks)...)
	diags = append(diags, checkOrderingMatching(blocks)...)
	diags = append(diags, checkFilters(blocks)...)
	diags = append(diags, checkBatching(blocks)...)
	diags = append(diags, checkDuplicateIDs(blocks)...)
	return diags
}

// Validate checks a block graph for structural and semantic soundness.
// The set is valid when there are no conflicts and no cycle.
func Validate(blocks []ir.RuleBlock) ir.ValidationResult {
	return Summarize(Diagnose(blocks))
}

// Summarize folds diagnostics into a ValidationResult, keeping their order.
func Summarize(diags []Diagnostic) ir.ValidationResult {
	res := ir.ValidationResult{
		Conflicts: []string{},
		Warnings:  []string{},
	}
	for _, d := range diags {
		switch d.Level {
		case LevelConflict:
			res.Conflicts = append(res.Conflicts, d.Message)
		case LevelWarning:
			res.Warnings = append(res.Warnings, d.Message)
		}
		if d.Code == ErrCycle {
			res.CycleDetected = true
		}
	}
	res.Valid = len(res.Conflicts) == 0 && !res.CycleDetected
	return res
}

// checkConnections reports every connection whose target is not a block id.
func checkConnections(blocks []ir.RuleBlock) []Diagnostic {
	ids := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		ids[b.ID] = true
	}

	var diags []Diagnostic
	for _, b := range blocks {
		for _, target := range b.Connections {
			if !ids[target] {
				diags = append(diags, Diagnostic{
					Code:    ErrDanglingConnection,
					Level:   LevelConflict,
					Block:   b.ID,
					Message: fmt.Sprintf("Block '%s' connects to non-existent block '%s'", b.ID, target),
				})
			}
		}
	}
	return diags
}

// checkCycles reports at most one cycle; only existence matters.
func checkCycles(blocks []ir.RuleBlock) []Diagnostic {
	if FindCycle(blocks) == nil {
		return nil
	}
	return []Diagnostic{{
		Code:    ErrCycle,
		Level:   LevelConflict,
		Message: "Circular dependency detected in rule chain",
	}}
}

// checkDuplicateTypes warns once per type that appears more than once,
// in order of each type's first appearance.
func checkDuplicateTypes(blocks []ir.RuleBlock) []Diagnostic {
	counts := make(map[ir.BlockType]int)
	var order []ir.BlockType
	for _, b := range blocks {
		if counts[b.Type] == 0 {
			order = append(order, b.Type)
		}
		counts[b.Type]++
	}

	var diags []Diagnostic
	for _, t := range order {
		if n := counts[t]; n > 1 {
			diags = append(diags, Diagnostic{
				Code:    WarnDuplicateType,
				Level:   LevelWarning,
				Message: fmt.Sprintf("Multiple '%s' blocks (%d). Ensure they are in sequence, not parallel.", t, n),
			})
		}
	}
	return diags
}

// checkOrderingMatching flags every (pro_rata ordering, clob matching) pair.
func checkOrderingMatching(blocks []ir.RuleBlock) []Diagnostic {
	var diags []Diagnostic
	for _, ob := range blocks {
		op, ok := ir.ParamsOf[ir.OrderingParams](ob)
		if !ok || op.Method != ir.OrderingProRata {
			continue
		}
		for _, mb := range blocks {
			mp, ok := ir.ParamsOf[ir.MatchingParams](mb)
			if !ok || mp.Engine != ir.EngineCLOB {
				continue
			}
			diags = append(diags, Diagnostic{
				Code:    ErrProRataCLOB,
				Level:   LevelConflict,
				Block:   ob.ID,
				Message: "Pro-rata ordering is incompatible with CLOB matching engine. Use 'amm' or 'rfq' matching instead.",
			})
		}
	}
	return diags
}

// checkFilters compares blacklist and whitelist of each filter that sets both.
func checkFilters(blocks []ir.RuleBlock) []Diagnostic {
	var diags []Diagnostic
	for _, b := range blocks {
		fp, ok := ir.ParamsOf[ir.FilterParams](b)
		if !ok || len(fp.Blacklist) == 0 || len(fp.Whitelist) == 0 {
			continue
		}

		overlap := intersect(fp.Blacklist, fp.Whitelist)
		if len(overlap) > 0 {
			diags = append(diags, Diagnostic{
				Code:  ErrFilterOverlap,
				Level: LevelConflict,
				Block: b.ID,
				Message: fmt.Sprintf("Filter block '%s': addresses %s appear in both blacklist and whitelist",
					b.ID, formatAddressSet(overlap)),
			})
			continue
		}
		diags = append(diags, Diagnostic{
			Code:    WarnFilterBothLists,
			Level:   LevelWarning,
			Block:   b.ID,
			Message: fmt.Sprintf("Filter block '%s': using both blacklist and whitelist. Whitelist takes priority.", b.ID),
		})
	}
	return diags
}

// checkBatching checks min/max ordering and flags aggressive intervals.
func checkBatching(blocks []ir.RuleBlock) []Diagnostic {
	var diags []Diagnostic
	for _, b := range blocks {
		bp, ok := ir.ParamsOf[ir.BatchingParams](b)
		if !ok {
			continue
		}
		if bp.MinBatch > bp.MaxBatch {
			diags = append(diags, Diagnostic{
				Code:  ErrBatchBounds,
				Level: LevelConflict,
				Block: b.ID,
				Message: fmt.Sprintf("Batching block '%s': min_batch (%d) > max_batch (%d)",
					b.ID, bp.MinBatch, bp.MaxBatch),
			})
		}
		if bp.IntervalMS < LowIntervalMS {
			diags = append(diags, Diagnostic{
				Code:  WarnLowInterval,
				Level: LevelWarning,
				Block: b.ID,
				Message: fmt.Sprintf("Batching block '%s': interval %dms is very low. May cause high load.",
					b.ID, bp.IntervalMS),
			})
		}
	}
	return diags
}

// checkDuplicateIDs warns about ids defined more than once. Such ids are one
// graph node whose edges merge every definition's connections.
func checkDuplicateIDs(blocks []ir.RuleBlock) []Diagnostic {
	counts := make(map[string]int, len(blocks))
	var order []string
	for _, b := range blocks {
		if counts[b.ID] == 0 {
			order = append(order, b.ID)
		}
		counts[b.ID]++
	}

	var diags []Diagnostic
	for _, id := range order {
		if n := counts[id]; n > 1 {
			diags = append(diags, Diagnostic{
				Code:    WarnDuplicateID,
				Level:   LevelWarning,
				Block:   id,
				Message: fmt.Sprintf("Block id '%s' is defined %d times. Their connections are merged into one node.", id, n),
			})
		}
	}
	return diags
}

// intersect returns the sorted, de-duplicated addresses present in both lists.
func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, addr := range b {
		inB[addr] = true
	}
	var out []string
	for _, addr := range a {
		if inB[addr] && !slices.Contains(out, addr) {
			out = append(out, addr)
		}
	}
	slices.Sort(out)
	return out
}

// formatAddressSet renders addresses as {"a", "b"}.
func formatAddressSet(addrs []string) string {
	quoted := make([]string, len(addrs))
	for i, a := range addrs {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
