// Package ir provides the typed rule-block model for kazt.
//
// This package contains type definitions and their construction-time checks
// only. Every other internal package imports ir; ir imports nothing internal.
//
// Key design constraints:
//   - Block params are a sealed sum type keyed by BlockType. Bounds and enum
//     membership are checked once, when a block is constructed or decoded.
//   - Position is cosmetic and never read by validation or simulation.
//   - All JSON tags use snake_case and match the rule-builder wire format.
//   - Canonical hashing carries floats as decimal strings so block-set
//     identity does not depend on float formatting.
package ir
