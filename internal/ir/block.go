package ir

import (
	"encoding/json"
	"fmt"
	"slices"
)

// BlockType names one of the five rule block kinds.
type BlockType string

const (
	BlockOrdering BlockType = "ordering"
	BlockBatching BlockType = "batching"
	BlockMatching BlockType = "matching"
	BlockPriority BlockType = "priority"
	BlockFilter   BlockType = "filter"
)

// BlockTypes lists every block type in declaration order.
var BlockTypes = []BlockType{BlockOrdering, BlockBatching, BlockMatching, BlockPriority, BlockFilter}

// Valid reports whether t is one of the five block types.
func (t BlockType) Valid() bool {
	return slices.Contains(BlockTypes, t)
}

// Position is the block's canvas coordinate. Cosmetic only.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RuleBlock is one node of a rule graph.
//
// Params always holds the variant matching Type; use NewRuleBlock or
// json.Unmarshal to build one so that invariant is checked.
type RuleBlock struct {
	ID          string
	Type        BlockType
	Params      Params
	Position    Position
	Connections []string // ordered target block ids
}

// NewRuleBlock builds a block, checking that params matches t and is in bounds.
// A nil params selects the defaults for t.
func NewRuleBlock(id string, t BlockType, params Params, pos Position, connections ...string) (RuleBlock, error) {
	if id == "" {
		return RuleBlock{}, &ParamError{Field: "id", Message: "block id is required", Code: ErrEmptyBlockID}
	}
	if !t.Valid() {
		return RuleBlock{}, &ParamError{
			Block:   id,
			Field:   "type",
			Message: fmt.Sprintf("unknown block type %q", t),
			Code:    ErrUnknownBlockType,
		}
	}
	if params == nil {
		params = DefaultParams(t)
	}
	if params.BlockType() != t {
		return RuleBlock{}, &ParamError{
			Block:   id,
			Field:   "params",
			Message: fmt.Sprintf("%s params given for %s block", params.BlockType(), t),
			Code:    ErrMalformedParams,
		}
	}
	if fp, ok := params.(FilterParams); ok {
		params = normalizeFilter(fp)
	}
	if err := params.Check(); err != nil {
		return RuleBlock{}, withBlock(err, id)
	}
	if connections == nil {
		connections = []string{}
	}
	return RuleBlock{
		ID:          id,
		Type:        t,
		Params:      params,
		Position:    pos,
		Connections: connections,
	}, nil
}

// MustRuleBlock is like NewRuleBlock but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRuleBlock(id string, t BlockType, params Params, connections ...string) RuleBlock {
	b, err := NewRuleBlock(id, t, params, Position{}, connections...)
	if err != nil {
		panic(err)
	}
	return b
}

// EffectiveParams returns b.Params, or the defaults for b.Type when Params
// is nil or holds another type's variant. Stages dispatch on the result so
// a block always behaves as its Type.
func (b RuleBlock) EffectiveParams() Params {
	if b.Params == nil || b.Params.BlockType() != b.Type {
		return DefaultParams(b.Type)
	}
	return b.Params
}

// ParamsOf returns b's effective params as P when the variant matches.
func ParamsOf[P Params](b RuleBlock) (P, bool) {
	p, ok := b.EffectiveParams().(P)
	return p, ok
}

type ruleBlockWire struct {
	ID          string          `json:"id"`
	Type        BlockType       `json:"type"`
	Params      json.RawMessage `json:"params"`
	Position    Position        `json:"position"`
	Connections []string        `json:"connections"`
}

// MarshalJSON writes the wire shape {id, type, params, position, connections}.
func (b RuleBlock) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(b.EffectiveParams())
	if err != nil {
		return nil, fmt.Errorf("block %q params: %w", b.ID, err)
	}
	conns := b.Connections
	if conns == nil {
		conns = []string{}
	}
	return json.Marshal(ruleBlockWire{
		ID:          b.ID,
		Type:        b.Type,
		Params:      raw,
		Position:    b.Position,
		Connections: conns,
	})
}

// UnmarshalJSON decodes the wire shape, dispatching params on type.
func (b *RuleBlock) UnmarshalJSON(data []byte) error {
	var w ruleBlockWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	params, err := DecodeParams(w.Type, w.Params)
	if err != nil {
		return withBlock(err, w.ID)
	}
	block, err := NewRuleBlock(w.ID, w.Type, params, w.Position, w.Connections...)
	if err != nil {
		return err
	}
	*b = block
	return nil
}

func withBlock(err error, id string) error {
	if pe, ok := err.(*ParamError); ok && pe.Block == "" {
		cp := *pe
		cp.Block = id
		return &cp
	}
	return err
}
