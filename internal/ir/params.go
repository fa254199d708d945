package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Params is the type-specific parameter variant of a RuleBlock.
// Only the five *Params structs in this file implement it.
type Params interface {
	// BlockType returns the block type this variant belongs to.
	BlockType() BlockType

	// Check verifies enum membership and numeric bounds.
	Check() error

	params() // sealed
}

// OrderingMethod selects how transactions are positioned.
type OrderingMethod string

const (
	OrderingFIFO      OrderingMethod = "FIFO"
	OrderingPriceTime OrderingMethod = "price_time"

	// OrderingProRata positions transactions like FIFO during simulation.
	OrderingProRata OrderingMethod = "pro_rata"
)

// Tiebreaker breaks ties between equally ranked transactions.
// Carried through validation and export; simulation does not read it.
type Tiebreaker string

const (
	TiebreakerFeeAmount Tiebreaker = "fee_amount"
	TiebreakerTimestamp Tiebreaker = "timestamp"
	TiebreakerStake     Tiebreaker = "stake"
)

// MatchingEngine is the downstream execution model a rule set targets.
type MatchingEngine string

const (
	EngineCLOB MatchingEngine = "clob"
	EngineAMM  MatchingEngine = "amm"
	EngineRFQ  MatchingEngine = "rfq"
)

// PriorityFactor is the signal a Priority block weighs.
type PriorityFactor string

const (
	FactorStake     PriorityFactor = "stake"
	FactorFee       PriorityFactor = "fee"
	FactorTokenHold PriorityFactor = "token_hold"
	FactorCustom    PriorityFactor = "custom"
)

// Parameter bounds.
const (
	MinIntervalMS = 10
	MaxIntervalMS = 10000
	MinMaxBatch   = 1
	MaxMaxBatch   = 1000
	MinMinBatch   = 1
	MaxMinBatch   = 100
	MinWeight     = 0
	MaxWeight     = 100
)

// OrderingParams configures an Ordering block.
type OrderingParams struct {
	Method     OrderingMethod `json:"method"`
	Tiebreaker Tiebreaker     `json:"tiebreaker,omitempty"`
}

// BatchingParams configures a Batching block.
type BatchingParams struct {
	IntervalMS int `json:"interval_ms"`
	MaxBatch   int `json:"max_batch"`
	MinBatch   int `json:"min_batch"`
}

// MatchingParams configures a Matching block.
type MatchingParams struct {
	Engine      MatchingEngine `json:"engine"`
	PartialFill bool           `json:"partial_fill"`
}

// PriorityParams configures a Priority block. Validated structurally only.
type PriorityParams struct {
	Factor PriorityFactor `json:"factor"`
	Weight float64        `json:"weight"`
}

// FilterParams configures a Filter block.
// A nil MaxSize or MinSize means the bound is not set.
type FilterParams struct {
	Blacklist []string `json:"blacklist"`
	Whitelist []string `json:"whitelist"`
	MaxSize   *float64 `json:"max_size,omitempty"`
	MinSize   *float64 `json:"min_size,omitempty"`
}

func (OrderingParams) params() {}
func (BatchingParams) params() {}
func (MatchingParams) params() {}
func (PriorityParams) params() {}
func (FilterParams) params()   {}

func (OrderingParams) BlockType() BlockType { return BlockOrdering }
func (BatchingParams) BlockType() BlockType { return BlockBatching }
func (MatchingParams) BlockType() BlockType { return BlockMatching }
func (PriorityParams) BlockType() BlockType { return BlockPriority }
func (FilterParams) BlockType() BlockType   { return BlockFilter }

// DefaultOrderingParams returns FIFO ordering with no tiebreaker.
func DefaultOrderingParams() OrderingParams {
	return OrderingParams{Method: OrderingFIFO}
}

// DefaultBatchingParams returns a 100ms window of 1 to 50 transactions.
func DefaultBatchingParams() BatchingParams {
	return BatchingParams{IntervalMS: 100, MaxBatch: 50, MinBatch: 1}
}

// DefaultMatchingParams returns CLOB matching with partial fills allowed.
func DefaultMatchingParams() MatchingParams {
	return MatchingParams{Engine: EngineCLOB, PartialFill: true}
}

// DefaultPriorityParams returns fee priority with weight 1.
func DefaultPriorityParams() PriorityParams {
	return PriorityParams{Factor: FactorFee, Weight: 1}
}

// DefaultFilterParams returns a filter with empty lists and no size bounds.
func DefaultFilterParams() FilterParams {
	return FilterParams{Blacklist: []string{}, Whitelist: []string{}}
}

// DefaultParams returns the default variant for t, or nil if t is unknown.
func DefaultParams(t BlockType) Params {
	switch t {
	case BlockOrdering:
		return DefaultOrderingParams()
	case BlockBatching:
		return DefaultBatchingParams()
	case BlockMatching:
		return DefaultMatchingParams()
	case BlockPriority:
		return DefaultPriorityParams()
	case BlockFilter:
		return DefaultFilterParams()
	default:
		return nil
	}
}

func (p OrderingParams) Check() error {
	if !slices.Contains(orderingMethods, p.Method) {
		return enumError("method", string(p.Method), toStrings(orderingMethods))
	}
	if p.Tiebreaker != "" && !slices.Contains(tiebreakers, p.Tiebreaker) {
		return enumError("tiebreaker", string(p.Tiebreaker), toStrings(tiebreakers))
	}
	return nil
}

func (p BatchingParams) Check() error {
	if p.IntervalMS < MinIntervalMS || p.IntervalMS > MaxIntervalMS {
		return boundsError("interval_ms", float64(p.IntervalMS), MinIntervalMS, MaxIntervalMS)
	}
	if p.MaxBatch < MinMaxBatch || p.MaxBatch > MaxMaxBatch {
		return boundsError("max_batch", float64(p.MaxBatch), MinMaxBatch, MaxMaxBatch)
	}
	if p.MinBatch < MinMinBatch || p.MinBatch > MaxMinBatch {
		return boundsError("min_batch", float64(p.MinBatch), MinMinBatch, MaxMinBatch)
	}
	return nil
}

func (p MatchingParams) Check() error {
	if !slices.Contains(matchingEngines, p.Engine) {
		return enumError("engine", string(p.Engine), toStrings(matchingEngines))
	}
	return nil
}

func (p PriorityParams) Check() error {
	if !slices.Contains(priorityFactors, p.Factor) {
		return enumError("factor", string(p.Factor), toStrings(priorityFactors))
	}
	if p.Weight < MinWeight || p.Weight > MaxWeight {
		return boundsError("weight", p.Weight, MinWeight, MaxWeight)
	}
	return nil
}

// Check always succeeds: list contents and size bounds are free-form.
// Contradictions between them are reported by the graph validator.
func (p FilterParams) Check() error {
	return nil
}

var (
	orderingMethods = []OrderingMethod{OrderingFIFO, OrderingPriceTime, OrderingProRata}
	tiebreakers     = []Tiebreaker{TiebreakerFeeAmount, TiebreakerTimestamp, TiebreakerStake}
	matchingEngines = []MatchingEngine{EngineCLOB, EngineAMM, EngineRFQ}
	priorityFactors = []PriorityFactor{FactorStake, FactorFee, FactorTokenHold, FactorCustom}
)

func toStrings[T ~string](vals []T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// DecodeParams decodes raw JSON params for a block of type t.
// Fields missing from raw keep their documented defaults; unknown fields are
// rejected. An empty or null raw yields the defaults.
func DecodeParams(t BlockType, raw json.RawMessage) (Params, error) {
	if !t.Valid() {
		return nil, &ParamError{
			Field:   "type",
			Message: fmt.Sprintf("unknown block type %q", t),
			Code:    ErrUnknownBlockType,
		}
	}

	var (
		p   Params
		err error
	)
	switch t {
	case BlockOrdering:
		v := DefaultOrderingParams()
		err = decodeInto(raw, &v)
		p = v
	case BlockBatching:
		v := DefaultBatchingParams()
		err = decodeInto(raw, &v)
		p = v
	case BlockMatching:
		v := DefaultMatchingParams()
		err = decodeInto(raw, &v)
		p = v
	case BlockPriority:
		v := DefaultPriorityParams()
		err = decodeInto(raw, &v)
		p = v
	case BlockFilter:
		v := DefaultFilterParams()
		err = decodeInto(raw, &v)
		p = normalizeFilter(v)
	}
	if err != nil {
		return nil, &ParamError{
			Field:   "params",
			Message: err.Error(),
			Code:    ErrMalformedParams,
		}
	}
	if err := p.Check(); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeInto(raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// normalizeFilter replaces nil lists with empty ones so a decoded filter and
// a constructed one compare equal.
func normalizeFilter(p FilterParams) FilterParams {
	if p.Blacklist == nil {
		p.Blacklist = []string{}
	}
	if p.Whitelist == nil {
		p.Whitelist = []string{}
	}
	return p
}
