package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/kazt/internal/ir"
)

// CompileError represents a rule-set source error with position when known.
// Err holds the underlying *ir.ParamError for parameter failures.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// CompileRuleSetSource compiles CUE source text into a rule set.
//
// The source declares optional name and description strings and a required
// blocks list:
//
//	name: "Orderbook fairness"
//	blocks: [
//		{id: "order", type: "ordering", params: {method: "price_time"}, connections: ["batch"]},
//		{id: "batch", type: "batching", params: {max_batch: 10}},
//	]
func CompileRuleSetSource(src []byte, filename string) (*ir.RuleSet, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileRuleSet(v)
}

// CompileRuleSet parses a CUE value into a RuleSet.
// Uses the CUE SDK's Go API directly.
func CompileRuleSet(v cue.Value) (*ir.RuleSet, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rs := &ir.RuleSet{}
	var err error
	if rs.Name, err = optionalString(v, "name"); err != nil {
		return nil, err
	}
	if rs.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}

	blocksVal := v.LookupPath(cue.ParsePath("blocks"))
	if !blocksVal.Exists() {
		return nil, &CompileError{
			Field:   "blocks",
			Message: "blocks list is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := blocksVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	rs.Blocks = []ir.RuleBlock{}
	for i := 0; iter.Next(); i++ {
		block, err := compileBlock(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		rs.Blocks = append(rs.Blocks, block)
	}

	return rs, nil
}

// compileBlock parses one element of the blocks list.
func compileBlock(v cue.Value, index int) (ir.RuleBlock, error) {
	field := fmt.Sprintf("blocks[%d]", index)

	idVal := v.LookupPath(cue.ParsePath("id"))
	if !idVal.Exists() {
		return ir.RuleBlock{}, &CompileError{Field: field + ".id", Message: "block id is required", Pos: v.Pos()}
	}
	id, err := idVal.String()
	if err != nil {
		return ir.RuleBlock{}, formatCUEError(err)
	}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return ir.RuleBlock{}, &CompileError{Field: field + ".type", Message: "block type is required", Pos: v.Pos()}
	}
	typeStr, err := typeVal.String()
	if err != nil {
		return ir.RuleBlock{}, formatCUEError(err)
	}

	// Params go through the same JSON decoder as every other source so
	// defaults and bounds are applied in exactly one place.
	var raw json.RawMessage
	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		raw, err = paramsVal.MarshalJSON()
		if err != nil {
			return ir.RuleBlock{}, formatCUEError(err)
		}
	}
	params, err := ir.DecodeParams(ir.BlockType(typeStr), raw)
	if err != nil {
		return ir.RuleBlock{}, paramCompileError(err, field, paramsVal, v)
	}

	var pos ir.Position
	posVal := v.LookupPath(cue.ParsePath("position"))
	if posVal.Exists() {
		if pos.X, err = posVal.LookupPath(cue.ParsePath("x")).Float64(); err != nil {
			return ir.RuleBlock{}, formatCUEError(err)
		}
		if pos.Y, err = posVal.LookupPath(cue.ParsePath("y")).Float64(); err != nil {
			return ir.RuleBlock{}, formatCUEError(err)
		}
	}

	connections := []string{}
	connVal := v.LookupPath(cue.ParsePath("connections"))
	if connVal.Exists() {
		connIter, err := connVal.List()
		if err != nil {
			return ir.RuleBlock{}, formatCUEError(err)
		}
		for connIter.Next() {
			target, err := connIter.Value().String()
			if err != nil {
				return ir.RuleBlock{}, formatCUEError(err)
			}
			connections = append(connections, target)
		}
	}

	block, err := ir.NewRuleBlock(id, ir.BlockType(typeStr), params, pos, connections...)
	if err != nil {
		return ir.RuleBlock{}, paramCompileError(err, field, typeVal, v)
	}
	return block, nil
}

// paramCompileError positions a construction error at the most specific
// CUE value available.
func paramCompileError(err error, field string, at, fallback cue.Value) error {
	pos := fallback.Pos()
	if at.Exists() {
		pos = at.Pos()
	}
	var pe *ir.ParamError
	if errors.As(err, &pe) {
		return &CompileError{Field: field + "." + pe.Field, Message: pe.Error(), Pos: pos, Err: pe}
	}
	return &CompileError{Field: field, Message: err.Error(), Pos: pos}
}

func optionalString(v cue.Value, path string) (string, error) {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return "", nil
	}
	s, err := sv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}

// ruleSetDoc is the JSON/YAML document shape of a rule set file.
type ruleSetDoc struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Blocks      []ir.RuleBlock `json:"blocks"`
}

// DecodeRuleSetJSON decodes either a bare block array or an object with
// name, description and blocks.
func DecodeRuleSetJSON(data []byte) (*ir.RuleSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &CompileError{Field: "json", Message: "empty document"}
	}

	if trimmed[0] == '[' {
		var blocks []ir.RuleBlock
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return nil, jsonCompileError(err)
		}
		if blocks == nil {
			blocks = []ir.RuleBlock{}
		}
		return &ir.RuleSet{Blocks: blocks}, nil
	}

	var doc ruleSetDoc
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, jsonCompileError(err)
	}
	if doc.Blocks == nil {
		return nil, &CompileError{Field: "blocks", Message: "blocks list is required"}
	}
	return &ir.RuleSet{Name: doc.Name, Description: doc.Description, Blocks: doc.Blocks}, nil
}

// DecodeRuleSetYAML decodes the YAML form of a rule set. The YAML tree is
// re-encoded as JSON so block params share one decoder.
func DecodeRuleSetYAML(data []byte) (*ir.RuleSet, error) {
	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	if tree == nil {
		return nil, &CompileError{Field: "yaml", Message: "empty document"}
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, &CompileError{Field: "yaml", Message: err.Error()}
	}
	return DecodeRuleSetJSON(data)
}

func jsonCompileError(err error) error {
	var pe *ir.ParamError
	if errors.As(err, &pe) {
		return &CompileError{Field: "json", Message: pe.Error(), Err: pe}
	}
	return &CompileError{Field: "json", Message: err.Error()}
}
