// Package export renders rule sets for consumers outside kazt.
//
// Two formats are supported: a JSON envelope that carries the block list
// unchanged and re-parses to the same blocks, and an Anchor program
// skeleton. Both are deterministic functions of their inputs; the JSON
// envelope's generation time is supplied by the caller.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/kazt/internal/ir"
)

// Format names an export target.
type Format string

const (
	FormatJSON   Format = "json"
	FormatAnchor Format = "anchor"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatAnchor}

// Supported reports whether format can be rendered.
func Supported(format Format) bool {
	return slices.Contains(Formats, format)
}

// FormatNames returns Formats as strings, for flag help and error messages.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// Envelope is the result of Export. Data holds a Document for json, the
// program text for anchor, and nil for anything else.
type Envelope struct {
	Format Format `json:"format"`
	Data   any    `json:"data"`
}

// Document is the data of a json envelope.
type Document struct {
	Version  string         `json:"version"`
	Rules    []ir.RuleBlock `json:"ace_rules"`
	Metadata Metadata       `json:"metadata"`
}

// Metadata describes how and when a Document was produced.
type Metadata struct {
	GeneratedBy  string `json:"generated_by"`
	GeneratedAt  int64  `json:"generated_at"` // unix seconds
	BlockCount   int    `json:"block_count"`
	BlockSetHash string `json:"blockset_hash,omitempty"`
}

// Export renders blocks in format. Unknown formats yield an envelope with
// nil data rather than an error; callers that need strictness check
// Supported first.
func Export(blocks []ir.RuleBlock, format Format, now time.Time) Envelope {
	switch format {
	case FormatJSON:
		return Envelope{Format: format, Data: NewDocument(blocks, now)}
	case FormatAnchor:
		return Envelope{Format: format, Data: Anchor(blocks)}
	default:
		return Envelope{Format: format, Data: nil}
	}
}

// NewDocument wraps blocks with the schema version and metadata.
func NewDocument(blocks []ir.RuleBlock, now time.Time) Document {
	if blocks == nil {
		blocks = []ir.RuleBlock{}
	}
	// Hashing only fails on values a constructed block cannot hold.
	hash, _ := ir.BlockSetHash(blocks)
	return Document{
		Version: ir.SchemaVersion,
		Rules:   blocks,
		Metadata: Metadata{
			GeneratedBy:  ir.Generator,
			GeneratedAt:  now.Unix(),
			BlockCount:   len(blocks),
			BlockSetHash: hash,
		},
	}
}

// ParseEnvelope decodes a json envelope back into its document.
func ParseEnvelope(data []byte) (*Document, error) {
	var env struct {
		Format Format          `json:"format"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Format != FormatJSON {
		return nil, fmt.Errorf("parse envelope: format %q carries no block list", env.Format)
	}
	if len(bytes.TrimSpace(env.Data)) == 0 || bytes.Equal(bytes.TrimSpace(env.Data), []byte("null")) {
		return nil, fmt.Errorf("parse envelope: missing data")
	}

	var doc Document
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		return nil, fmt.Errorf("parse envelope data: %w", err)
	}
	if doc.Version != ir.SchemaVersion {
		return nil, fmt.Errorf("parse envelope: unsupported version %q", doc.Version)
	}
	if doc.Rules == nil {
		doc.Rules = []ir.RuleBlock{}
	}
	return &doc, nil
}
