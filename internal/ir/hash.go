package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainBlockSet = "kazt/blockset/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BlockSetHash computes the content address of a block list.
// Block order and connection order are significant; Position is not.
func BlockSetHash(blocks []RuleBlock) (string, error) {
	arr := make(Array, len(blocks))
	for i, b := range blocks {
		arr[i] = CanonicalBlock(b)
	}
	canonical, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("BlockSetHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainBlockSet, canonical), nil
}

// MustBlockSetHash is like BlockSetHash but panics on error.
func MustBlockSetHash(blocks []RuleBlock) string {
	h, err := BlockSetHash(blocks)
	if err != nil {
		panic(err)
	}
	return h
}

// CanonicalBlock converts a block to its canonical value form.
func CanonicalBlock(b RuleBlock) Object {
	return Object{
		"id":          String(b.ID),
		"type":        String(b.Type),
		"params":      canonicalParams(b.EffectiveParams()),
		"connections": stringArray(b.Connections),
	}
}

func canonicalParams(p Params) Object {
	switch v := p.(type) {
	case OrderingParams:
		obj := Object{"method": String(v.Method)}
		if v.Tiebreaker != "" {
			obj["tiebreaker"] = String(v.Tiebreaker)
		}
		return obj
	case BatchingParams:
		return Object{
			"interval_ms": Int(v.IntervalMS),
			"max_batch":   Int(v.MaxBatch),
			"min_batch":   Int(v.MinBatch),
		}
	case MatchingParams:
		return Object{
			"engine":       String(v.Engine),
			"partial_fill": Bool(v.PartialFill),
		}
	case PriorityParams:
		return Object{
			"factor": String(v.Factor),
			"weight": String(FormatDecimal(v.Weight)),
		}
	case FilterParams:
		obj := Object{
			"blacklist": stringArray(v.Blacklist),
			"whitelist": stringArray(v.Whitelist),
		}
		if v.MaxSize != nil {
			obj["max_size"] = String(FormatDecimal(*v.MaxSize))
		}
		if v.MinSize != nil {
			obj["min_size"] = String(FormatDecimal(*v.MinSize))
		}
		return obj
	default:
		return Object{}
	}
}
