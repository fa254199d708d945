package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/roach88/kazt/internal/ir"
)

// Source is the random number source the sampler draws from.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
	Intn(n int) int
	Uint32() uint32
}

// NewSeededSource returns a deterministic source for seed.
// The returned source is not safe for concurrent use.
func NewSeededSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

var sourceSeq atomic.Int64

// newTimeSeededSource returns a fresh source for callers that did not supply
// one. The sequence number keeps sources created in the same nanosecond apart.
func newTimeSeededSource() Source {
	return NewSeededSource(time.Now().UnixNano() ^ sourceSeq.Add(1)<<32)
}

// Sample value ranges.
const (
	MinAmount     = 0.1
	MaxAmount     = 1000.0
	MinFee        = 0.001
	MaxFee        = 0.1
	MaxAgeSeconds = 60
)

// Sampler generates synthetic transactions.
type Sampler struct {
	src   Source
	clock Clock
}

// NewSampler creates a sampler drawing from src with timestamps relative to clock.
func NewSampler(src Source, clock Clock) *Sampler {
	return &Sampler{src: src, clock: clock}
}

// Sample returns n transactions in generation order. n <= 0 yields none.
//
// Each transaction has a "tx_" and a "sender_" id of 8 hex digits, an amount
// uniform in [MinAmount, MaxAmount] rounded to 2 places, a fee uniform in
// [MinFee, MaxFee] rounded to 4 places, and a unix timestamp up to
// MaxAgeSeconds seconds before the clock's now.
func (s *Sampler) Sample(n int) []ir.Transaction {
	if n <= 0 {
		return []ir.Transaction{}
	}
	now := s.clock.Now().Unix()
	txs := make([]ir.Transaction, n)
	for i := range txs {
		txs[i] = ir.Transaction{
			TxID:      fmt.Sprintf("tx_%08x", s.src.Uint32()),
			Sender:    fmt.Sprintf("sender_%08x", s.src.Uint32()),
			Amount:    roundTo(uniform(s.src, MinAmount, MaxAmount), 2),
			Fee:       roundTo(uniform(s.src, MinFee, MaxFee), 4),
			Timestamp: now - int64(s.src.Intn(MaxAgeSeconds+1)),
		}
	}
	return txs
}

func uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

func roundTo(x float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(x*scale) / scale
}
