package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kazt/internal/testutil"
)

func TestSampler_FormatsScriptedValues(t *testing.T) {
	src := &testutil.FixedSource{
		Uint32s: []uint32{0x0000abcd, 0xdeadbeef},
		Floats:  []float64{0, 0},
		Ints:    []int{15},
	}
	clock := testutil.NewFixedClock(time.Unix(1_700_000_000, 0))

	txs := NewSampler(src, clock).Sample(1)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, "tx_0000abcd", tx.TxID)
	assert.Equal(t, "sender_deadbeef", tx.Sender)
	assert.Equal(t, MinAmount, tx.Amount)
	assert.Equal(t, MinFee, tx.Fee)
	assert.Equal(t, int64(1_700_000_000-15), tx.Timestamp)
}

func TestSampler_UpperBounds(t *testing.T) {
	src := &testutil.FixedSource{Floats: []float64{0.9999999999, 0.9999999999}, Ints: []int{MaxAgeSeconds}}
	clock := testutil.NewFixedClock(time.Time{})

	tx := NewSampler(src, clock).Sample(1)[0]
	assert.Equal(t, MaxAmount, tx.Amount)
	assert.Equal(t, MaxFee, tx.Fee)
	assert.Equal(t, clock.Now().Unix()-MaxAgeSeconds, tx.Timestamp)
}

func TestSampler_NonPositiveCount(t *testing.T) {
	s := NewSampler(NewSeededSource(1), WallClock{})

	assert.Empty(t, s.Sample(0))
	assert.NotNil(t, s.Sample(-3))
}

func TestSampler_SeededRangesAndFormat(t *testing.T) {
	clock := testutil.NewFixedClock(time.Time{})
	now := clock.Now().Unix()

	txs := NewSampler(NewSeededSource(42), clock).Sample(MaxSampleTxs)
	require.Len(t, txs, MaxSampleTxs)

	for _, tx := range txs {
		assert.Regexp(t, `^tx_[0-9a-f]{8}$`, tx.TxID)
		assert.Regexp(t, `^sender_[0-9a-f]{8}$`, tx.Sender)
		assert.GreaterOrEqual(t, tx.Amount, MinAmount)
		assert.LessOrEqual(t, tx.Amount, MaxAmount)
		assert.Equal(t, roundTo(tx.Amount, 2), tx.Amount)
		assert.GreaterOrEqual(t, tx.Fee, MinFee)
		assert.LessOrEqual(t, tx.Fee, MaxFee)
		assert.Equal(t, roundTo(tx.Fee, 4), tx.Fee)
		assert.LessOrEqual(t, tx.Timestamp, now)
		assert.GreaterOrEqual(t, tx.Timestamp, now-MaxAgeSeconds)
	}
}

func TestSampler_SameSeedSameSample(t *testing.T) {
	clock := testutil.NewFixedClock(time.Time{})

	a := NewSampler(NewSeededSource(7), clock).Sample(10)
	b := NewSampler(NewSeededSource(7), clock).Sample(10)
	c := NewSampler(NewSeededSource(8), clock).Sample(10)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNewTimeSeededSource_Distinct(t *testing.T) {
	a := newTimeSeededSource()
	b := newTimeSeededSource()

	same := true
	for i := 0; i < 4; i++ {
		if a.Uint32() != b.Uint32() {
			same = false
		}
	}
	assert.False(t, same, "sources created back to back should not share a seed")
}
