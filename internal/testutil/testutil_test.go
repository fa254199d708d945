package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/kazt/internal/ir"
)

func TestFixedClock_DefaultsAndAdvance(t *testing.T) {
	clock := NewFixedClock(time.Time{})
	assert.Equal(t, DefaultTime, clock.Now())

	clock.Advance(90 * time.Second)
	assert.Equal(t, DefaultTime.Add(90*time.Second), clock.Now())

	later := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(later)
	assert.Equal(t, later, clock.Now())
}

func TestFixedSource_CyclesAndWraps(t *testing.T) {
	src := &FixedSource{
		Floats:  []float64{0.25, 0.75},
		Ints:    []int{7, -3},
		Uint32s: []uint32{0xdeadbeef},
	}

	assert.Equal(t, 0.25, src.Float64())
	assert.Equal(t, 0.75, src.Float64())
	assert.Equal(t, 0.25, src.Float64())

	assert.Equal(t, 2, src.Intn(5))
	assert.Equal(t, 3, src.Intn(5))

	assert.Equal(t, uint32(0xdeadbeef), src.Uint32())
	assert.Equal(t, uint32(0xdeadbeef), src.Uint32())

	src.Reset()
	assert.Equal(t, 0.25, src.Float64())
}

func TestFixedSource_EmptyListsYieldZero(t *testing.T) {
	src := &FixedSource{}

	assert.Zero(t, src.Float64())
	assert.Zero(t, src.Intn(10))
	assert.Zero(t, src.Uint32())
}

func TestBuilders(t *testing.T) {
	f := Filter("f", ir.FilterParams{MaxSize: Float(10)}, "o")
	fp, ok := ir.ParamsOf[ir.FilterParams](f)
	assert.True(t, ok)
	assert.Equal(t, 10.0, *fp.MaxSize)
	assert.Equal(t, []string{}, fp.Blacklist)
	assert.Equal(t, []string{"o"}, f.Connections)

	w := Whitelist("w", "alice")
	wp, _ := ir.ParamsOf[ir.FilterParams](w)
	assert.Equal(t, []string{"alice"}, wp.Whitelist)

	assert.Equal(t, ir.BlockPriority, Priority("p", ir.FactorStake, 2).Type)
}
