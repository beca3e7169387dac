package sinetable

import (
	"errors"
	"math"

	"maze.io/x/math32"
)

const twoPi = 2 * math32.Pi

// DefaultSize is large enough that interpolated lookups stay well below
// 16-bit quantization error.
const DefaultSize = 4096

var ErrSize = errors.New("sine table size must be a power of two >= 2")

// Table holds one period of sin. It is never written after New returns,
// so any number of renderers may share it.
type Table struct {
	data        []float32
	mask        int
	scale       float32 // phase to fractional index
	interpolate bool
}

func New(size int, interpolate bool) (*Table, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, ErrSize
	}
	t := &Table{
		data:        make([]float32, size),
		mask:        size - 1,
		scale:       float32(size) / twoPi,
		interpolate: interpolate,
	}
	for i := range t.data {
		t.data[i] = float32(math.Sin(2 * math.Pi * float64(i) / float64(size)))
	}
	return t, nil
}

// Lookup returns an approximation of sin(phase). Phase may be negative or
// span many periods; the index wraps through the mask.
func (t *Table) Lookup(phase float32) float32 {
	x := phase * t.scale
	fl := math32.Floor(x)
	i := int(fl) & t.mask
	if !t.interpolate {
		return t.data[i]
	}
	frac := x - fl
	a := t.data[i]
	b := t.data[(i+1)&t.mask]
	return a + frac*(b-a)
}
