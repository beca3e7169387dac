package lfo

import (
	"math"

	"maze.io/x/math32"

	"github.com/cbegin/audiochip-go/internal/sinetable"
)

const twoPi = 2 * math32.Pi

// LFO is the sine oscillator that sweeps a square wave's duty cycle.
// Each track owns one; it only reads the shared sine table.
type LFO struct {
	depth     float32 // 0 disables modulation, otherwise (0, 1]
	increment float32 // radians per sample
	phase     float32 // current phase [0, 2π)
}

// Set configures the modulation rate and depth. The phase is kept so that
// retuning a running LFO does not click.
func (l *LFO) Set(depth, rateHz float64, sampleRate int) {
	l.depth = float32(depth)
	inc := 2 * math.Pi * rateHz / float64(sampleRate)
	if inc >= 2*math.Pi {
		inc = math.Mod(inc, 2*math.Pi)
	}
	l.increment = float32(inc)
}

// Disable zeroes depth and rate so Sample returns 0 from now on.
func (l *LFO) Disable() {
	l.depth = 0
	l.increment = 0
}

// Sample returns the current offset in [-depth·π, +depth·π] and advances the
// phase by one sample. Returns 0 if depth or rate is zero.
func (l *LFO) Sample(table *sinetable.Table) float32 {
	if !l.Active() {
		return 0
	}
	v := table.Lookup(l.phase) * l.depth * math32.Pi
	l.phase += l.increment
	if l.phase >= twoPi {
		l.phase -= twoPi
	}
	return v
}

// Active returns true if the LFO has non-zero depth and rate.
func (l *LFO) Active() bool {
	return l.depth != 0 && l.increment != 0
}

func (l *LFO) Phase() float32 { return l.phase }

// Reset zeros the LFO phase.
func (l *LFO) Reset() {
	l.phase = 0
}
