package osc

import (
	"fmt"
	"math"

	"maze.io/x/math32"

	"github.com/cbegin/audiochip-go/internal/sinetable"
)

const twoPi = 2 * math32.Pi

// MinDuty keeps modulated pulses from collapsing into DC.
const MinDuty = 0.01

type Waveform uint8

const (
	Sine Waveform = iota
	Square
	Noise
	Saw
)

func (w Waveform) Valid() bool { return w <= Saw }

func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Noise:
		return "noise"
	case Saw:
		return "saw"
	default:
		return fmt.Sprintf("Waveform(%d)", uint8(w))
	}
}

// BandLimit selects how Square and Saw suppress aliasing.
type BandLimit uint8

const (
	PolyBLEP BandLimit = iota
	Additive
)

func (b BandLimit) Valid() bool { return b <= Additive }

func (b BandLimit) String() string {
	switch b {
	case PolyBLEP:
		return "polyblep"
	case Additive:
		return "additive"
	default:
		return fmt.Sprintf("BandLimit(%d)", uint8(b))
	}
}

// NoiseSource yields uniform values in [0, 1). *math/rand.Rand satisfies it.
type NoiseSource interface {
	Float32() float32
}

// Bandwidth carries the per-track hints the band-limited generators need.
type Bandwidth struct {
	Increment float32 // radians per sample
	Harmonics int     // highest partial below Nyquist
}

// Harmonics returns the highest k with k*freq below Nyquist, in [1, max].
func Harmonics(freq float64, sampleRate int, max int) int {
	nyquist := float64(sampleRate) / 2
	h := int(math.Ceil(nyquist/freq)) - 1
	if h > max {
		h = max
	}
	if h < 1 {
		h = 1
	}
	return h
}

// polyBLEP reduces aliasing at waveform discontinuities.
// t is the phase position [0,1), dt is the phase increment per sample.
func polyBLEP(t, dt float32) float32 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func frac(x float32) float32 {
	return x - math32.Floor(x)
}

// dutyCycle maps a PWM phase offset in [-π, π] to the fraction of the period
// spent high.
func dutyCycle(pwmOffset float32) float32 {
	d := 0.5 + pwmOffset/twoPi
	if d < MinDuty {
		return MinDuty
	}
	if d > 1-MinDuty {
		return 1 - MinDuty
	}
	return d
}

// PolyBLEPSquare is high while phase is before π+pwmOffset and low after, with both
// edges smoothed.
func PolyBLEPSquare(phase, increment, pwmOffset float32) float32 {
	t := phase / twoPi
	dt := increment / twoPi
	duty := dutyCycle(pwmOffset)
	out := float32(-1)
	if t < duty {
		out = 1
	}
	out += polyBLEP(t, dt)
	out -= polyBLEP(frac(t-duty+1), dt)
	return out
}

// PolyBLEPSaw ramps from -1 to 1 over one period.
func PolyBLEPSaw(phase, increment float32) float32 {
	t := phase / twoPi
	return 2*t - 1 - polyBLEP(t, increment/twoPi)
}

// AdditiveSaw sums the first harmonics partials of the ramp's Fourier series.
func AdditiveSaw(table *sinetable.Table, phase float32, harmonics int) float32 {
	var sum float32
	for k := 1; k <= harmonics; k++ {
		sum += table.Lookup(float32(k)*phase) / float32(k)
	}
	return -2 / math32.Pi * sum
}

// AdditiveSquare builds a pulse from two band-limited ramps offset by the
// duty cycle. At 50% duty only odd partials remain.
func AdditiveSquare(table *sinetable.Table, phase float32, harmonics int, pwmOffset float32) float32 {
	d := dutyCycle(pwmOffset)
	return (2*d - 1) - (AdditiveSaw(table, phase, harmonics) - AdditiveSaw(table, phase-twoPi*d, harmonics))
}

func NoiseSample(src NoiseSource) float32 {
	return src.Float32()*2 - 1
}

// Generator evaluates any Waveform. It holds only shared resources; all
// oscillator state is passed in.
type Generator struct {
	table *sinetable.Table
	mode  BandLimit
	noise NoiseSource
}

func NewGenerator(table *sinetable.Table, mode BandLimit, noise NoiseSource) *Generator {
	return &Generator{table: table, mode: mode, noise: noise}
}

// Generate returns one raw sample in roughly [-1, 1]. pwmOffset only affects
// Square.
func (g *Generator) Generate(w Waveform, phase float32, bw Bandwidth, pwmOffset float32) float32 {
	switch w {
	case Sine:
		return g.table.Lookup(phase)
	case Square:
		if g.mode == Additive {
			return AdditiveSquare(g.table, phase, bw.Harmonics, pwmOffset)
		}
		return PolyBLEPSquare(phase, bw.Increment, pwmOffset)
	case Noise:
		return NoiseSample(g.noise)
	case Saw:
		if g.mode == Additive {
			return AdditiveSaw(g.table, phase, bw.Harmonics)
		}
		return PolyBLEPSaw(phase, bw.Increment)
	}
	return 0
}
