package osc

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cbegin/audiochip-go/internal/sinetable"
)

func newTable(t testing.TB) *sinetable.Table {
	t.Helper()
	tab, err := sinetable.New(sinetable.DefaultSize, true)
	if err != nil {
		t.Fatal(err)
	}
	return tab
}

func TestWaveformValidAndString(t *testing.T) {
	for _, w := range []Waveform{Sine, Square, Noise, Saw} {
		if !w.Valid() {
			t.Errorf("%v should be valid", w)
		}
	}
	if Waveform(4).Valid() {
		t.Error("Waveform(4) should be invalid")
	}
	if got := Saw.String(); got != "saw" {
		t.Errorf("Saw.String() = %q", got)
	}
	if Additive.String() != "additive" || !Additive.Valid() || BandLimit(2).Valid() {
		t.Error("unexpected BandLimit behavior")
	}
}

func TestHarmonics(t *testing.T) {
	cases := []struct {
		freq float64
		sr   int
		max  int
		want int
	}{
		{441, 44100, 1000, 49},
		{1000, 48000, 1000, 23},
		{110, 44100, 64, 64},
		{30000, 44100, 64, 1},
	}
	for _, tc := range cases {
		if got := Harmonics(tc.freq, tc.sr, tc.max); got != tc.want {
			t.Errorf("Harmonics(%v, %v, %v) = %d, want %d", tc.freq, tc.sr, tc.max, got, tc.want)
		}
	}
}

func TestSquareLevelsAwayFromEdges(t *testing.T) {
	inc := float32(2 * math.Pi * 220 / 44100)
	if got := PolyBLEPSquare(math.Pi/2, inc, 0); got != 1 {
		t.Fatalf("Square at π/2 = %v, want 1", got)
	}
	if got := PolyBLEPSquare(3*math.Pi/2, inc, 0); got != -1 {
		t.Fatalf("Square at 3π/2 = %v, want -1", got)
	}
}

func TestSquareEdgesAreSmoothed(t *testing.T) {
	inc := float32(2 * math.Pi * 1000 / 44100)
	// Right at each edge the corrected value sits halfway between the levels.
	if got := PolyBLEPSquare(0, inc, 0); math.Abs(float64(got)) > 1e-5 {
		t.Fatalf("Square at rising edge = %v, want ~0", got)
	}
	if got := PolyBLEPSquare(math.Pi, inc, 0); math.Abs(float64(got)) > 1e-4 {
		t.Fatalf("Square at falling edge = %v, want ~0", got)
	}
}

func TestSquareDutyFollowsPWMOffset(t *testing.T) {
	const n = 10000
	inc := float32(2 * math.Pi / n)
	for _, tc := range []struct {
		offset float32
		duty   float64
	}{
		{0, 0.5},
		{math.Pi / 2, 0.75},
		{-math.Pi / 2, 0.25},
		{math.Pi, 1 - MinDuty},
	} {
		high := 0
		for i := 0; i < n; i++ {
			if PolyBLEPSquare(float32(i)*inc, inc, tc.offset) > 0 {
				high++
			}
		}
		got := float64(high) / n
		if math.Abs(got-tc.duty) > 0.002 {
			t.Errorf("offset %v: duty %v, want %v", tc.offset, got, tc.duty)
		}
	}
}

func TestSawRamp(t *testing.T) {
	inc := float32(2 * math.Pi * 100 / 44100)
	if got := PolyBLEPSaw(math.Pi, inc); math.Abs(float64(got)) > 1e-6 {
		t.Fatalf("Saw at π = %v, want 0", got)
	}
	if got := PolyBLEPSaw(math.Pi/2, inc); math.Abs(float64(got)+0.5) > 1e-6 {
		t.Fatalf("Saw at π/2 = %v, want -0.5", got)
	}
	if got := PolyBLEPSaw(0, inc); math.Abs(float64(got)) > 1e-5 {
		t.Fatalf("Saw at wrap = %v, want ~0", got)
	}
}

func TestAdditiveMatchesNaiveShapes(t *testing.T) {
	tab := newTable(t)
	const h = 64
	if got := AdditiveSquare(tab, math.Pi/2, h, 0); math.Abs(float64(got)-1) > 0.05 {
		t.Errorf("AdditiveSquare at π/2 = %v, want ~1", got)
	}
	if got := AdditiveSquare(tab, 3*math.Pi/2, h, 0); math.Abs(float64(got)+1) > 0.05 {
		t.Errorf("AdditiveSquare at 3π/2 = %v, want ~-1", got)
	}
	if got := AdditiveSaw(tab, math.Pi/2, h); math.Abs(float64(got)+0.5) > 0.05 {
		t.Errorf("AdditiveSaw at π/2 = %v, want ~-0.5", got)
	}
	if got := AdditiveSaw(tab, 3*math.Pi/2, h); math.Abs(float64(got)-0.5) > 0.05 {
		t.Errorf("AdditiveSaw at 3π/2 = %v, want ~0.5", got)
	}
}

func TestAdditiveSingleHarmonicIsSine(t *testing.T) {
	tab := newTable(t)
	for i := 0; i < 64; i++ {
		phase := float32(i) * 2 * math.Pi / 64
		want := 4 / math.Pi * math.Sin(float64(phase))
		if got := AdditiveSquare(tab, phase, 1, 0); math.Abs(float64(got)-want) > 1e-4 {
			t.Fatalf("phase %v: got %v, want %v", phase, got, want)
		}
	}
}

func TestNoiseRangeAndDeterminism(t *testing.T) {
	a := rand.New(rand.NewSource(42))
	b := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		x := NoiseSample(a)
		if x < -1 || x > 1 {
			t.Fatalf("noise sample %v out of range", x)
		}
		if y := NoiseSample(b); x != y {
			t.Fatalf("sample %d differs with equal seeds: %v vs %v", i, x, y)
		}
	}
}

func TestGeneratorDispatch(t *testing.T) {
	tab := newTable(t)
	bw := Bandwidth{Increment: float32(2 * math.Pi * 440 / 44100), Harmonics: 50}
	poly := NewGenerator(tab, PolyBLEP, rand.New(rand.NewSource(1)))
	add := NewGenerator(tab, Additive, rand.New(rand.NewSource(1)))

	phase := float32(1.0)
	if got, want := poly.Generate(Sine, phase, bw, 0), tab.Lookup(phase); got != want {
		t.Errorf("sine: got %v, want %v", got, want)
	}
	if got, want := poly.Generate(Square, phase, bw, 0.3), PolyBLEPSquare(phase, bw.Increment, 0.3); got != want {
		t.Errorf("polyblep square: got %v, want %v", got, want)
	}
	if got, want := add.Generate(Saw, phase, bw, 0), AdditiveSaw(tab, phase, bw.Harmonics); got != want {
		t.Errorf("additive saw: got %v, want %v", got, want)
	}
	if got, want := add.Generate(Square, phase, bw, 0.3), AdditiveSquare(tab, phase, bw.Harmonics, 0.3); got != want {
		t.Errorf("additive square: got %v, want %v", got, want)
	}
	// Sine and saw ignore the PWM offset.
	if poly.Generate(Sine, phase, bw, 2) != poly.Generate(Sine, phase, bw, 0) {
		t.Error("sine should ignore pwm offset")
	}
	if poly.Generate(Saw, phase, bw, 2) != poly.Generate(Saw, phase, bw, 0) {
		t.Error("saw should ignore pwm offset")
	}
}
