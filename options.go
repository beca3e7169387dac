package audiochip

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cbegin/audiochip-go/internal/sinetable"
)

type Option func(*chipConfig)

type chipConfig struct {
	tableSize    int
	interpolate  bool
	phaseReset   bool
	bandLimit    BandLimit
	maxHarmonics int
	noise        NoiseSource
	queueSize    int
}

func defaultChipConfig() chipConfig {
	return chipConfig{
		tableSize:    sinetable.DefaultSize,
		interpolate:  true,
		phaseReset:   true,
		bandLimit:    PolyBLEP,
		maxHarmonics: 64,
		queueSize:    1024,
	}
}

func (cfg *chipConfig) validate() error {
	if !cfg.bandLimit.Valid() {
		return fmt.Errorf("%w: band limit %v", ErrInvalidOption, cfg.bandLimit)
	}
	if cfg.maxHarmonics < 1 {
		return fmt.Errorf("%w: max harmonics %d", ErrInvalidOption, cfg.maxHarmonics)
	}
	if cfg.queueSize < 1 {
		return fmt.Errorf("%w: queue size %d", ErrInvalidOption, cfg.queueSize)
	}
	if cfg.noise == nil {
		cfg.noise = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return nil
}

// WithSineTableSize sets the number of sine table entries (a power of two).
func WithSineTableSize(size int) Option {
	return func(cfg *chipConfig) {
		cfg.tableSize = size
	}
}

// WithInterpolation toggles linear interpolation between sine table entries.
func WithInterpolation(enabled bool) Option {
	return func(cfg *chipConfig) {
		cfg.interpolate = enabled
	}
}

// WithPhaseReset controls whether NoteOn restarts the oscillator at phase 0.
// Enabled by default, which gives every note the same attack transient.
// Disabled, retriggered notes continue the running phase without a step.
func WithPhaseReset(enabled bool) Option {
	return func(cfg *chipConfig) {
		cfg.phaseReset = enabled
	}
}

func WithBandLimit(mode BandLimit) Option {
	return func(cfg *chipConfig) {
		cfg.bandLimit = mode
	}
}

// WithMaxHarmonics caps the partial count of the additive generators.
func WithMaxHarmonics(n int) Option {
	return func(cfg *chipConfig) {
		cfg.maxHarmonics = n
	}
}

// WithNoiseSource installs the random source for the Noise waveform. It is
// only read from the rendering goroutine.
func WithNoiseSource(src NoiseSource) Option {
	return func(cfg *chipConfig) {
		cfg.noise = src
	}
}

// WithNoiseSeed makes the Noise waveform reproducible.
func WithNoiseSeed(seed int64) Option {
	return func(cfg *chipConfig) {
		cfg.noise = rand.New(rand.NewSource(seed))
	}
}

// WithQueueSize sets how many parameter changes may be pending between two
// rendered blocks.
func WithQueueSize(n int) Option {
	return func(cfg *chipConfig) {
		cfg.queueSize = n
	}
}

var _ NoiseSource = (*rand.Rand)(nil)
