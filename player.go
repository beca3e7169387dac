package audiochip

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	intaudio "github.com/cbegin/audiochip-go/internal/audio"
)

type Backend = intaudio.Backend

const (
	BackendEbiten = intaudio.BackendEbiten
	BackendOto    = intaudio.BackendOto
)

func ParseBackend(s string) (Backend, error) {
	return intaudio.ParseBackend(s)
}

type PlayerOption func(*playerConfig)

type playerConfig struct {
	backend     Backend
	blockFrames int
	sampleTap   func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{backend: BackendEbiten, blockFrames: intaudio.DefaultBlockFrames}
}

func WithBackend(b Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = b
	}
}

// WithBlockFrames sets how many frames the chip renders per block. Parameter
// changes and envelope steps land on block boundaries.
func WithBlockFrames(n int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.blockFrames = n
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// chipSource is what the audio thread pulls from.
type chipSource struct {
	chip      *Chip
	volume    atomic.Uint64 // float64 bits
	sampleTap func([]float32)
}

func (s *chipSource) Process(dst []float32) {
	s.chip.Process(dst)
	if v := float32(math.Float64frombits(s.volume.Load())); v != 1 {
		for i := range dst {
			dst[i] *= v
		}
	}
	if s.sampleTap != nil {
		s.sampleTap(dst)
	}
}

// Player streams a Chip to an audio device. The chip keeps accepting
// parameter changes from any goroutine while it plays.
type Player struct {
	mu          sync.Mutex
	chip        *Chip
	backend     Backend
	blockFrames int
	source      *chipSource
	out         intaudio.Output
}

func NewPlayer(chip *Chip, opts ...PlayerOption) (*Player, error) {
	if chip == nil {
		return nil, fmt.Errorf("%w: nil chip", ErrInvalidOption)
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	backend, err := intaudio.ParseBackend(string(cfg.backend))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	if cfg.blockFrames < 1 {
		return nil, fmt.Errorf("%w: block frames %d", ErrInvalidOption, cfg.blockFrames)
	}
	src := &chipSource{chip: chip, sampleTap: cfg.sampleTap}
	src.volume.Store(math.Float64bits(1))
	return &Player{
		chip:        chip,
		backend:     backend,
		blockFrames: cfg.blockFrames,
		source:      src,
	}, nil
}

func (p *Player) Chip() *Chip { return p.chip }

// Play opens the audio device on first use and starts or resumes output.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		reader := intaudio.NewStreamReader(p.source, p.blockFrames)
		out, err := intaudio.NewOutput(p.backend, p.chip.SampleRate(), reader)
		if err != nil {
			return err
		}
		p.out = out
	}
	p.out.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out != nil {
		p.out.Pause()
	}
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out != nil && p.out.IsPlaying()
}

// Stop closes the device stream. A later Play opens a new one; the chip's
// track state is left as it was.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return nil
	}
	err := p.out.Stop()
	p.out = nil
	return err
}

// SetVolume sets the output gain. 1.0 is unity; negative values clamp to 0.
// It takes effect on the next block without locking the audio thread.
func (p *Player) SetVolume(volume float64) {
	if volume < 0 || math.IsNaN(volume) {
		volume = 0
	}
	p.source.volume.Store(math.Float64bits(volume))
}

func (p *Player) Volume() float64 {
	return math.Float64frombits(p.source.volume.Load())
}
