package audiochip

import (
	"fmt"
	"math"

	"maze.io/x/math32"

	"github.com/cbegin/audiochip-go/internal/cmdqueue"
	"github.com/cbegin/audiochip-go/internal/envelope"
	"github.com/cbegin/audiochip-go/internal/lfo"
	"github.com/cbegin/audiochip-go/internal/osc"
	"github.com/cbegin/audiochip-go/internal/sinetable"
)

const twoPi = 2 * math32.Pi

// NumChannels is the interleaved output width: left, right.
const NumChannels = 2

// MaxEnvelopeParam is the largest value accepted for each ADSR stage.
const MaxEnvelopeParam = envelope.MaxParam

const defaultFrequency = 440.0

type (
	Waveform      = osc.Waveform
	BandLimit     = osc.BandLimit
	NoiseSource   = osc.NoiseSource
	EnvelopeState = envelope.State
)

const (
	Sine   = osc.Sine
	Square = osc.Square
	Noise  = osc.Noise
	Saw    = osc.Saw
)

const (
	PolyBLEP = osc.PolyBLEP
	Additive = osc.Additive
)

const (
	StateAttack  = envelope.Attack
	StateDecay   = envelope.Decay
	StateSustain = envelope.Sustain
	StateRelease = envelope.Release
)

type track struct {
	enabled  bool
	env      envelope.Envelope
	phase    float32 // [0, 2π)
	bw       osc.Bandwidth
	waveform osc.Waveform
	pwm      lfo.LFO
}

type cmdKind uint8

const (
	cmdNoteOn cmdKind = iota
	cmdNoteOff
	cmdFrequency
	cmdWaveform
	cmdEnvelope
	cmdPWM
	cmdPWMOff
)

// command is a validated parameter change waiting for the next block.
type command struct {
	kind     cmdKind
	track    int
	bw       osc.Bandwidth
	waveform osc.Waveform
	env      envelope.Params
	pwmRate  float64
	pwmDepth float64
}

// Chip is a fixed-polyphony synthesizer. Setters may be called from any
// goroutine; they validate their arguments and queue the change. Render
// applies queued changes at the start of each block, so one block always
// sees a consistent set of parameters. Render itself must be driven by a
// single goroutine at a time.
type Chip struct {
	sampleRate   int
	tracks       []track
	table        *sinetable.Table
	gen          *osc.Generator
	phaseReset   bool
	maxHarmonics int
	queue        *cmdqueue.Ring[command]
	status       []trackStatus
}

func New(sampleRate, trackCount int, opts ...Option) (*Chip, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	if trackCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrackCount, trackCount)
	}
	cfg := defaultChipConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	table, err := sinetable.New(cfg.tableSize, cfg.interpolate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	c := &Chip{
		sampleRate:   sampleRate,
		tracks:       make([]track, trackCount),
		table:        table,
		gen:          osc.NewGenerator(table, cfg.bandLimit, cfg.noise),
		phaseReset:   cfg.phaseReset,
		maxHarmonics: cfg.maxHarmonics,
		queue:        cmdqueue.New[command](cfg.queueSize),
		status:       make([]trackStatus, trackCount),
	}
	bw := c.bandwidth(defaultFrequency)
	for i := range c.tracks {
		c.tracks[i] = track{
			env:      envelope.New(envelope.DefaultParams()),
			bw:       bw,
			waveform: osc.Sine,
		}
	}
	c.publish()
	return c, nil
}

func (c *Chip) SampleRate() int { return c.sampleRate }

func (c *Chip) TrackCount() int { return len(c.tracks) }

// Render writes frames interleaved stereo samples to dst. Tracks are summed
// without normalization, so several loud tracks can exceed [-1, 1].
// Render does not allocate, lock or block on the success path.
func (c *Chip) Render(dst []float32, frames int) error {
	if dst == nil {
		return ErrNilBuffer
	}
	if frames < 0 || len(dst) < frames*NumChannels {
		return fmt.Errorf("%w: %d frames need %d samples, have %d", ErrShortBuffer, frames, frames*NumChannels, len(dst))
	}
	c.drain()

	out := dst[:frames*NumChannels]
	clear(out)
	for i := range c.tracks {
		tr := &c.tracks[i]
		if !tr.enabled {
			continue
		}
		if tr.env.Advance(frames, c.sampleRate) {
			tr.enabled = false
			continue
		}
		c.renderTrack(tr, out)
	}
	c.publish()
	return nil
}

// Process fills dst with len(dst)/2 frames. It satisfies the audio
// backend's SampleSource.
func (c *Chip) Process(dst []float32) {
	frames := len(dst) / NumChannels
	_ = c.Render(dst, frames)
	clear(dst[frames*NumChannels:])
}

func (c *Chip) renderTrack(tr *track, out []float32) {
	factor := tr.env.Factor
	for s := 0; s < len(out); s += NumChannels {
		offset := tr.pwm.Sample(c.table)
		v := c.gen.Generate(tr.waveform, tr.phase, tr.bw, offset) * factor
		out[s] += v
		out[s+1] += v
		tr.phase += tr.bw.Increment
		if tr.phase >= twoPi {
			tr.phase -= twoPi
		}
	}
}

func (c *Chip) drain() {
	for {
		cmd, ok := c.queue.Pop()
		if !ok {
			return
		}
		c.apply(cmd)
	}
}

func (c *Chip) apply(cmd command) {
	tr := &c.tracks[cmd.track]
	switch cmd.kind {
	case cmdNoteOn:
		tr.env.NoteOn()
		tr.enabled = true
		if c.phaseReset {
			tr.phase = 0
			tr.pwm.Reset()
		}
	case cmdNoteOff:
		tr.env.NoteOff()
	case cmdFrequency:
		tr.bw = cmd.bw
	case cmdWaveform:
		tr.waveform = cmd.waveform
	case cmdEnvelope:
		tr.env.Params = cmd.env
	case cmdPWM:
		tr.pwm.Set(cmd.pwmDepth, cmd.pwmRate, c.sampleRate)
	case cmdPWMOff:
		tr.pwm.Disable()
	}
}

func (c *Chip) enqueue(cmd command) error {
	if !c.queue.Push(cmd) {
		return fmt.Errorf("%w (%d pending)", ErrQueueFull, c.queue.Len())
	}
	return nil
}

func (c *Chip) checkTrack(track int) error {
	if track < 0 || track >= len(c.tracks) {
		return fmt.Errorf("%w: %d (track count %d)", ErrInvalidTrackIndex, track, len(c.tracks))
	}
	return nil
}

func checkFrequency(hz float64) error {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFrequency, hz)
	}
	return nil
}

// bandwidth derives the phase increment and harmonic limit for hz. Rates at
// or above the sample rate fold back into one period per sample.
func (c *Chip) bandwidth(hz float64) osc.Bandwidth {
	inc := 2 * math.Pi * hz / float64(c.sampleRate)
	if inc >= 2*math.Pi {
		inc = math.Mod(inc, 2*math.Pi)
	}
	return osc.Bandwidth{
		Increment: float32(inc),
		Harmonics: osc.Harmonics(hz, c.sampleRate, c.maxHarmonics),
	}
}

// NoteOn restarts the track's envelope from silence and enables it.
func (c *Chip) NoteOn(track int) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	return c.enqueue(command{kind: cmdNoteOn, track: track})
}

// NoteOff moves the track to its release stage, whatever stage it is in.
func (c *Chip) NoteOff(track int) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	return c.enqueue(command{kind: cmdNoteOff, track: track})
}

func (c *Chip) SetFrequency(track int, hz float64) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	if err := checkFrequency(hz); err != nil {
		return err
	}
	return c.enqueue(command{kind: cmdFrequency, track: track, bw: c.bandwidth(hz)})
}

func (c *Chip) SetWaveform(track int, w Waveform) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	if !w.Valid() {
		return fmt.Errorf("%w: waveform %v", ErrInvalidParameterRange, w)
	}
	return c.enqueue(command{kind: cmdWaveform, track: track, waveform: w})
}

// SetEnvelope updates the stage parameters, each in [0, MaxEnvelopeParam].
// A sounding note keeps its current stage and level.
func (c *Chip) SetEnvelope(track int, attack, decay, sustain, release int) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	params, err := envelope.NewParams(attack, decay, sustain, release)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameterRange, err)
	}
	return c.enqueue(command{kind: cmdEnvelope, track: track, env: params})
}

// EnablePWM sweeps the square wave's duty cycle with a sine LFO at hz, which
// must be below Nyquist.
// depth in (0, 1] scales the sweep; 1 swings the duty across the whole period.
func (c *Chip) EnablePWM(track int, hz, depth float64) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	if err := checkFrequency(hz); err != nil {
		return err
	}
	if nyquist := float64(c.sampleRate) / 2; hz >= nyquist {
		return fmt.Errorf("%w: pwm rate %v Hz at or above Nyquist (%v Hz)", ErrInvalidFrequency, hz, nyquist)
	}
	if !(depth > 0 && depth <= 1) {
		return fmt.Errorf("%w: pwm depth %v (want (0, 1])", ErrInvalidParameterRange, depth)
	}
	return c.enqueue(command{kind: cmdPWM, track: track, pwmRate: hz, pwmDepth: depth})
}

func (c *Chip) DisablePWM(track int) error {
	if err := c.checkTrack(track); err != nil {
		return err
	}
	return c.enqueue(command{kind: cmdPWMOff, track: track})
}
