package envelope

import (
	"errors"
	"fmt"
)

const (
	MaxParam       = 126
	MaxStageTimeMs = 10000.0

	FactorPerStep = float32(1.0 / (MaxParam + 1))
	TimePerStepMs = float32(MaxStageTimeMs / (MaxParam + 1))
)

var ErrParamRange = errors.New("envelope parameter out of range")

type State uint8

const (
	Attack State = iota
	Decay
	Sustain
	Release
)

func (s State) String() string {
	switch s {
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Params are the four stage parameters, each in [0, MaxParam].
type Params struct {
	Attack  uint8
	Decay   uint8
	Sustain uint8
	Release uint8
}

// DefaultParams is instant full sustain with no release tail.
func DefaultParams() Params {
	return Params{Sustain: MaxParam}
}

// NewParams checks each stage value against [0, MaxParam] before narrowing it.
func NewParams(attack, decay, sustain, release int) (Params, error) {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"attack", attack},
		{"decay", decay},
		{"sustain", sustain},
		{"release", release},
	} {
		if f.v < 0 || f.v > MaxParam {
			return Params{}, fmt.Errorf("%w: %s=%d (want 0..%d)", ErrParamRange, f.name, f.v, MaxParam)
		}
	}
	return Params{
		Attack:  uint8(attack),
		Decay:   uint8(decay),
		Sustain: uint8(sustain),
		Release: uint8(release),
	}, nil
}

func (p Params) Validate() error {
	_, err := NewParams(int(p.Attack), int(p.Decay), int(p.Sustain), int(p.Release))
	return err
}

// StageTimeMs converts a stage parameter to a duration. Zero means instant.
func StageTimeMs(p uint8) float32 {
	return float32(p) * TimePerStepMs
}

// SustainLevel maps the sustain parameter to an amplitude; MaxParam is exactly 1.
func SustainLevel(s uint8) float32 {
	if s >= MaxParam {
		return 1
	}
	return float32(s) * FactorPerStep
}

// Envelope is a per-track ADSR state machine. The terminal "ended" condition
// is reported by Advance rather than stored.
type Envelope struct {
	Params
	Factor float32
	State  State
}

func New(p Params) Envelope {
	return Envelope{Params: p, State: Attack}
}

// NoteOn restarts the envelope from silence.
func (e *Envelope) NoteOn() {
	e.Factor = 0
	e.State = Attack
}

// NoteOff forces the release stage from any state.
func (e *Envelope) NoteOff() {
	e.State = Release
}

func samplesToMs(samples int, sampleRate int) float32 {
	return float32(samples) * 1000 / float32(sampleRate)
}

// Advance moves the envelope forward by elapsedSamples and reports whether
// the release stage has reached silence.
func (e *Envelope) Advance(elapsedSamples int, sampleRate int) bool {
	elapsedMs := samplesToMs(elapsedSamples, sampleRate)
	ended := false

	switch e.State {
	case Attack:
		if e.Attack == 0 {
			e.Factor = 1
		} else {
			e.Factor += elapsedMs / StageTimeMs(e.Attack)
		}
		if e.Factor >= 1 {
			e.Factor = 1
			e.State = Decay
		}
	case Decay:
		level := SustainLevel(e.Sustain)
		if e.Decay == 0 {
			e.Factor = level
		} else {
			e.Factor -= elapsedMs / StageTimeMs(e.Decay)
		}
		if e.Factor <= level {
			e.Factor = level
			e.State = Sustain
		}
	case Sustain:
		e.Factor = SustainLevel(e.Sustain)
	case Release:
		if e.Release == 0 {
			e.Factor = 0
		} else {
			e.Factor -= elapsedMs / StageTimeMs(e.Release)
		}
		if e.Factor <= 0 {
			e.Factor = 0
			ended = true
		}
	}

	e.Factor = clamp01(e.Factor)
	return ended
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
