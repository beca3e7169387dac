// Package script drives a chip from a list of timed parameter changes, either
// against the wall clock or rendered offline.
package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbegin/audiochip-go/internal/osc"
)

var ErrUnordered = errors.New("script steps out of order")

// Target is the control surface of a chip.
type Target interface {
	NoteOn(track int) error
	NoteOff(track int) error
	SetFrequency(track int, hz float64) error
	SetWaveform(track int, w osc.Waveform) error
	SetEnvelope(track int, attack, decay, sustain, release int) error
	EnablePWM(track int, hz, depth float64) error
	DisablePWM(track int) error
}

// Renderer is a Target that can also produce audio.
type Renderer interface {
	Target
	Render(dst []float32, frames int) error
	SampleRate() int
}

type Step struct {
	At    time.Duration
	Apply func(Target) error
}

// Script is a timeline of steps. Length is the total duration, which may run
// past the last step to let release tails ring out.
type Script struct {
	Tracks int // tracks the script addresses
	Steps  []Step
	Length time.Duration
}

func (s Script) Validate() error {
	var last time.Duration
	for i, st := range s.Steps {
		if st.At < last {
			return fmt.Errorf("%w: step %d at %v follows %v", ErrUnordered, i, st.At, last)
		}
		last = st.At
	}
	if s.Length < last {
		return fmt.Errorf("%w: length %v before last step at %v", ErrUnordered, s.Length, last)
	}
	return nil
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run applies each step at its offset from the start, then waits out the
// remaining length. A nil sleep uses Sleep.
func (s Script) Run(ctx context.Context, t Target, sleep SleepFunc) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if sleep == nil {
		sleep = Sleep
	}
	var now time.Duration
	for i, st := range s.Steps {
		if err := sleep(ctx, st.At-now); err != nil {
			return err
		}
		now = st.At
		if err := st.Apply(t); err != nil {
			return fmt.Errorf("step %d at %v: %w", i, st.At, err)
		}
	}
	return sleep(ctx, s.Length-now)
}

// Render plays the script offline into interleaved stereo. Steps land on the
// first block boundary at or after their offset, as they would when a
// real-time stream pulls blocks of blockFrames.
func (s Script) Render(r Renderer, blockFrames int) ([]float32, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if blockFrames < 1 {
		return nil, fmt.Errorf("block frames must be positive, got %d", blockFrames)
	}
	rate := r.SampleRate()
	total := framesAt(s.Length, rate)
	out := make([]float32, total*2)
	pos := 0
	next := 0
	for pos < total {
		for next < len(s.Steps) && framesAt(s.Steps[next].At, rate) <= pos {
			if err := s.Steps[next].Apply(r); err != nil {
				return nil, fmt.Errorf("step %d at %v: %w", next, s.Steps[next].At, err)
			}
			next++
		}
		n := min(blockFrames, total-pos)
		if err := r.Render(out[pos*2:], n); err != nil {
			return nil, err
		}
		pos += n
	}
	return out, nil
}

func framesAt(d time.Duration, sampleRate int) int {
	return int(d * time.Duration(sampleRate) / time.Second)
}
