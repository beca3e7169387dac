package script

import (
	"time"

	"github.com/cbegin/audiochip-go/internal/osc"
)

// Demo is a short piece for three tracks: a PWM square bass, joined after two
// seconds by two saws an octave apart, then everything released.
func Demo() Script {
	return Script{
		Tracks: 3,
		Steps: []Step{
			{At: 0, Apply: func(t Target) error {
				return all(
					t.SetWaveform(0, osc.Square),
					t.SetFrequency(0, 110),
					t.EnablePWM(0, 0.5, 0.97),
					t.SetEnvelope(0, 20, 0, 90, 63),
					t.NoteOn(0),
				)
			}},
			{At: 2 * time.Second, Apply: func(t Target) error {
				return all(
					t.SetWaveform(1, osc.Saw),
					t.SetFrequency(1, 440),
					t.SetEnvelope(1, 0, 20, 63, 20),
					t.NoteOn(1),
					t.SetWaveform(2, osc.Saw),
					t.SetFrequency(2, 220),
					t.SetEnvelope(2, 0, 20, 63, 20),
					t.NoteOn(2),
				)
			}},
			{At: 4 * time.Second, Apply: func(t Target) error {
				return t.NoteOff(0)
			}},
			{At: 7 * time.Second, Apply: func(t Target) error {
				return all(t.NoteOff(1), t.NoteOff(2))
			}},
		},
		Length: 9 * time.Second,
	}
}

// all returns the first non-nil error. The calls have already run by the
// time it sees them, so a failure does not skip later changes.
func all(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
