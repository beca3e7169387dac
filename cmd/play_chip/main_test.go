package main

import (
	"testing"
	"time"

	"github.com/cbegin/audiochip-go"
)

func renderBlock(t *testing.T, chip *audiochip.Chip) audiochip.TrackStatus {
	t.Helper()
	if err := chip.Render(make([]float32, 64*audiochip.NumChannels), 64); err != nil {
		t.Fatal(err)
	}
	st, err := chip.Track(0)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func TestStaleReleaseSkipsRetriggeredTrack(t *testing.T) {
	chip, err := audiochip.New(44100, 1, audiochip.WithNoiseSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	// Long hold so only the explicit release calls below fire.
	notes := newHeldNotes(chip, time.Hour)
	if err := notes.play(0, 262); err != nil {
		t.Fatal(err)
	}
	if err := notes.play(0, 330); err != nil {
		t.Fatal(err)
	}

	notes.release(0, 1)
	if st := renderBlock(t, chip); st.State == audiochip.StateRelease || !st.Enabled {
		t.Fatalf("first note's release cut the second note: %+v", st)
	}

	notes.release(0, 2)
	if st := renderBlock(t, chip); st.State != audiochip.StateRelease {
		t.Fatalf("current note not released: %+v", st)
	}
}
