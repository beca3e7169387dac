package audiochip

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/cbegin/audiochip-go/internal/script"
)

func sawChip(t *testing.T) *Chip {
	t.Helper()
	c := newTestChip(t, 2)
	mustOK(t, c.SetWaveform(0, Saw))
	mustOK(t, c.SetFrequency(0, 220))
	mustOK(t, c.SetWaveform(1, Noise))
	mustOK(t, c.SetEnvelope(1, 0, 0, 20, 0))
	mustOK(t, c.NoteOn(0))
	mustOK(t, c.NoteOn(1))
	return c
}

func TestRenderFramesIsDeterministic(t *testing.T) {
	a, err := RenderFrames(sawChip(t), 4410, 256)
	mustOK(t, err)
	b, err := RenderFrames(sawChip(t), 4410, 256)
	mustOK(t, err)
	if len(a) != 4410*NumChannels {
		t.Fatalf("len = %d, want %d", len(a), 4410*NumChannels)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRenderFramesBlockSizeIndependentForSteadyNotes(t *testing.T) {
	mk := func(block int) []float32 {
		c := newTestChip(t, 1)
		mustOK(t, c.SetFrequency(0, 330))
		mustOK(t, c.NoteOn(0))
		out, err := RenderFrames(c, 1000, block)
		mustOK(t, err)
		return out
	}
	ref := mk(1000)
	for _, block := range []int{1, 64, 256, 999} {
		got := mk(block)
		for i := range ref {
			if got[i] != ref[i] {
				t.Fatalf("block %d: sample %d = %v, want %v", block, i, got[i], ref[i])
			}
		}
	}
}

func TestRenderFramesValidates(t *testing.T) {
	c := newTestChip(t, 1)
	if _, err := RenderFrames(c, 10, 0); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("zero block: got %v", err)
	}
	if _, err := RenderFrames(c, -1, 16); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("negative frames: got %v", err)
	}
	out, err := RenderFrames(c, 0, 16)
	if err != nil || len(out) != 0 {
		t.Fatalf("zero frames: %v, %d samples", err, len(out))
	}
}

func TestEncodeWAVFloat32LEHeader(t *testing.T) {
	samples := []float32{0.5, -0.25, 1, 0}
	b := EncodeWAVFloat32LE(samples, 44100, 2)
	if len(b) != 44+16 {
		t.Fatalf("len = %d", len(b))
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[36:40]) != "data" {
		t.Fatalf("bad chunk ids: %q", b[:40])
	}
	if f := binary.LittleEndian.Uint16(b[20:]); f != 3 {
		t.Fatalf("format = %d, want IEEE float", f)
	}
	if sr := binary.LittleEndian.Uint32(b[24:]); sr != 44100 {
		t.Fatalf("sample rate = %d", sr)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(b[48:])); v != -0.25 {
		t.Fatalf("second sample = %v", v)
	}
}

func TestWriteWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0, 0.5, -0.5, 1, -1, 1.7, -3}
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	mustOK(t, err)
	mustOK(t, WriteWAV(f, samples, 22050))
	mustOK(t, f.Close())

	f, err = os.Open(path)
	mustOK(t, err)
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatal("decoder rejected file")
	}
	buf, err := dec.FullPCMBuffer()
	mustOK(t, err)
	if dec.SampleRate != 22050 || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Fatalf("header: rate=%d chans=%d depth=%d", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	want := []int{0, 0, 16384, -16384, 32767, -32767, 32767, -32767}
	if len(buf.Data) != len(want) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Data), len(want))
	}
	for i := range want {
		if buf.Data[i] != want[i] {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], want[i])
		}
	}
}

func TestWriteWAVRejectsSampleRate(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "bad.wav"))
	mustOK(t, err)
	defer f.Close()
	if err := WriteWAV(f, nil, 0); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("got %v", err)
	}
}

func TestDemoScriptRendersOnChip(t *testing.T) {
	c := newTestChip(t, 3)
	var r script.Renderer = c
	demo := script.Demo()
	out, err := demo.Render(r, 256)
	mustOK(t, err)
	if want := int(demo.Length.Seconds()*44100) * NumChannels; len(out) != want {
		t.Fatalf("rendered %d samples, want %d", len(out), want)
	}
	peak := float32(0)
	for _, v := range out[:44100*NumChannels] {
		peak = max(peak, v, -v)
	}
	if peak == 0 {
		t.Fatal("first second is silent")
	}
	for i := 0; i < 3; i++ {
		st, _ := c.Track(i)
		if st.Enabled {
			t.Fatalf("track %d still sounding after the demo: %+v", i, st)
		}
	}
}
