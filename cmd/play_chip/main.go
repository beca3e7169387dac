package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/sync/errgroup"

	"github.com/cbegin/audiochip-go"
	"github.com/cbegin/audiochip-go/internal/script"
)

// Bottom two rows of a QWERTY keyboard as one octave of piano keys.
const pianoKeys = "zsxdcvgbhnjm,"

const noteHold = 400 * time.Millisecond

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		tracks     = flag.Int("tracks", 4, "number of tracks")
		backend    = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		block      = flag.Int("block", 256, "frames rendered per block")
		keys       = flag.Bool("keys", false, "play tracks from the keyboard instead of the demo script")
		additive   = flag.Bool("additive", false, "band-limit with additive synthesis instead of PolyBLEP")
		volume     = flag.Float64("volume", 1.0, "output volume scalar")
		status     = flag.Duration("status", 500*time.Millisecond, "track status print interval (0 = off)")
	)
	flag.Parse()

	b, err := audiochip.ParseBackend(*backend)
	if err != nil {
		log.Fatal(err)
	}
	var opts []audiochip.Option
	if *additive {
		opts = append(opts, audiochip.WithBandLimit(audiochip.Additive))
	}
	chip, err := audiochip.New(*sampleRate, *tracks, opts...)
	if err != nil {
		log.Fatal(err)
	}
	pl, err := audiochip.NewPlayer(chip, audiochip.WithBackend(b), audiochip.WithBlockFrames(*block))
	if err != nil {
		log.Fatal(err)
	}
	pl.SetVolume(*volume)
	if err := pl.Play(); err != nil {
		log.Fatal(err)
	}
	defer pl.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if *keys {
			return playKeys(ctx, chip)
		}
		demo := script.Demo()
		if chip.TrackCount() < demo.Tracks {
			return fmt.Errorf("demo needs %d tracks, have %d", demo.Tracks, chip.TrackCount())
		}
		fmt.Println("playing demo")
		return demo.Run(ctx, chip, nil)
	})
	if *status > 0 {
		g.Go(func() error {
			printStatus(ctx, chip, *status)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	fmt.Println("done")
}

func printStatus(ctx context.Context, chip *audiochip.Chip, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		var parts []string
		for i := 0; i < chip.TrackCount(); i++ {
			st, err := chip.Track(i)
			if err != nil || !st.Enabled {
				parts = append(parts, "-")
				continue
			}
			parts = append(parts, fmt.Sprintf("%v %v %.2f", st.Waveform, st.State, st.Factor))
		}
		fmt.Printf("\r%s   ", strings.Join(parts, " | "))
	}
}

// playKeys maps the piano rows to notes, rotating through tracks so chords
// can overlap. 1-4 pick the waveform, Esc quits.
func playKeys(ctx context.Context, chip *audiochip.Chip) error {
	if err := keyboard.Open(); err != nil {
		return err
	}
	defer keyboard.Close()
	events, err := keyboard.GetKeys(10)
	if err != nil {
		return err
	}
	fmt.Println("keys: z..m play, 1-4 waveform, Esc quits")

	waves := []audiochip.Waveform{audiochip.Sine, audiochip.Square, audiochip.Noise, audiochip.Saw}
	notes := newHeldNotes(chip, noteHold)
	next := 0
	for {
		var ev keyboard.KeyEvent
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev = <-events:
		}
		if ev.Err != nil {
			return ev.Err
		}
		switch {
		case ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC:
			return nil
		case ev.Rune >= '1' && ev.Rune <= '4':
			w := waves[ev.Rune-'1']
			for i := 0; i < chip.TrackCount(); i++ {
				if err := chip.SetWaveform(i, w); err != nil {
					return err
				}
			}
		default:
			semitone := strings.IndexRune(pianoKeys, ev.Rune)
			if semitone < 0 {
				continue
			}
			track := next
			next = (next + 1) % chip.TrackCount()
			hz := 261.63 * math.Pow(2, float64(semitone)/12)
			if err := notes.play(track, hz); err != nil {
				return err
			}
		}
	}
}

// heldNotes releases each key press after a fixed hold. A track's pending
// release is dropped once a newer note has taken the track over.
type heldNotes struct {
	chip *audiochip.Chip
	hold time.Duration
	mu   sync.Mutex
	gen  []uint64
}

func newHeldNotes(chip *audiochip.Chip, hold time.Duration) *heldNotes {
	return &heldNotes{chip: chip, hold: hold, gen: make([]uint64, chip.TrackCount())}
}

func (h *heldNotes) play(track int, hz float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.chip.SetFrequency(track, hz); err != nil {
		return err
	}
	if err := h.chip.NoteOn(track); err != nil {
		return err
	}
	h.gen[track]++
	gen := h.gen[track]
	time.AfterFunc(h.hold, func() { h.release(track, gen) })
	return nil
}

func (h *heldNotes) release(track int, gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gen[track] != gen {
		return
	}
	if err := h.chip.NoteOff(track); err != nil {
		log.Printf("note off track %d: %v", track, err)
	}
}
