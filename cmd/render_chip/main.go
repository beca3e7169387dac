package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cbegin/audiochip-go"
	"github.com/cbegin/audiochip-go/internal/script"
)

func main() {
	var (
		outPath    = flag.String("out", "demo.wav", "output WAV path")
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		tracks     = flag.Int("tracks", 4, "number of tracks")
		block      = flag.Int("block", 256, "frames rendered per block")
		asFloat    = flag.Bool("float", false, "write 32-bit float WAV instead of 16-bit PCM")
		additive   = flag.Bool("additive", false, "band-limit with additive synthesis instead of PolyBLEP")
		seed       = flag.Int64("seed", 1, "noise seed")
	)
	flag.Parse()

	opts := []audiochip.Option{audiochip.WithNoiseSeed(*seed)}
	if *additive {
		opts = append(opts, audiochip.WithBandLimit(audiochip.Additive))
	}
	chip, err := audiochip.New(*sampleRate, *tracks, opts...)
	if err != nil {
		log.Fatal(err)
	}
	demo := script.Demo()
	if chip.TrackCount() < demo.Tracks {
		log.Fatalf("demo needs %d tracks, have %d", demo.Tracks, chip.TrackCount())
	}
	samples, err := demo.Render(chip, *block)
	if err != nil {
		log.Fatal(err)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal(err)
	}
	if *asFloat {
		_, err = f.Write(audiochip.EncodeWAVFloat32LE(samples, *sampleRate, audiochip.NumChannels))
	} else {
		err = audiochip.WriteWAV(f, samples, *sampleRate)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s (%d frames, %v)\n", *outPath, len(samples)/audiochip.NumChannels, demo.Length)
}
