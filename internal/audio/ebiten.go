package audio

import (
	"fmt"
	"io"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

type ebitenOutput struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	ebitenContextOnce sync.Once
	ebitenContext     *ebitaudio.Context
	ebitenSampleRate  int
)

// ebiten allows a single audio context per process.
func sharedEbitenContext(sampleRate int) (*ebitaudio.Context, error) {
	ebitenContextOnce.Do(func() {
		ebitenSampleRate = sampleRate
		ebitenContext = ebitaudio.NewContext(sampleRate)
	})
	if ebitenSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", ebitenSampleRate, sampleRate)
	}
	return ebitenContext, nil
}

func newEbitenOutput(sampleRate int, reader *StreamReader) (*ebitenOutput, error) {
	ctx, err := sharedEbitenContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &ebitenOutput{player: pl, reader: reader}, nil
}

func (o *ebitenOutput) Play()           { o.player.Play() }
func (o *ebitenOutput) Pause()          { o.player.Pause() }
func (o *ebitenOutput) IsPlaying() bool { return o.player.IsPlaying() }

func (o *ebitenOutput) Stop() error {
	o.player.Pause()
	o.player.Close()
	return o.reader.Close()
}
