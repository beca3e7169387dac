package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

type otoOutput struct {
	player *oto.Player
	reader io.ReadCloser
}

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextErr  error
	otoSampleRate  int
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoContextOnce.Do(func() {
		otoSampleRate = sampleRate
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			otoContextErr = err
			return
		}
		<-ready
		otoContext = ctx
	})
	if otoContextErr != nil {
		return nil, otoContextErr
	}
	if otoSampleRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoSampleRate, sampleRate)
	}
	return otoContext, nil
}

func newOtoOutput(sampleRate int, reader *StreamReader) (*otoOutput, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	return &otoOutput{player: ctx.NewPlayer(reader), reader: reader}, nil
}

func (o *otoOutput) Play()           { o.player.Play() }
func (o *otoOutput) Pause()          { o.player.Pause() }
func (o *otoOutput) IsPlaying() bool { return o.player.IsPlaying() }

func (o *otoOutput) Stop() error {
	o.player.Pause()
	o.player.Close()
	return o.reader.Close()
}
