package audio

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names an audio output library.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
)

var ErrUnknownBackend = errors.New("unknown audio backend")

func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendEbiten, BackendOto:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Output is a started or paused stream on a device.
type Output interface {
	Play()
	Pause()
	IsPlaying() bool
	Stop() error
}

// NewOutput opens reader on the chosen backend. The returned output is
// paused until Play is called.
func NewOutput(backend Backend, sampleRate int, reader *StreamReader) (Output, error) {
	switch backend {
	case BackendEbiten, "":
		return newEbitenOutput(sampleRate, reader)
	case BackendOto:
		return newOtoOutput(sampleRate, reader)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, string(backend))
	}
}
