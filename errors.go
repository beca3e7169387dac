package audiochip

import "errors"

// Every caller-facing failure wraps one of these; test with errors.Is.
var (
	ErrInvalidSampleRate     = errors.New("sample rate must be positive")
	ErrInvalidTrackCount     = errors.New("track count must be positive")
	ErrInvalidOption         = errors.New("invalid option")
	ErrInvalidTrackIndex     = errors.New("track index out of range")
	ErrInvalidParameterRange = errors.New("parameter out of range")
	ErrInvalidFrequency      = errors.New("frequency must be positive and finite")
	ErrNilBuffer             = errors.New("output buffer is nil")
	ErrShortBuffer           = errors.New("output buffer too small")
	ErrQueueFull             = errors.New("command queue full; render a block and retry")
)
