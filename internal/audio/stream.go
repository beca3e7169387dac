package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// DefaultBlockFrames matches a 256-frame ALSA period.
const DefaultBlockFrames = 256

const bytesPerFrame = 8 // two float32 samples

type SampleSource interface {
	Process(dst []float32)
}

// StreamReader turns a SampleSource into interleaved float32 little-endian
// stereo bytes. The source is always asked for whole blocks of blockFrames,
// whatever size the backend reads with, so block-rate state such as envelopes
// advances at a fixed granularity.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	block  []float32
	pos    int // next unread sample in block
}

func NewStreamReader(source SampleSource, blockFrames int) *StreamReader {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}
	block := make([]float32, blockFrames*2)
	return &StreamReader{source: source, block: block, pos: len(block)}
}

func (r *StreamReader) BlockFrames() int { return len(r.block) / 2 }

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	for i := 0; i < need; i++ {
		if r.pos == len(r.block) {
			r.source.Process(r.block)
			r.pos = 0
		}
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.block[r.pos]))
		r.pos++
	}
	return frames * bytesPerFrame, nil
}

func (r *StreamReader) Close() error { return nil }
