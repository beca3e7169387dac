package audiochip

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// RenderFrames renders frames of interleaved stereo in blocks of blockFrames,
// the same way a real-time stream would pull them.
func RenderFrames(chip *Chip, frames, blockFrames int) ([]float32, error) {
	if blockFrames < 1 {
		return nil, fmt.Errorf("%w: block frames %d", ErrInvalidOption, blockFrames)
	}
	if frames < 0 {
		return nil, fmt.Errorf("%w: %d frames", ErrShortBuffer, frames)
	}
	out := make([]float32, frames*NumChannels)
	for pos := 0; pos < frames; pos += blockFrames {
		n := min(blockFrames, frames-pos)
		if err := chip.Render(out[pos*NumChannels:], n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*4))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*4))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// WriteWAV writes interleaved stereo samples as 16-bit PCM. Samples outside
// [-1, 1] are clipped.
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	enc := wav.NewEncoder(w, sampleRate, 16, NumChannels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: NumChannels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		s = max(-1, min(1, s))
		buf.Data[i] = int(math.Round(float64(s) * 32767))
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	return nil
}
