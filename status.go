package audiochip

import (
	"math"
	"sync/atomic"
)

// TrackStatus is a track's state as of the last rendered block.
type TrackStatus struct {
	Enabled  bool
	State    EnvelopeState
	Factor   float32 // envelope amplitude in [0, 1]
	Waveform Waveform
}

// trackStatus is written by the render goroutine after every block and read
// lock-free from anywhere.
type trackStatus struct {
	enabled  atomic.Bool
	state    atomic.Uint32
	factor   atomic.Uint32 // float32 bits
	waveform atomic.Uint32
}

func (c *Chip) publish() {
	for i := range c.tracks {
		tr := &c.tracks[i]
		st := &c.status[i]
		st.enabled.Store(tr.enabled)
		st.state.Store(uint32(tr.env.State))
		st.factor.Store(math.Float32bits(tr.env.Factor))
		st.waveform.Store(uint32(tr.waveform))
	}
}

// Track reports the state of a track as of the most recent Render. Changes
// queued since then are not reflected until the next block.
func (c *Chip) Track(track int) (TrackStatus, error) {
	if err := c.checkTrack(track); err != nil {
		return TrackStatus{}, err
	}
	st := &c.status[track]
	return TrackStatus{
		Enabled:  st.enabled.Load(),
		State:    EnvelopeState(st.state.Load()),
		Factor:   math.Float32frombits(st.factor.Load()),
		Waveform: Waveform(st.waveform.Load()),
	}, nil
}
