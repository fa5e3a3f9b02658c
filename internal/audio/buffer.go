package audio

import (
	"github.com/viterin/vek/vek32"
)

// Buffer holds decoded PCM, one slice per channel, samples in [-1, 1].
type Buffer struct {
	Channels   [][]float32
	SampleRate int
}

// NewBuffer allocates a silent buffer.
func NewBuffer(channels, frames, sampleRate int) *Buffer {
	b := &Buffer{
		Channels:   make([][]float32, channels),
		SampleRate: sampleRate,
	}
	for i := range b.Channels {
		b.Channels[i] = make([]float32, frames)
	}
	return b
}

// Frames returns the number of sample frames per channel.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

func (b *Buffer) Empty() bool {
	return b.Frames() == 0
}

// Peak returns the largest absolute sample value across all channels.
func (b *Buffer) Peak() float32 {
	var peak float32
	for _, ch := range b.Channels {
		if len(ch) == 0 {
			continue
		}
		if hi := vek32.Max(ch); hi > peak {
			peak = hi
		}
		if lo := -vek32.Min(ch); lo > peak {
			peak = lo
		}
	}
	return peak
}

// Normalize scales the buffer in place so its peak reaches 1.0 and returns
// the gain applied. Silent buffers are left untouched.
func (b *Buffer) Normalize() float32 {
	peak := b.Peak()
	if peak == 0 {
		return 1
	}
	gain := 1 / peak
	for _, ch := range b.Channels {
		vek32.MulNumber_Inplace(ch, gain)
	}
	return gain
}
