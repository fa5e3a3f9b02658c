package audio

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
)

const bytesPerSample = 4 // float32 LE

// Clock is the audio timeline shared by playback and anything that wants to
// follow it on screen. Time is in seconds.
type Clock interface {
	Now() float64
	Suspended() bool
	Resume(ctx context.Context) error
}

type voice struct {
	buf  *Buffer
	pos  float64 // source frame
	end  float64 // source frame, exclusive
	step float64 // source frames per output frame
	done chan struct{}
}

// sample returns the linearly interpolated value of channel c at the
// current position.
func (v *voice) sample(c int) float32 {
	if c >= len(v.buf.Channels) {
		c = len(v.buf.Channels) - 1
	}
	data := v.buf.Channels[c]
	i := int(v.pos)
	if i >= len(data) {
		return 0
	}
	a := data[i]
	if i+1 >= len(data) {
		return a
	}
	frac := float32(v.pos - float64(i))
	return a + (data[i+1]-a)*frac
}

// Mixer sums active voices into an interleaved float32 stream. The number of
// frames it has rendered is the audio clock.
type Mixer struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	voices     []*voice
	pos        int64
}

func NewMixer(sampleRate, channels int) *Mixer {
	return &Mixer{sampleRate: sampleRate, channels: channels}
}

func (m *Mixer) SampleRate() int { return m.sampleRate }

func (m *Mixer) Channels() int { return m.channels }

// Now returns the audio clock in seconds.
func (m *Mixer) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.pos) / float64(m.sampleRate)
}

// Active returns the number of voices still playing.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Start begins playing buf between start and end seconds with the next
// rendered frame. It returns the clock time playback begins at and a channel
// closed once the last frame of the window has been rendered.
func (m *Mixer) Start(buf *Buffer, start, end float64) (float64, <-chan struct{}) {
	v := &voice{
		buf:  buf,
		pos:  start * float64(buf.SampleRate),
		end:  math.Min(end*float64(buf.SampleRate), float64(buf.Frames())),
		step: float64(buf.SampleRate) / float64(m.sampleRate),
		done: make(chan struct{}),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := float64(m.pos) / float64(m.sampleRate)
	if v.pos >= v.end || len(buf.Channels) == 0 {
		close(v.done)
		return now, v.done
	}
	m.voices = append(m.voices, v)
	return now, v.done
}

// Read implements io.Reader for the audio device.
func (m *Mixer) Read(p []byte) (int, error) {
	frameSize := bytesPerSample * m.channels
	frames := len(p) / frameSize

	m.mu.Lock()
	defer m.mu.Unlock()

	for f := 0; f < frames; f++ {
		for c := 0; c < m.channels; c++ {
			var sum float32
			for _, v := range m.voices {
				sum += v.sample(c)
			}
			if sum > 1 {
				sum = 1
			} else if sum < -1 {
				sum = -1
			}
			binary.LittleEndian.PutUint32(p[f*frameSize+c*bytesPerSample:], math.Float32bits(sum))
		}

		live := m.voices[:0]
		for _, v := range m.voices {
			v.pos += v.step
			if v.pos >= v.end {
				close(v.done)
				continue
			}
			live = append(live, v)
		}
		for i := len(live); i < len(m.voices); i++ {
			m.voices[i] = nil
		}
		m.voices = live
		m.pos++
	}
	return frames * frameSize, nil
}
