package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	DefaultSampleRate = 44100
	DefaultChannels   = 2
)

// OutputOptions configures the audio device.
type OutputOptions struct {
	SampleRate int
	Channels   int
	// Latency is the device buffer length. Zero lets oto choose.
	Latency time.Duration
}

// Output plays a Mixer through the system audio device and exposes the
// mixer's position as the audio clock.
type Output struct {
	ctx    *oto.Context
	player *oto.Player
	mixer  *Mixer
	// latency is the device buffer, still ahead of the speakers once the
	// player hands bytes over.
	latency float64

	mu        sync.Mutex
	suspended bool
}

// NewOutput opens the audio device and starts pulling from a fresh mixer.
func NewOutput(ctx context.Context, opts OutputOptions) (*Output, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Channels <= 0 {
		opts.Channels = DefaultChannels
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   opts.Latency,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m := NewMixer(opts.SampleRate, opts.Channels)
	p := otoCtx.NewPlayer(m)
	// 10ms keeps the mixed clock close to what is actually heard
	p.SetBufferSize(opts.SampleRate / 100 * opts.Channels * bytesPerSample)
	p.Play()

	return &Output{ctx: otoCtx, player: p, mixer: m, latency: opts.Latency.Seconds()}, nil
}

func (o *Output) Mixer() *Mixer { return o.mixer }

// Now is the time of the frame currently being heard: the mixer position
// minus what is still queued in the player and the device buffer.
func (o *Output) Now() float64 {
	return heardTime(o.mixer.Now(), o.player.BufferedSize(), o.latency, o.mixer.SampleRate(), o.mixer.Channels())
}

func heardTime(rendered float64, buffered int, latency float64, sampleRate, channels int) float64 {
	queued := float64(buffered) / float64(sampleRate*channels*bytesPerSample)
	return math.Max(0, rendered-queued-latency)
}

func (o *Output) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

// Suspend pauses the device; the clock stops with it.
func (o *Output) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.suspended {
		return nil
	}
	if err := o.ctx.Suspend(); err != nil {
		return fmt.Errorf("suspend audio: %w", err)
	}
	o.suspended = true
	return nil
}

// Resume restarts a suspended device.
func (o *Output) Resume(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.suspended {
		return nil
	}

	errc := make(chan error, 1)
	go func() { errc <- o.ctx.Resume() }()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("resume audio: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	o.suspended = false
	return nil
}

func (o *Output) Close() error {
	return o.player.Close()
}
