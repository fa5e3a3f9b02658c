package audio

import (
	"context"
	"sync"
	"time"
)

// Offline drives a Mixer without an audio device. The clock only moves when
// Advance is called or while Run is pumping it in real time. It backs the
// app when no output device can be opened.
type Offline struct {
	*Mixer

	mu        sync.Mutex
	suspended bool
}

func NewOffline(sampleRate, channels int) *Offline {
	return &Offline{Mixer: NewMixer(sampleRate, channels)}
}

// Advance renders and discards d seconds of audio.
func (o *Offline) Advance(d float64) {
	frames := int(d*float64(o.sampleRate) + 0.5)
	if frames <= 0 {
		return
	}
	_, _ = o.Mixer.Read(make([]byte, frames*o.channels*bytesPerSample))
}

func (o *Offline) Suspended() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.suspended
}

func (o *Offline) Suspend() {
	o.mu.Lock()
	o.suspended = true
	o.mu.Unlock()
}

func (o *Offline) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	o.suspended = false
	o.mu.Unlock()
	return nil
}

// Run advances the clock in real time until ctx is done.
func (o *Offline) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if !o.Suspended() {
				o.Advance(now.Sub(last).Seconds())
			}
			last = now
		}
	}
}
