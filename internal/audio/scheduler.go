package audio

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidWindow is returned for a playback window outside the buffer.
var ErrInvalidWindow = errors.New("invalid playback window")

// Sink starts a bounded voice and reports when it began on the clock.
type Sink interface {
	Start(buf *Buffer, start, end float64) (clockStart float64, done <-chan struct{})
}

// Handle describes one scheduled playback.
type Handle struct {
	ClockStart float64
	Duration   float64
	// Done is closed when playback ends.
	Done <-chan struct{}
}

// End is the clock time at which playback finishes.
func (h *Handle) End() float64 { return h.ClockStart + h.Duration }

// Scheduler plays trimmed slices of buffers on the audio clock. Each call
// starts an independent voice; earlier playbacks keep running.
type Scheduler struct {
	clock Clock
	sink  Sink
}

func NewScheduler(clock Clock, sink Sink) *Scheduler {
	return &Scheduler{clock: clock, sink: sink}
}

func (s *Scheduler) Clock() Clock { return s.clock }

// Play starts buf at start seconds and stops it at end seconds. A suspended
// clock is resumed first.
func (s *Scheduler) Play(ctx context.Context, buf *Buffer, start, end float64) (*Handle, error) {
	if buf.Empty() {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidWindow)
	}
	if dur := buf.Duration(); start < 0 || start >= end || end > dur {
		return nil, fmt.Errorf("%w: [%g, %g] of %gs", ErrInvalidWindow, start, end, dur)
	}

	if s.clock.Suspended() {
		if err := s.clock.Resume(ctx); err != nil {
			return nil, fmt.Errorf("play: %w", err)
		}
	}

	clockStart, done := s.sink.Start(buf, start, end)
	return &Handle{
		ClockStart: clockStart,
		Duration:   end - start,
		Done:       done,
	}, nil
}
