package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	*Offline
	resumes   int
	resumeErr error
}

func (c *stubClock) Resume(ctx context.Context) error {
	c.resumes++
	if c.resumeErr != nil {
		return c.resumeErr
	}
	return c.Offline.Resume(ctx)
}

func newStubClock() *stubClock {
	return &stubClock{Offline: NewOffline(1000, 2)}
}

func TestSchedulerPlayReturnsClockHandle(t *testing.T) {
	clock := newStubClock()
	s := NewScheduler(clock, clock)
	buf := constBuffer(2, 2000, 1000, 0.1)

	clock.Advance(1.5)
	h, err := s.Play(context.Background(), buf, 0.5, 1.25)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, h.ClockStart, 1e-9)
	assert.InDelta(t, 0.75, h.Duration, 1e-12)
	assert.InDelta(t, 2.25, h.End(), 1e-9)
	assert.Equal(t, 0, clock.resumes)

	clock.Advance(0.749)
	assert.False(t, closed(h.Done))
	clock.Advance(0.001)
	assert.True(t, closed(h.Done))
}

func TestSchedulerResumesSuspendedClock(t *testing.T) {
	clock := newStubClock()
	clock.Suspend()
	s := NewScheduler(clock, clock)

	_, err := s.Play(context.Background(), constBuffer(1, 100, 1000, 0), 0, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1, clock.resumes)
	assert.False(t, clock.Suspended())
}

func TestSchedulerResumeFailure(t *testing.T) {
	clock := newStubClock()
	clock.Suspend()
	clock.resumeErr = errors.New("device gone")
	s := NewScheduler(clock, clock)

	_, err := s.Play(context.Background(), constBuffer(1, 100, 1000, 0), 0, 0.1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
	assert.Equal(t, 0, clock.Active())
}

func TestSchedulerRejectsBadWindows(t *testing.T) {
	clock := newStubClock()
	s := NewScheduler(clock, clock)
	buf := constBuffer(1, 1000, 1000, 0) // 1s

	for _, w := range [][2]float64{
		{-0.1, 0.5},
		{0.5, 0.5},
		{0.6, 0.5},
		{0, 1.01},
	} {
		_, err := s.Play(context.Background(), buf, w[0], w[1])
		assert.ErrorIs(t, err, ErrInvalidWindow, "%v", w)
	}

	_, err := s.Play(context.Background(), &Buffer{SampleRate: 1000}, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = s.Play(context.Background(), buf, 0, 1)
	assert.NoError(t, err, "full buffer is a valid window")
}

func TestSchedulerAllowsOverlappingPlaybacks(t *testing.T) {
	clock := newStubClock()
	s := NewScheduler(clock, clock)
	buf := constBuffer(1, 1000, 1000, 0.1)

	h1, err := s.Play(context.Background(), buf, 0, 1)
	require.NoError(t, err)
	clock.Advance(0.2)
	h2, err := s.Play(context.Background(), buf, 0, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, clock.Active())
	clock.Advance(0.8)
	assert.True(t, closed(h1.Done))
	assert.False(t, closed(h2.Done))
}
