package playhead

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Clock reports the current audio time in seconds.
type Clock interface {
	Now() float64
}

type State int

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// DefaultColor is the playhead stroke.
var DefaultColor = color.RGBA{R: 0xff, A: 0xff}

const lineWidth = 2

// Animator moves a playhead across the overlay in step with the audio clock.
// Progress is derived from the clock on every frame, so dropped or late
// frames never make it drift. Not safe for concurrent use.
type Animator struct {
	clock Clock
	Color color.Color

	state      State
	startX     float64
	endX       float64
	clockStart float64
	duration   float64
	token      uint64
}

func New(clock Clock) *Animator {
	return &Animator{clock: clock, Color: DefaultColor}
}

// Start replaces any running animation and returns a token identifying it.
func (a *Animator) Start(startX, endX, clockStart, duration float64) uint64 {
	a.token++
	a.state = Active
	a.startX = startX
	a.endX = endX
	a.clockStart = clockStart
	a.duration = duration
	return a.token
}

// Stop forces the animator idle.
func (a *Animator) Stop() {
	a.state = Idle
}

// StopIf stops the animation only if token still identifies the current one.
func (a *Animator) StopIf(token uint64) bool {
	if token != a.token || a.state == Idle {
		return false
	}
	a.state = Idle
	return true
}

// Rescale multiplies the playhead's pixel window by factor, keeping the
// same time window on a resized track.
func (a *Animator) Rescale(factor float64) {
	a.startX *= factor
	a.endX *= factor
}

func (a *Animator) State() State { return a.state }

// Progress returns the fraction of the playback elapsed at clock time now,
// clamped to [0, 1].
func (a *Animator) Progress(now float64) float64 {
	if a.duration <= 0 {
		return 1
	}
	t := (now - a.clockStart) / a.duration
	return math.Max(0, math.Min(1, t))
}

// X returns the playhead pixel at clock time now.
func (a *Animator) X(now float64) float64 {
	return a.startX + a.Progress(now)*(a.endX-a.startX)
}

// Frame draws the playhead onto dst for the current clock time. Once the
// playback window has elapsed the final position is drawn and the animator
// goes idle. Returns whether the animator is still active.
func (a *Animator) Frame(dst draw.Image) bool {
	if a.state == Idle {
		return false
	}
	now := a.clock.Now()
	x := a.X(now)

	b := dst.Bounds()
	px := b.Min.X + int(math.Round(x))
	r := image.Rect(px-lineWidth/2, b.Min.Y, px-lineWidth/2+lineWidth, b.Max.Y).Intersect(b)
	draw.Draw(dst, r, image.NewUniform(a.Color), image.Point{}, draw.Over)

	if a.duration <= 0 || now-a.clockStart >= a.duration {
		a.state = Idle
	}
	return a.state == Active
}
