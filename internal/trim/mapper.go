package trim

import (
	"errors"
	"fmt"
)

// ErrInvalidTrackWidth is returned when a pixel conversion is attempted
// against a track that has no width yet.
var ErrInvalidTrackWidth = errors.New("invalid track width")

// PixelToSeconds maps a pixel offset on a track of the given width to a time
// offset into a buffer of the given duration. The result is clamped to
// [0, duration].
func PixelToSeconds(pixel, duration, width float64) (float64, error) {
	if width <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTrackWidth, width)
	}
	s := pixel / width * duration
	if s < 0 {
		return 0, nil
	}
	if s > duration {
		return duration, nil
	}
	return s, nil
}

// Position is a pair of trim markers in pixel space.
type Position struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Full covers the whole track.
func Full(width float64) Position {
	return Position{Left: 0, Right: width}
}

// Valid reports whether 0 <= Left < Right <= width.
func (p Position) Valid(width float64) bool {
	return p.Left >= 0 && p.Left < p.Right && p.Right <= width
}

// Scale multiplies both markers by factor.
func (p Position) Scale(factor float64) Position {
	return Position{Left: p.Left * factor, Right: p.Right * factor}
}

// Clamp forces the position back inside a track of the given width while
// keeping at least MinSeparation between the markers. The right marker yields
// when the two collide.
func (p Position) Clamp(width float64) Position {
	if width < MinSeparation {
		return Full(width)
	}
	p.Left = clamp(p.Left, 0, width-MinSeparation)
	p.Right = clamp(p.Right, MinSeparation, width)
	if p.Right-p.Left < MinSeparation {
		p.Right = p.Left + MinSeparation
	}
	return p
}

// Window converts a trim position into a playback window in seconds.
func Window(p Position, duration, width float64) (start, end float64, err error) {
	start, err = PixelToSeconds(p.Left, duration, width)
	if err != nil {
		return 0, 0, err
	}
	end, err = PixelToSeconds(p.Right, duration, width)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
